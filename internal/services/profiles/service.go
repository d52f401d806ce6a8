package profiles

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"notely/internal/services/entitlements"
	util "notely/internal/utils"
	"notely/internal/utils/sanitize"
)

// Service provisions profiles for authenticated identities and fronts the
// identity provider.
type Service struct {
	repo   Repository
	idp    IdentityProvider
	seeder DefaultsSeeder
	now    func() time.Time
	log    *slog.Logger
}

// NewService creates a new provisioning service
func NewService(repo Repository, idp IdentityProvider, seeder DefaultsSeeder, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		idp:    idp,
		seeder: seeder,
		now:    time.Now,
		log:    log,
	}
}

// SignUpRequest represents a user registration request
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required,password" example:"Password123"`
	FullName string `json:"full_name" validate:"omitempty,max=100" example:"Ada Lovelace"`
}

// SignInRequest represents a user login request
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required" example:"Password123"`
}

// UpdateProfileRequest carries the editable profile fields. Tier fields are
// not editable here.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=100" example:"Ada Lovelace"`
}

// EnsureProfile returns the profile of identity, creating it and seeding the
// default notes on first sight. Concurrent first calls for one identity end
// with a single profile; only the caller whose insert wins seeds.
func (s *Service) EnsureProfile(ctx context.Context, identity Identity) (*Profile, error) {
	return s.ensure(ctx, identity, nil)
}

func (s *Service) ensure(ctx context.Context, identity Identity, fullName *string) (*Profile, error) {
	if identity.ID == "" {
		return nil, util.Invalid("identity", "id is required")
	}

	p, err := s.repo.FindByID(ctx, identity.ID)
	switch {
	case err == nil:
		if !p.DefaultsSeeded {
			// The winner of the insert stopped before seeding; the seeder
			// skips notes that already exist.
			if err := s.seed(ctx, p); err != nil {
				s.log.Warn("could not complete default notes", "error", err, "user_id", p.ID)
			}
		}
		return p, nil
	case !errors.Is(err, ErrNotFound):
		s.log.Error(ErrLoadProfile.Error(), "error", err, "user_id", identity.ID)
		return nil, ErrLoadProfile
	}

	now := s.now().UTC()
	p = &Profile{
		ID:               identity.ID,
		Email:            normalizeEmail(identity.Email),
		FullName:         fullName,
		SubscriptionTier: entitlements.TierFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			s.log.Error(ErrCreateProfile.Error(), "error", err, "user_id", identity.ID)
			return nil, ErrCreateProfile
		}

		s.log.Info("profile created concurrently, re-fetching", "user_id", identity.ID)
		existing, err := s.repo.FindByID(ctx, identity.ID)
		if err != nil {
			s.log.Error(ErrLoadProfile.Error(), "error", err, "user_id", identity.ID)
			return nil, ErrLoadProfile
		}
		return existing, nil
	}

	s.log.Info("profile created", "user_id", p.ID)

	if err := s.seed(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) seed(ctx context.Context, p *Profile) error {
	if err := s.seeder.SeedDefaults(ctx, p.ID); err != nil {
		s.log.Error(ErrSeedDefaults.Error(), "error", err, "user_id", p.ID)
		return errors.Join(ErrSeedDefaults, err)
	}
	if err := s.repo.MarkDefaultsSeeded(ctx, p.ID); err != nil {
		s.log.Error("failed to mark defaults seeded", "error", err, "user_id", p.ID)
		return errors.Join(ErrSeedDefaults, err)
	}
	p.DefaultsSeeded = true
	return nil
}

// SignUp registers a new account and signs it in. An email that already has
// an account fails with ErrAlreadyRegistered before anything is written.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.idp.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	if _, err := s.idp.SignUp(ctx, email, req.Password); err != nil {
		return nil, err
	}

	auth, err := s.idp.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	var fullName *string
	if name := sanitize.Clean(req.FullName); name != "" {
		fullName = &name
	}

	p, err := s.ensure(ctx, auth.Identity, fullName)
	if err != nil {
		if soErr := s.idp.SignOut(ctx, auth.Token); soErr != nil {
			s.log.Warn("failed to sign out after provisioning error", "error", soErr, "user_id", auth.Identity.ID)
		}
		return nil, err
	}

	return &Session{Token: auth.Token, ExpiresAt: auth.ExpiresAt, Profile: p}, nil
}

// SignIn authenticates with email and password and returns the profile.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	auth, err := s.idp.SignIn(ctx, normalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}
	return s.session(ctx, auth)
}

// Current resolves a bearer token into its session, provisioning the
// profile if this is the first time the identity is seen.
func (s *Service) Current(ctx context.Context, token string) (*Session, error) {
	auth, err := s.idp.CurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.session(ctx, auth)
}

func (s *Service) session(ctx context.Context, auth *AuthSession) (*Session, error) {
	p, err := s.EnsureProfile(ctx, auth.Identity)
	if err != nil {
		return nil, err
	}
	return &Session{Token: auth.Token, ExpiresAt: auth.ExpiresAt, Profile: p}, nil
}

// SignOut ends the session behind token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.idp.SignOut(ctx, token)
}

// Get returns a profile by id.
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error(ErrLoadProfile.Error(), "error", err, "user_id", id)
		return nil, ErrLoadProfile
	}
	return p, nil
}

// UpdateDetails edits the user-editable profile fields. An empty name clears it.
func (s *Service) UpdateDetails(ctx context.Context, id string, req UpdateProfileRequest) (*Profile, error) {
	if req.FullName == nil {
		return s.Get(ctx, id)
	}

	var fullName *string
	if name := sanitize.Clean(*req.FullName); name != "" {
		fullName = &name
	}

	p, err := s.repo.UpdateDetails(ctx, id, fullName, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error(ErrUpdateProfile.Error(), "error", err, "user_id", id)
		return nil, ErrUpdateProfile
	}
	return p, nil
}

// Subscription implements the subscription source used by the notes and
// calendar services.
func (s *Service) Subscription(ctx context.Context, profileID string) (entitlements.Subscription, error) {
	p, err := s.Get(ctx, profileID)
	if err != nil {
		return entitlements.Subscription{}, err
	}
	return p.Subscription(), nil
}

// Entitlements summarizes what the profile may do at now.
func (s *Service) Entitlements(ctx context.Context, profileID string, now time.Time) (entitlements.Summary, error) {
	sub, err := s.Subscription(ctx, profileID)
	if err != nil {
		return entitlements.Summary{}, err
	}
	return entitlements.Summarize(sub, now), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
