package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"notely/internal/config"
	"notely/internal/services/profiles"
	"notely/internal/utils/crypto"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service is the email/password identity provider. Tokens are HS256 JWTs
// bound to a stored session, so signing out invalidates them before expiry.
type Service struct {
	users    UsersRepo
	sessions SessionsRepo
	config   config.Config
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a new identity service
func NewService(users UsersRepo, sessions SessionsRepo, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		config:   cfg,
		now:      time.Now,
		log:      log,
	}
}

var _ profiles.IdentityProvider = (*Service)(nil)

// EmailExists reports whether an account is registered for email.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUserNotFound):
		return false, nil
	default:
		s.log.Error(ErrLookupUser.Error(), "error", err)
		return false, ErrLookupUser
	}
}

// SignUp registers a new account. It does not sign in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*profiles.Identity, error) {
	email = normalizeEmail(email)

	hashedPassword, err := crypto.HashPassword(password, s.config.BcryptCost)
	if err != nil {
		s.log.Error(ErrProcessPassword.Error(), "error", err)
		return nil, ErrProcessPassword
	}

	now := s.now().UTC()
	user := &User{
		ID:           bson.NewObjectID(),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, profiles.ErrAlreadyRegistered
		}
		s.log.Error(ErrCreateUser.Error(), "error", err)
		return nil, ErrCreateUser
	}

	s.log.Info("user registered", "user_id", user.ID.Hex())
	return &profiles.Identity{ID: user.ID.Hex(), Email: user.Email}, nil
}

// SignIn checks the credentials and opens a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*profiles.AuthSession, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.log.Error(ErrLookupUser.Error(), "error", err)
		return nil, ErrLookupUser
	}

	if err := crypto.CheckPassword(password, user.PasswordHash); err != nil {
		s.log.Debug("password mismatch", "user_id", user.ID.Hex())
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *Service) issue(ctx context.Context, user *User) (*profiles.AuthSession, error) {
	now := s.now().UTC()
	rec := &SessionRecord{
		ID:        bson.NewObjectID(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionTTL()),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, rec); err != nil {
		s.log.Error("failed to store session", "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenAccessToken
	}

	token, err := s.generateJWT(user, rec, now)
	if err != nil {
		s.log.Error(ErrGenAccessToken.Error(), "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenAccessToken
	}

	return &profiles.AuthSession{
		Identity:  profiles.Identity{ID: user.ID.Hex(), Email: user.Email},
		Token:     token,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// CurrentSession verifies token and returns its identity while the backing
// session is still active.
func (s *Service) CurrentSession(ctx context.Context, token string) (*profiles.AuthSession, error) {
	c, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	rec, err := s.sessions.FindByID(ctx, c.sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		s.log.Error("failed to load session", "error", err, "user_id", c.userID)
		return nil, err
	}
	if !rec.Active(s.now()) || rec.UserID.Hex() != c.userID {
		return nil, ErrSessionExpired
	}

	return &profiles.AuthSession{
		Identity:  profiles.Identity{ID: c.userID, Email: c.email},
		Token:     token,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// SignOut revokes the session behind token. Signing out twice is fine.
func (s *Service) SignOut(ctx context.Context, token string) error {
	c, err := s.parse(token)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, c.sessionID, s.now().UTC()); err != nil {
		s.log.Error("failed to revoke session", "error", err, "user_id", c.userID)
		return err
	}
	return nil
}

type claims struct {
	userID    string
	email     string
	sessionID bson.ObjectID
}

func (s *Service) generateJWT(user *User, rec *SessionRecord, now time.Time) (string, error) {
	mc := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"sid":     rec.ID.Hex(),
		"exp":     rec.ExpiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Service) parse(raw string) (claims, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return claims{}, ErrInvalidToken
	}

	userID, _ := mc["user_id"].(string)
	email, _ := mc["email"].(string)
	sid, _ := mc["sid"].(string)
	if userID == "" || email == "" || sid == "" {
		return claims{}, ErrInvalidToken
	}

	sessionID, err := bson.ObjectIDFromHex(sid)
	if err != nil {
		return claims{}, ErrInvalidToken
	}

	return claims{userID: userID, email: email, sessionID: sessionID}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
