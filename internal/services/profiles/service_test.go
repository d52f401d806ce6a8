package profiles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"notely/internal/services/entitlements"
	util "notely/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memRepo is an in-memory Repository with the same uniqueness rule as the store.
type memRepo struct {
	mu       sync.Mutex
	profiles map[string]Profile
	// beforeCreate, when set, runs before every insert.
	beforeCreate func()
	findErr      error
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: map[string]Profile{}}
}

func (r *memRepo) Create(_ context.Context, p *Profile) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; ok {
		return ErrDuplicate
	}
	r.profiles[p.ID] = *p
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*Profile, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memRepo) MarkDefaultsSeeded(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.DefaultsSeeded = true
	r.profiles[id] = p
	return nil
}

func (r *memRepo) UpdateDetails(_ context.Context, id string, fullName *string, now time.Time) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.FullName = fullName
	p.UpdatedAt = now
	r.profiles[id] = p
	return &p, nil
}

func (r *memRepo) UpdateSubscription(_ context.Context, id string, sub entitlements.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.SubscriptionTier, p.SubscriptionStart, p.SubscriptionEnd = sub.Tier, sub.Start, sub.End
	r.profiles[id] = p
	return nil
}

// memSeeder stores default notes once per profile, like the real store's
// unique seed key.
type memSeeder struct {
	mu    sync.Mutex
	calls int
	notes map[string]int
	err   error
}

func newMemSeeder() *memSeeder {
	return &memSeeder{notes: map[string]int{}}
}

func (s *memSeeder) SeedDefaults(_ context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.notes[profileID] == 0 {
		s.notes[profileID] = 2
	}
	return nil
}

// MockIdentityProvider is a mock implementation of IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CurrentSession(ctx context.Context, token string) (*AuthSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthSession), args.Error(1)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthSession), args.Error(1)
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Identity), args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockIdentityProvider) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

var alice = Identity{ID: "id-alice", Email: " Alice@Example.com "}

func TestEnsureProfile_CreatesOnceAndSeedsOnce(t *testing.T) {
	repo := newMemRepo()
	seeder := newMemSeeder()
	svc := NewService(repo, new(MockIdentityProvider), seeder, silentLogger)

	first, err := svc.EnsureProfile(context.Background(), alice)
	require.NoError(t, err)
	second, err := svc.EnsureProfile(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "alice@example.com", first.Email)
	assert.Equal(t, entitlements.TierFree, first.SubscriptionTier)
	assert.Nil(t, first.SubscriptionEnd)
	assert.True(t, second.DefaultsSeeded)
	assert.Equal(t, 1, seeder.calls)
	assert.Equal(t, 2, seeder.notes[alice.ID])
}

func TestEnsureProfile_LosingInsertRefetchesWithoutSeeding(t *testing.T) {
	repo := newMemRepo()
	seeder := newMemSeeder()
	stored := Profile{ID: alice.ID, Email: "alice@example.com", SubscriptionTier: entitlements.TierFree}

	// Another session inserts the profile between our lookup and our insert.
	repo.beforeCreate = func() {
		repo.mu.Lock()
		repo.profiles[alice.ID] = stored
		repo.mu.Unlock()
	}

	svc := NewService(repo, new(MockIdentityProvider), seeder, silentLogger)
	got, err := svc.EnsureProfile(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, 0, seeder.calls, "the losing insert never seeds")
}

func TestEnsureProfile_ConcurrentFirstSight(t *testing.T) {
	repo := newMemRepo()
	seeder := newMemSeeder()
	svc := NewService(repo, new(MockIdentityProvider), seeder, silentLogger)

	const n = 16
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.EnsureProfile(context.Background(), alice)
			errs[i] = err
			if p != nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, alice.ID, ids[i])
	}
	assert.Len(t, repo.profiles, 1)
	assert.Equal(t, 2, seeder.notes[alice.ID], "default notes exist exactly once")
}

func TestEnsureProfile_ResumesUnfinishedSeeding(t *testing.T) {
	repo := newMemRepo()
	repo.profiles[alice.ID] = Profile{ID: alice.ID, SubscriptionTier: entitlements.TierFree}
	seeder := newMemSeeder()
	svc := NewService(repo, new(MockIdentityProvider), seeder, silentLogger)

	p, err := svc.EnsureProfile(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, p.DefaultsSeeded)
	assert.Equal(t, 1, seeder.calls)

	_, err = svc.EnsureProfile(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, 1, seeder.calls)
}

func TestEnsureProfile_Errors(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		svc := NewService(newMemRepo(), new(MockIdentityProvider), newMemSeeder(), silentLogger)
		_, err := svc.EnsureProfile(context.Background(), Identity{Email: "x@y.z"})
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := newMemRepo()
		repo.findErr = errors.New("connection reset")
		svc := NewService(repo, new(MockIdentityProvider), newMemSeeder(), silentLogger)
		_, err := svc.EnsureProfile(context.Background(), alice)
		assert.ErrorIs(t, err, ErrLoadProfile)
	})

	t.Run("seeding failure", func(t *testing.T) {
		repo := newMemRepo()
		seeder := newMemSeeder()
		seeder.err = errors.New("notes down")
		svc := NewService(repo, new(MockIdentityProvider), seeder, silentLogger)

		_, err := svc.EnsureProfile(context.Background(), alice)
		assert.ErrorIs(t, err, ErrSeedDefaults)
		assert.False(t, repo.profiles[alice.ID].DefaultsSeeded)
	})
}

func TestSignUp(t *testing.T) {
	authed := &AuthSession{Identity: Identity{ID: "id-bob", Email: "bob@example.com"}, Token: "tok"}

	t.Run("new account", func(t *testing.T) {
		idp := new(MockIdentityProvider)
		idp.On("EmailExists", mock.Anything, "bob@example.com").Return(false, nil)
		idp.On("SignUp", mock.Anything, "bob@example.com", "Password123").Return(&authed.Identity, nil)
		idp.On("SignIn", mock.Anything, "bob@example.com", "Password123").Return(authed, nil)

		repo := newMemRepo()
		seeder := newMemSeeder()
		svc := NewService(repo, idp, seeder, silentLogger)

		sess, err := svc.SignUp(context.Background(), SignUpRequest{Email: " BOB@example.com", Password: "Password123", FullName: " Bob  Builder "})
		require.NoError(t, err)
		assert.Equal(t, "tok", sess.Token)
		require.NotNil(t, sess.Profile.FullName)
		assert.Equal(t, "Bob Builder", *sess.Profile.FullName)
		assert.Equal(t, 2, seeder.notes["id-bob"])
		idp.AssertExpectations(t)
	})

	t.Run("already registered", func(t *testing.T) {
		idp := new(MockIdentityProvider)
		idp.On("EmailExists", mock.Anything, "bob@example.com").Return(true, nil)
		svc := NewService(newMemRepo(), idp, newMemSeeder(), silentLogger)

		_, err := svc.SignUp(context.Background(), SignUpRequest{Email: "bob@example.com", Password: "Password123"})
		require.ErrorIs(t, err, ErrAlreadyRegistered)
		idp.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provisioning failure signs out", func(t *testing.T) {
		idp := new(MockIdentityProvider)
		idp.On("EmailExists", mock.Anything, "bob@example.com").Return(false, nil)
		idp.On("SignUp", mock.Anything, "bob@example.com", "Password123").Return(&authed.Identity, nil)
		idp.On("SignIn", mock.Anything, "bob@example.com", "Password123").Return(authed, nil)
		idp.On("SignOut", mock.Anything, "tok").Return(nil)

		repo := newMemRepo()
		repo.findErr = errors.New("db down")
		svc := NewService(repo, idp, newMemSeeder(), silentLogger)

		_, err := svc.SignUp(context.Background(), SignUpRequest{Email: "bob@example.com", Password: "Password123"})
		require.ErrorIs(t, err, ErrLoadProfile)
		idp.AssertExpectations(t)
	})

	t.Run("provider error passes through", func(t *testing.T) {
		providerErr := errors.New("identity provider unavailable")
		idp := new(MockIdentityProvider)
		idp.On("EmailExists", mock.Anything, "bob@example.com").Return(false, providerErr)
		svc := NewService(newMemRepo(), idp, newMemSeeder(), silentLogger)

		_, err := svc.SignUp(context.Background(), SignUpRequest{Email: "bob@example.com", Password: "Password123"})
		assert.Equal(t, providerErr, err)
	})
}

func TestSignInAndCurrent(t *testing.T) {
	authed := &AuthSession{Identity: alice, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	badCreds := errors.Join(ErrAuth, errors.New("invalid credentials"))

	idp := new(MockIdentityProvider)
	idp.On("SignIn", mock.Anything, "alice@example.com", "Password123").Return(authed, nil)
	idp.On("SignIn", mock.Anything, "alice@example.com", "wrong").Return(nil, badCreds)
	idp.On("CurrentSession", mock.Anything, "tok").Return(authed, nil)
	idp.On("SignOut", mock.Anything, "tok").Return(nil)

	seeder := newMemSeeder()
	svc := NewService(newMemRepo(), idp, seeder, silentLogger)

	sess, err := svc.SignIn(context.Background(), SignInRequest{Email: "Alice@example.com", Password: "Password123"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, sess.Profile.ID)

	cur, err := svc.Current(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, sess.Profile.ID, cur.Profile.ID)
	assert.Equal(t, 1, seeder.calls)

	_, err = svc.SignIn(context.Background(), SignInRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuth)

	assert.NoError(t, svc.SignOut(context.Background(), "tok"))
}

func TestUpdateDetailsAndSubscription(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, new(MockIdentityProvider), newMemSeeder(), silentLogger)
	_, err := svc.EnsureProfile(context.Background(), alice)
	require.NoError(t, err)

	name := "<b>Alice</b> Liddell"
	p, err := svc.UpdateDetails(context.Background(), alice.ID, UpdateProfileRequest{FullName: &name})
	require.NoError(t, err)
	require.NotNil(t, p.FullName)
	assert.Equal(t, "Alice Liddell", *p.FullName)
	assert.Equal(t, entitlements.TierFree, p.SubscriptionTier)

	blank := "  "
	p, err = svc.UpdateDetails(context.Background(), alice.ID, UpdateProfileRequest{FullName: &blank})
	require.NoError(t, err)
	assert.Nil(t, p.FullName)

	_, err = svc.UpdateDetails(context.Background(), "nobody", UpdateProfileRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	// Billing confirmation flows through the engine into the same repository.
	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	engine := entitlements.NewEngine(repo, silentLogger)
	require.NoError(t, engine.ApplyBillingConfirmation(context.Background(), alice.ID, entitlements.TierPro, start, end))

	sum, err := svc.Entitlements(context.Background(), alice.ID, start.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, entitlements.TierPro, sum.EffectiveTier)

	sum, err = svc.Entitlements(context.Background(), alice.ID, end.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, entitlements.TierFree, sum.EffectiveTier)
	assert.Equal(t, entitlements.TierPro, sum.StoredTier)
}
