package profiles

import (
	"context"
	"time"

	"notely/internal/services/entitlements"
)

// Repository defines the interface for profile repository operations
type Repository interface {
	// Create inserts p, returning ErrDuplicate when the id is taken.
	Create(ctx context.Context, p *Profile) error
	// FindByID returns ErrNotFound when no profile has the id.
	FindByID(ctx context.Context, id string) (*Profile, error)
	MarkDefaultsSeeded(ctx context.Context, id string) error
	UpdateDetails(ctx context.Context, id string, fullName *string, now time.Time) (*Profile, error)
	UpdateSubscription(ctx context.Context, id string, sub entitlements.Subscription) error
}

// IdentityProvider authenticates users. Errors for bad credentials or
// unknown sessions match ErrAuth.
type IdentityProvider interface {
	CurrentSession(ctx context.Context, token string) (*AuthSession, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context, token string) error
	// EmailExists reports whether an account is registered for email.
	EmailExists(ctx context.Context, email string) (bool, error)
}

// DefaultsSeeder creates the default notes of a new profile. It must be
// safe to call more than once for the same profile.
type DefaultsSeeder interface {
	SeedDefaults(ctx context.Context, profileID string) error
}
