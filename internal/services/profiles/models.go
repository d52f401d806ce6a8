package profiles

import (
	"time"

	"notely/internal/services/entitlements"
)

// Profile is the durable account record of one identity. Its ID is the
// identity id, so the store's primary key keeps it unique.
type Profile struct {
	ID                string            `bson:"_id" json:"id" example:"683cdb8aa96ad71e8e075bd0"`
	Email             string            `bson:"email" json:"email" example:"test@example.com"`
	FullName          *string           `bson:"full_name,omitempty" json:"full_name" example:"Ada Lovelace"`
	SubscriptionTier  entitlements.Tier `bson:"subscription_tier" json:"subscription_tier" example:"free"`
	SubscriptionStart *time.Time        `bson:"subscription_start,omitempty" json:"subscription_start"`
	SubscriptionEnd   *time.Time        `bson:"subscription_end,omitempty" json:"subscription_end"`
	DefaultsSeeded    bool              `bson:"defaults_seeded" json:"-"`
	CreatedAt         time.Time         `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt         time.Time         `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// Subscription returns the entitlement view of the stored tier fields.
func (p *Profile) Subscription() entitlements.Subscription {
	return entitlements.Subscription{
		Tier:  p.SubscriptionTier,
		Start: p.SubscriptionStart,
		End:   p.SubscriptionEnd,
	}
}

// Identity is an authenticated principal as reported by the identity provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthSession is a signed-in identity plus its bearer token.
type AuthSession struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

// Session is what callers get back after signing in: a token and the
// provisioned profile.
type Session struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   *Profile  `json:"profile"`
}
