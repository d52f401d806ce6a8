package identity

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UsersRepo defines the interface for user repository operations
type UsersRepo interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *User) error
	// FindByEmail returns ErrUserNotFound when nothing matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// SessionsRepo stores issued sessions.
type SessionsRepo interface {
	Create(ctx context.Context, s *SessionRecord) error
	// FindByID returns ErrSessionNotFound when nothing matches.
	FindByID(ctx context.Context, id bson.ObjectID) (*SessionRecord, error)
	// Revoke marks the session revoked. Revoking twice is not an error.
	Revoke(ctx context.Context, id bson.ObjectID, at time.Time) error
}
