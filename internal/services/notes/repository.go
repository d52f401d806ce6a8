package notes

import (
	"context"
	"time"

	"notely/internal/services/entitlements"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for notes repository operations.
// Every lookup is scoped by userID; a note owned by someone else is
// reported as ErrNoteNotFound.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	// InsertDefaults stores seed notes. It returns ErrDuplicate when any of
	// them was stored before.
	InsertDefaults(ctx context.Context, notes []*Note) error
	// ListByUser returns all notes of userID, created_at desc then _id desc.
	ListByUser(ctx context.Context, userID string) ([]*Note, error)
	FindByID(ctx context.Context, userID string, noteID bson.ObjectID) (*Note, error)
	Update(ctx context.Context, userID string, noteID bson.ObjectID, patch UpdateNote) (*Note, error)
	SetTodoCompleted(ctx context.Context, userID string, noteID bson.ObjectID, todoID string, completed bool) (*Note, error)
	Delete(ctx context.Context, userID string, noteID bson.ObjectID) error
	// CountCreatedSince counts the user's own notes created at or after since.
	// Seed notes are not counted.
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int64, error)
}

// SubscriptionSource loads the entitlement state of a profile.
type SubscriptionSource interface {
	Subscription(ctx context.Context, profileID string) (entitlements.Subscription, error)
}
