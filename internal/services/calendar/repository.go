package calendar

import (
	"context"
	"time"

	"notely/internal/services/entitlements"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// EventsRepo stores calendar events. Lookups are scoped by user.
type EventsRepo interface {
	Create(ctx context.Context, ev *Event) error
	// ListByUser returns events ordered by start time ascending.
	ListByUser(ctx context.Context, userID string) ([]*Event, error)
	// ListStartingBetween returns events with from <= start < to.
	ListStartingBetween(ctx context.Context, userID string, from, to time.Time) ([]*Event, error)
	FindByID(ctx context.Context, userID string, id bson.ObjectID) (*Event, error)
	// Replace overwrites a stored event owned by ev.UserID.
	Replace(ctx context.Context, ev *Event) error
	Delete(ctx context.Context, userID string, id bson.ObjectID) error
}

// RemindersRepo stores reminders. Lookups are scoped by user.
type RemindersRepo interface {
	Create(ctx context.Context, r *Reminder) error
	// ListByUser returns reminders ordered by creation time ascending.
	ListByUser(ctx context.Context, userID string) ([]*Reminder, error)
	ListByEvent(ctx context.Context, userID string, eventID bson.ObjectID) ([]*Reminder, error)
	// ListTimeBetween returns time reminders firing in [from, to).
	ListTimeBetween(ctx context.Context, userID string, from, to time.Time) ([]*Reminder, error)
	SetCompleted(ctx context.Context, userID string, id bson.ObjectID, completed bool) (*Reminder, error)
	Delete(ctx context.Context, userID string, id bson.ObjectID) error
}

// NoteLookup checks that a note exists and is owned by userID.
type NoteLookup interface {
	NoteExists(ctx context.Context, userID string, noteID bson.ObjectID) (bool, error)
}

// SubscriptionSource loads the entitlement state of a profile.
type SubscriptionSource interface {
	Subscription(ctx context.Context, profileID string) (entitlements.Subscription, error)
}
