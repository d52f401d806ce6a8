package mongo

import (
	"context"
	"errors"
	"time"

	"notely/internal/services/calendar"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EventsRepo implements calendar.EventsRepo
type EventsRepo struct {
	collection *mongo.Collection
}

// NewEventsRepo creates a new events repository
func NewEventsRepo(parentCtx context.Context, db *mongo.Database) (*EventsRepo, error) {
	collection := db.Collection("events")

	err := ensureIndexes(parentCtx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}

	return &EventsRepo{collection: collection}, nil
}

// Create stores a new event.
func (r *EventsRepo) Create(ctx context.Context, ev *calendar.Event) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, ev)
	return err
}

// ListByUser returns every event of userID by start time.
func (r *EventsRepo) ListByUser(ctx context.Context, userID string) ([]*calendar.Event, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// ListStartingBetween returns events with from <= start < to.
func (r *EventsRepo) ListStartingBetween(ctx context.Context, userID string, from, to time.Time) ([]*calendar.Event, error) {
	return r.find(ctx, bson.M{
		"user_id":    userID,
		"start_time": bson.M{"$gte": from, "$lt": to},
	})
}

func (r *EventsRepo) find(ctx context.Context, filter bson.M) ([]*calendar.Event, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*calendar.Event, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID loads one event owned by userID.
func (r *EventsRepo) FindByID(ctx context.Context, userID string, id bson.ObjectID) (*calendar.Event, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var ev calendar.Event
	if err := r.collection.FindOne(ctx, ownedBy(userID, id)).Decode(&ev); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, calendar.ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// Replace overwrites a stored event owned by ev.UserID.
func (r *EventsRepo) Replace(ctx context.Context, ev *calendar.Event) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.ReplaceOne(ctx, ownedBy(ev.UserID, ev.ID), ev)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return calendar.ErrEventNotFound
	}
	return nil
}

// Delete removes one event. Reminders pointing at it are kept.
func (r *EventsRepo) Delete(ctx context.Context, userID string, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return calendar.ErrEventNotFound
	}
	return nil
}
