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

// RemindersRepo implements calendar.RemindersRepo. The trigger is stored as
// a "type" discriminator plus either "time" or "location".
type RemindersRepo struct {
	collection *mongo.Collection
}

// NewRemindersRepo creates a new reminders repository
func NewRemindersRepo(parentCtx context.Context, db *mongo.Database) (*RemindersRepo, error) {
	collection := db.Collection("reminders")

	err := ensureIndexes(parentCtx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "type", Value: 1}, {Key: "time", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}

	return &RemindersRepo{collection: collection}, nil
}

// Create stores a new reminder.
func (r *RemindersRepo) Create(ctx context.Context, rem *calendar.Reminder) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, rem)
	return err
}

// ListByUser returns every reminder of userID in creation order.
func (r *RemindersRepo) ListByUser(ctx context.Context, userID string) ([]*calendar.Reminder, error) {
	return r.find(ctx, bson.M{"user_id": userID}, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

// ListByEvent returns the reminders linked to eventID.
func (r *RemindersRepo) ListByEvent(ctx context.Context, userID string, eventID bson.ObjectID) ([]*calendar.Reminder, error) {
	return r.find(ctx, bson.M{"user_id": userID, "event_id": eventID}, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

// ListTimeBetween returns time reminders firing in [from, to).
func (r *RemindersRepo) ListTimeBetween(ctx context.Context, userID string, from, to time.Time) ([]*calendar.Reminder, error) {
	filter := bson.M{
		"user_id": userID,
		"type":    calendar.KindTime,
		"time":    bson.M{"$gte": from, "$lt": to},
	}
	return r.find(ctx, filter, bson.D{{Key: "time", Value: 1}, {Key: "_id", Value: 1}})
}

func (r *RemindersRepo) find(ctx context.Context, filter bson.M, sort bson.D) ([]*calendar.Reminder, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*calendar.Reminder, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetCompleted marks a reminder done or not done.
func (r *RemindersRepo) SetCompleted(ctx context.Context, userID string, id bson.ObjectID, completed bool) (*calendar.Reminder, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"completed": completed}}

	var rem calendar.Reminder
	if err := r.collection.FindOneAndUpdate(ctx, ownedBy(userID, id), update, opts).Decode(&rem); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, calendar.ErrReminderNotFound
		}
		return nil, err
	}
	return &rem, nil
}

// Delete removes one reminder.
func (r *RemindersRepo) Delete(ctx context.Context, userID string, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return calendar.ErrReminderNotFound
	}
	return nil
}
