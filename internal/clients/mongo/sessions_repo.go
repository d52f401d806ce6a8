package mongo

import (
	"context"
	"errors"
	"time"

	"notely/internal/logger"
	"notely/internal/services/identity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SessionsRepo implements identity.SessionsRepo. Expired sessions are
// removed by a TTL index.
type SessionsRepo struct {
	collection *mongo.Collection
}

// NewSessionsRepo creates a new SessionsRepo instance
func NewSessionsRepo(parentCtx context.Context, db *mongo.Database) (*SessionsRepo, error) {
	collection := db.Collection("sessions")

	err := ensureIndexes(parentCtx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return nil, err
	}

	return &SessionsRepo{collection: collection}, nil
}

// Create stores a new session record
func (r *SessionsRepo) Create(ctx context.Context, s *identity.SessionRecord) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, s); err != nil {
		logger.L().Error("failed to create session", "error", err, "user_id", s.UserID.Hex())
		return err
	}

	logger.L().Debug("session created", "user_id", s.UserID.Hex(), "expires_at", s.ExpiresAt)
	return nil
}

// FindByID loads a session, revoked or not.
func (r *SessionsRepo) FindByID(ctx context.Context, id bson.ObjectID) (*identity.SessionRecord, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var rec identity.SessionRecord
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrSessionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Revoke sets revoked_at on a session that is not revoked yet.
func (r *SessionsRepo) Revoke(ctx context.Context, id bson.ObjectID, at time.Time) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": id, "revoked_at": ExistsFalse}
	update := bson.M{"$set": bson.M{"revoked_at": at}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.L().Error("failed to revoke session", "error", err, "session_id", id.Hex())
		return err
	}

	logger.L().Debug("session revoked", "session_id", id.Hex(), "modified", result.ModifiedCount)
	return nil
}
