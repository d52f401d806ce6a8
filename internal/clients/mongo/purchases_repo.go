package mongo

import (
	"context"

	"notely/internal/services/entitlements"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PurchasesRepo implements entitlements.PurchasesRepo on the
// "subscriptions" collection.
type PurchasesRepo struct {
	collection *mongo.Collection
}

// NewPurchasesRepo creates a new purchases repository
func NewPurchasesRepo(parentCtx context.Context, db *mongo.Database) (*PurchasesRepo, error) {
	collection := db.Collection("subscriptions")

	err := ensureIndexes(parentCtx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "purchase_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return nil, err
	}

	return &PurchasesRepo{collection: collection}, nil
}

// Create stores a purchase record.
func (r *PurchasesRepo) Create(ctx context.Context, p *entitlements.Purchase) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, p)
	return err
}

// SetStatus updates the status of a stored purchase.
func (r *PurchasesRepo) SetStatus(ctx context.Context, id bson.ObjectID, status string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entitlements.ErrPurchaseNotFound
	}
	return nil
}

// ListByUser returns a user's purchases, newest first.
func (r *PurchasesRepo) ListByUser(ctx context.Context, userID string) ([]*entitlements.Purchase, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*entitlements.Purchase, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
