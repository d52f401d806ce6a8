package mongo

import (
	"context"
	"errors"
	"time"

	"notely/internal/services/entitlements"
	"notely/internal/services/profiles"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ProfilesRepo implements profiles.Repository. The identity id is the
// document _id, so the primary key is what keeps one profile per identity.
type ProfilesRepo struct {
	collection *mongo.Collection
}

// NewProfilesRepo creates a new profiles repository
func NewProfilesRepo(parentCtx context.Context, db *mongo.Database) (*ProfilesRepo, error) {
	collection := db.Collection("profiles")

	err := ensureIndexes(parentCtx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}

	return &ProfilesRepo{collection: collection}, nil
}

// Create inserts a profile.
func (r *ProfilesRepo) Create(ctx context.Context, p *profiles.Profile) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return profiles.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByID loads a profile by identity id.
func (r *ProfilesRepo) FindByID(ctx context.Context, id string) (*profiles.Profile, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var p profiles.Profile
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profiles.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// MarkDefaultsSeeded records that the default notes exist.
func (r *ProfilesRepo) MarkDefaultsSeeded(ctx context.Context, id string) error {
	return r.set(ctx, id, bson.M{"defaults_seeded": true})
}

// UpdateDetails sets or clears the full name and returns the updated profile.
func (r *ProfilesRepo) UpdateDetails(ctx context.Context, id string, fullName *string, now time.Time) (*profiles.Profile, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"updated_at": now}}
	if fullName != nil {
		update["$set"].(bson.M)["full_name"] = *fullName
	} else {
		update["$unset"] = bson.M{"full_name": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p profiles.Profile
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profiles.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateSubscription stores a tier transition.
func (r *ProfilesRepo) UpdateSubscription(ctx context.Context, id string, sub entitlements.Subscription) error {
	return r.set(ctx, id, bson.M{
		"subscription_tier":  sub.Tier,
		"subscription_start": sub.Start,
		"subscription_end":   sub.End,
		"updated_at":         time.Now().UTC(),
	})
}

func (r *ProfilesRepo) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return profiles.ErrNotFound
	}
	return nil
}
