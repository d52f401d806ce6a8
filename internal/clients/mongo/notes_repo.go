package mongo

import (
	"context"
	"errors"
	"time"

	"notely/internal/logger"
	"notely/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesRepo implements the notes.Repository interface for MongoDB
type NotesRepo struct {
	collection *mongo.Collection
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level ErrNoteNotFound.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notes.ErrNoteNotFound
	}
	return err
}

// NewNotesRepo creates a new notes repository
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection("notes")

	indexes := []mongo.IndexModel{
		// Listing and the monthly quota count.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
		// At most one copy of each default note per user.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "seed_key", Value: 1},
			},
			Options: options.Index().
				SetName("user_seed_key_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"seed_key": bson.M{"$exists": true}}),
		},
	}

	if err := ensureIndexes(parentCtx, collection, indexes); err != nil {
		return nil, err
	}

	return &NotesRepo{collection: collection}, nil
}

// Create creates a new note in the database
func (r *NotesRepo) Create(ctx context.Context, note *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, note)
	return err
}

// InsertDefaults stores seed notes unordered, so a partial earlier run is
// completed rather than aborted by the first duplicate.
func (r *NotesRepo) InsertDefaults(ctx context.Context, seed []*notes.Note) error {
	if len(seed) == 0 {
		return nil
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	docs := make([]any, len(seed))
	for i, n := range seed {
		docs[i] = n
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logger.L().Debug("default notes already present", "user_id", seed[0].UserID)
			return notes.ErrDuplicate
		}
		return err
	}
	return nil
}

// ListByUser returns every note of userID, newest first.
func (r *NotesRepo) ListByUser(ctx context.Context, userID string) ([]*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*notes.Note, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID loads one note owned by userID.
func (r *NotesRepo) FindByID(ctx context.Context, userID string, noteID bson.ObjectID) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var note notes.Note
	if err := r.collection.FindOne(ctx, ownedBy(userID, noteID)).Decode(&note); err != nil {
		return nil, translateNotFound(err)
	}
	return &note, nil
}

// NoteExists reports whether userID owns noteID.
func (r *NotesRepo) NoteExists(ctx context.Context, userID string, noteID bson.ObjectID) (bool, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, ownedBy(userID, noteID), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update applies patch and returns the updated note.
func (r *NotesRepo) Update(ctx context.Context, userID string, noteID bson.ObjectID, patch notes.UpdateNote) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.HasMedia != nil {
		set["has_media"] = *patch.HasMedia
	}
	if patch.Todos != nil {
		set["todos"] = *patch.Todos
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}
	if patch.AI != nil {
		set["ai"] = patch.AI
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated notes.Note
	err := r.collection.FindOneAndUpdate(ctx, ownedBy(userID, noteID), bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &updated, nil
}

// SetTodoCompleted flips one todo item in place.
func (r *NotesRepo) SetTodoCompleted(ctx context.Context, userID string, noteID bson.ObjectID, todoID string, completed bool) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := ownedBy(userID, noteID)
	filter["todos.id"] = todoID

	update := bson.M{"$set": bson.M{
		"todos.$.completed": completed,
		"updated_at":        time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated notes.Note
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	exists, err := r.NoteExists(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, notes.ErrTodoNotFound
	}
	return nil, notes.ErrNoteNotFound
}

// Delete deletes a note
func (r *NotesRepo) Delete(ctx context.Context, userID string, noteID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, ownedBy(userID, noteID))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notes.ErrNoteNotFound
	}
	return nil
}

// CountCreatedSince counts notes the user created at or after since.
// Seed notes carry a seed_key and are skipped.
func (r *NotesRepo) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": since},
		"seed_key":   ExistsFalse,
	}
	return r.collection.CountDocuments(ctx, filter)
}
