package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notely/internal/services/entitlements"
	util "notely/internal/utils"
	"notely/internal/utils/sanitize"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles notes business logic
type Service struct {
	repo Repository
	subs SubscriptionSource
	loc  *time.Location
	now  func() time.Time
	log  *slog.Logger
}

// NewService creates a new notes service. loc is the zone whose calendar
// month bounds the free-tier quota.
func NewService(repo Repository, subs SubscriptionSource, loc *time.Location, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo: repo,
		subs: subs,
		loc:  loc,
		now:  time.Now,
		log:  log,
	}
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title   string      `json:"title" validate:"required,max=200" example:"Meeting Notes"`
	Content string      `json:"content" validate:"required,max=20000" example:"Remember to discuss the quarterly targets"`
	Tags    []string    `json:"tags" validate:"omitempty,max=32,dive,max=64" example:"work,important"`
	Todos   []TodoInput `json:"todos" validate:"omitempty,max=200,dive"`
	Images  []Image     `json:"images" validate:"omitempty,max=20,dive"`
}

// TodoInput is a todo item as supplied by the caller. A missing id is generated.
type TodoInput struct {
	ID        string `json:"id,omitempty" validate:"omitempty,max=64"`
	Text      string `json:"text" validate:"required,max=500"`
	Completed bool   `json:"completed"`
}

// UpdateNoteRequest represents a note update request
type UpdateNoteRequest struct {
	Title   *string      `json:"title,omitempty" validate:"omitempty,max=200" example:"Updated Meeting Notes"`
	Content *string      `json:"content,omitempty" validate:"omitempty,max=20000" example:"Updated content for the meeting"`
	Tags    *[]string    `json:"tags,omitempty" validate:"omitempty,max=32"`
	Todos   *[]TodoInput `json:"todos,omitempty" validate:"omitempty,max=200"`
	Images  *[]Image     `json:"images,omitempty" validate:"omitempty,max=20"`
	AI      *AIResult    `json:"ai,omitempty"`
}

// ListNotesRequest narrows a listing. Tags use OR semantics; Q is a
// case-insensitive substring over title and content.
type ListNotesRequest struct {
	Tags []string `query:"tags" validate:"omitempty,max=32,dive,max=64" example:"work"`
	Q    string   `query:"q" validate:"omitempty,max=256" example:"meeting"`
}

// Create creates a new note after the quota and feature gates pass.
func (s *Service) Create(ctx context.Context, profileID string, req CreateNoteRequest) (*Note, error) {
	title := sanitize.Clean(req.Title)
	content := sanitize.Clean(req.Content)
	if title == "" {
		return nil, util.Invalid("title", "is required")
	}
	if content == "" {
		return nil, util.Invalid("content", "is required")
	}

	todos, err := buildTodos(req.Todos)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.Subscription(ctx, profileID)
	if err != nil {
		s.log.Error("failed to load subscription", "error", err, "user_id", profileID)
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	now := s.now().UTC()
	if len(req.Images) > 0 {
		if err := entitlements.CheckFeature(sub, entitlements.FeatureImageAttachments, now); err != nil {
			return nil, err
		}
	}

	var used int
	if entitlements.QuotaFor(entitlements.EffectiveTier(sub, now)) != entitlements.Unlimited {
		count, err := s.repo.CountCreatedSince(ctx, profileID, entitlements.MonthStart(now, s.loc))
		if err != nil {
			s.log.Error("failed to count notes", "error", err, "user_id", profileID)
			return nil, ErrCreateNote
		}
		used = int(count)
	}
	if err := entitlements.CheckCanCreateNote(sub, used, now); err != nil {
		s.log.Info("note quota exceeded", "user_id", profileID, "used", used)
		return nil, err
	}

	note := &Note{
		ID:        bson.NewObjectID(),
		UserID:    profileID,
		Title:     title,
		Content:   content,
		Tags:      sanitize.Tags(req.Tags),
		HasMedia:  len(req.Images) > 0,
		Todos:     todos,
		Images:    req.Images,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", profileID)
		return nil, ErrCreateNote
	}

	return note, nil
}

// List returns every note of the profile, newest first, narrowed by req.
func (s *Service) List(ctx context.Context, profileID string, req ListNotesRequest) ([]*Note, error) {
	notes, err := s.repo.ListByUser(ctx, profileID)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", profileID)
		return nil, ErrListNotes
	}

	SortNewestFirst(notes)
	notes = FilterByTags(notes, sanitize.Tags(req.Tags))
	return Search(notes, req.Q), nil
}

// Get returns one note of the profile.
func (s *Service) Get(ctx context.Context, profileID string, noteID bson.ObjectID) (*Note, error) {
	n, err := s.repo.FindByID(ctx, profileID, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrGetNote.Error(), "error", err, "user_id", profileID, "note_id", noteID.Hex())
		return nil, ErrGetNote
	}
	return n, nil
}

// sanitizedUpdateNote converts a request into a patch, rejecting title or
// content that would be empty after cleaning.
func sanitizedUpdateNote(req UpdateNoteRequest) (UpdateNote, error) {
	var patch UpdateNote

	if req.Title != nil {
		title := sanitize.Clean(*req.Title)
		if title == "" {
			return UpdateNote{}, util.Invalid("title", "cannot be empty")
		}
		patch.Title = &title
	}
	if req.Content != nil {
		content := sanitize.Clean(*req.Content)
		if content == "" {
			return UpdateNote{}, util.Invalid("content", "cannot be empty")
		}
		patch.Content = &content
	}
	if req.Tags != nil {
		tags := sanitize.Tags(*req.Tags)
		patch.Tags = &tags
	}
	if req.Todos != nil {
		todos, err := buildTodos(*req.Todos)
		if err != nil {
			return UpdateNote{}, err
		}
		if todos == nil {
			todos = []Todo{}
		}
		patch.Todos = &todos
	}
	if req.Images != nil {
		images := *req.Images
		hasMedia := len(images) > 0
		patch.Images = &images
		patch.HasMedia = &hasMedia
	}
	patch.AI = req.AI

	return patch, nil
}

// Update applies a partial update to a note belonging to the profile.
// Attaching images needs image-attachments; storing AI results needs ai-summary.
func (s *Service) Update(ctx context.Context, profileID string, noteID bson.ObjectID, req UpdateNoteRequest) (*Note, error) {
	patch, err := sanitizedUpdateNote(req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.Get(ctx, profileID, noteID)
	}

	addsImages := patch.Images != nil && len(*patch.Images) > 0
	if addsImages || patch.AI != nil {
		sub, err := s.subs.Subscription(ctx, profileID)
		if err != nil {
			s.log.Error("failed to load subscription", "error", err, "user_id", profileID)
			return nil, fmt.Errorf("load subscription: %w", err)
		}
		now := s.now()
		if addsImages {
			if err := entitlements.CheckFeature(sub, entitlements.FeatureImageAttachments, now); err != nil {
				return nil, err
			}
		}
		if patch.AI != nil {
			if err := entitlements.CheckFeature(sub, entitlements.FeatureAISummary, now); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.repo.Update(ctx, profileID, noteID, patch)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for update", "user_id", profileID, "note_id", noteID.Hex())
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", profileID, "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	return updated, nil
}

// ToggleTodo flips the completion state of one todo item.
func (s *Service) ToggleTodo(ctx context.Context, profileID string, noteID bson.ObjectID, todoID string) (*Note, error) {
	n, err := s.Get(ctx, profileID, noteID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, t := range n.Todos {
		if t.ID == todoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrTodoNotFound
	}

	updated, err := s.repo.SetTodoCompleted(ctx, profileID, noteID, todoID, !n.Todos[idx].Completed)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) || errors.Is(err, ErrTodoNotFound) {
			return nil, err
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", profileID, "note_id", noteID.Hex(), "todo_id", todoID)
		return nil, ErrUpdateNote
	}
	return updated, nil
}

// Delete deletes a note belonging to the profile
func (s *Service) Delete(ctx context.Context, profileID string, noteID bson.ObjectID) error {
	if err := s.repo.Delete(ctx, profileID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for delete", "user_id", profileID, "note_id", noteID.Hex())
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", profileID, "note_id", noteID.Hex())
		return ErrDeleteNote
	}
	return nil
}

func buildTodos(in []TodoInput) ([]Todo, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]Todo, 0, len(in))
	for _, t := range in {
		text := sanitize.Clean(t.Text)
		if text == "" {
			return nil, util.Invalid("todos", "text cannot be empty")
		}
		id := t.ID
		if id == "" {
			id = newTodoID()
		}
		out = append(out, Todo{ID: id, Text: text, Completed: t.Completed})
	}
	return out, nil
}

func newTodoID() string {
	return ulid.Make().String()
}
