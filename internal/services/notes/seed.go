package notes

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Seed keys identify the default notes. The store keeps (user_id, seed_key)
// unique so a profile is seeded at most once.
const (
	SeedKeyWelcome = "welcome"
	SeedKeyTodo    = "todo"
)

const welcomeContent = `Organize and manage your notes with ease.

Features:
✨ AI assistance
📸 Image attachments
🎤 Voice recording
🏷️ Hashtag categories

How to use:
1. Tap the + button at the bottom right to add a new note
2. Categorize your notes with hashtags
3. Use the media buttons to attach images or audio
4. Tap ✨ for AI help

Tip: tap a hashtag at the top to filter your notes.`

const todoContent = `💡 Tips:
• Tick the boxes as you finish tasks
• You can add new tasks
• Tag important tasks with #important
• Don't forget to note down dates

Adapt this list to your needs. Use the + button to add new tasks!`

var defaultTodos = []string{
	"Explore the app",
	"Create your first note",
	"Try hashtags",
	"Test the AI feature",
	"Make a daily plan",
	"Prepare a shopping list",
	"Write down important dates",
	"Capture your ideas",
}

// DefaultNotes builds the welcome and todo notes given to every new profile.
// The welcome note sorts first.
func DefaultNotes(profileID string, now time.Time) []*Note {
	now = now.UTC()

	todos := make([]Todo, 0, len(defaultTodos))
	for _, text := range defaultTodos {
		todos = append(todos, Todo{ID: newTodoID(), Text: text})
	}

	return []*Note{
		{
			ID:        bson.NewObjectID(),
			UserID:    profileID,
			Title:     "📝 Welcome to Notely!",
			Content:   welcomeContent,
			Tags:      []string{"important", "personal"},
			SeedKey:   SeedKeyWelcome,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        bson.NewObjectID(),
			UserID:    profileID,
			Title:     "✅ To-do List",
			Content:   todoContent,
			Tags:      []string{"todos", "important"},
			Todos:     todos,
			SeedKey:   SeedKeyTodo,
			CreatedAt: now.Add(-time.Millisecond),
			UpdatedAt: now.Add(-time.Millisecond),
		},
	}
}

// SeedDefaults stores the default notes for profileID. Notes that were
// already seeded are skipped, so repeated calls are harmless.
func (s *Service) SeedDefaults(ctx context.Context, profileID string) error {
	err := s.repo.InsertDefaults(ctx, DefaultNotes(profileID, s.now()))
	if errors.Is(err, ErrDuplicate) {
		s.log.Debug("default notes already present", "user_id", profileID)
		return nil
	}
	if err != nil {
		s.log.Error(ErrSeedNotes.Error(), "error", err, "user_id", profileID)
		return ErrSeedNotes
	}

	s.log.Info("default notes seeded", "user_id", profileID)
	return nil
}
