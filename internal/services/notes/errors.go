package notes

import "errors"

// ErrNoteNotFound is returned when the note does not exist or belongs to another user.
var ErrNoteNotFound = errors.New("note not found")

// ErrTodoNotFound is returned when a todo id is not present on the note.
var ErrTodoNotFound = errors.New("todo not found")

// ErrDuplicate is returned by the store when a default note was already seeded.
var ErrDuplicate = errors.New("note already exists")

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = errors.New("failed to create note")

// ErrUpdateNote is returned when note update fails.
var ErrUpdateNote = errors.New("failed to update note")

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = errors.New("failed to delete note")

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = errors.New("failed to list notes")

// ErrSeedNotes is returned when the default notes could not be stored.
var ErrSeedNotes = errors.New("failed to seed default notes")

// ErrCreateNotesRepo is returned when notes repository creation fails.
var ErrCreateNotesRepo = errors.New("failed to create notes repository")

// ErrGetNote is returned when a note lookup fails for reasons other than absence.
var ErrGetNote = errors.New("failed to get note")
