package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultTags is the advisory tag vocabulary offered to users. Free-form
// tags are accepted as well.
var DefaultTags = []string{
	"personal",
	"work",
	"ideas",
	"todos",
	"important",
	"shopping",
	"travel",
	"health",
}

// Note is a user note. It belongs to exactly one profile through UserID.
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID    string        `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	Title     string        `bson:"title" json:"title" example:"Meeting Notes"`
	Content   string        `bson:"content" json:"content" example:"Remember to discuss the quarterly targets"`
	Tags      []string      `bson:"tags" json:"tags"`
	HasMedia  bool          `bson:"has_media" json:"has_media"`
	Todos     []Todo        `bson:"todos,omitempty" json:"todos,omitempty"`
	Images    []Image       `bson:"images,omitempty" json:"images,omitempty"`
	AI        *AIResult     `bson:"ai,omitempty" json:"ai,omitempty"`
	SeedKey   string        `bson:"seed_key,omitempty" json:"-"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// Seeded reports whether n is one of the default notes created at sign-up.
func (n *Note) Seeded() bool {
	return n.SeedKey != ""
}

// Todo is a checklist item embedded in a note.
type Todo struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	Completed bool   `bson:"completed" json:"completed"`
}

// Image is an attached picture. Its contents are opaque here.
type Image struct {
	URL            string        `bson:"url" json:"url" validate:"required,url"`
	Metadata       ImageMetadata `bson:"metadata" json:"metadata"`
	Filters        *ImageFilters `bson:"filters,omitempty" json:"filters,omitempty"`
	RecognizedText string        `bson:"recognized_text,omitempty" json:"recognized_text,omitempty"`
	Category       string        `bson:"category,omitempty" json:"category,omitempty"`
}

type ImageMetadata struct {
	Width  int    `bson:"width" json:"width"`
	Height int    `bson:"height" json:"height"`
	Type   string `bson:"type" json:"type"`
}

type ImageFilters struct {
	Brightness float64 `bson:"brightness" json:"brightness"`
	Contrast   float64 `bson:"contrast" json:"contrast"`
	Saturation float64 `bson:"saturation" json:"saturation"`
}

// AIResult holds outputs produced by external AI services.
type AIResult struct {
	Transcription string       `bson:"transcription,omitempty" json:"transcription,omitempty"`
	Summary       string       `bson:"summary,omitempty" json:"summary,omitempty"`
	Translation   *Translation `bson:"translation,omitempty" json:"translation,omitempty"`
	Suggestions   []string     `bson:"suggestions,omitempty" json:"suggestions,omitempty"`
}

type Translation struct {
	DetectedLanguage string            `bson:"detected_language" json:"detected_language"`
	Translations     map[string]string `bson:"translations" json:"translations"`
}

// UpdateNote is a sanitized partial update. Nil fields are left untouched.
type UpdateNote struct {
	Title    *string
	Content  *string
	Tags     *[]string
	HasMedia *bool
	Todos    *[]Todo
	Images   *[]Image
	AI       *AIResult
}

// Empty reports whether the patch changes nothing.
func (u UpdateNote) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Tags == nil && u.HasMedia == nil &&
		u.Todos == nil && u.Images == nil && u.AI == nil
}
