package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Event is a calendar entry, optionally linked to a note. The link is a weak
// reference: deleting the note leaves the event in place.
type Event struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      string         `bson:"user_id" json:"user_id"`
	NoteID      *bson.ObjectID `bson:"note_id,omitempty" json:"note_id,omitempty"`
	Title       string         `bson:"title" json:"title"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Start       time.Time      `bson:"start_time" json:"start_time"`
	End         time.Time      `bson:"end_time" json:"end_time"`
	AllDay      bool           `bson:"all_day" json:"all_day"`
	Color       string         `bson:"color,omitempty" json:"color,omitempty"`
	Tags        []string       `bson:"tags" json:"tags"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
}

// TriggerKind names the variant of a reminder trigger.
type TriggerKind string

const (
	KindTime     TriggerKind = "time"
	KindLocation TriggerKind = "location"
)

// Trigger is what fires a reminder. The only implementations are
// TimeTrigger and LocationTrigger.
type Trigger interface {
	Kind() TriggerKind
	sealed()
}

// TimeTrigger fires at a fixed instant.
type TimeTrigger struct {
	At time.Time
}

func (TimeTrigger) Kind() TriggerKind { return KindTime }
func (TimeTrigger) sealed()           {}

// LocationTrigger fires when the device enters Place.
type LocationTrigger struct {
	Place Place
}

func (LocationTrigger) Kind() TriggerKind { return KindLocation }
func (LocationTrigger) sealed()           {}

// Place is a circular geofence.
type Place struct {
	Name         string  `bson:"name" json:"name"`
	Latitude     float64 `bson:"latitude" json:"latitude"`
	Longitude    float64 `bson:"longitude" json:"longitude"`
	RadiusMeters float64 `bson:"radius_meters" json:"radius_meters"`
}

// Validate checks coordinate ranges and radius.
func (p Place) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidTrigger, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidTrigger, p.Longitude)
	}
	if p.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive", ErrInvalidTrigger)
	}
	return nil
}

// ErrInvalidTrigger is returned when a reminder payload does not match its kind.
var ErrInvalidTrigger = errors.New("invalid reminder trigger")

// Reminder belongs to a profile and may point at a note, an event, or both.
type Reminder struct {
	ID          bson.ObjectID
	UserID      string
	NoteID      *bson.ObjectID
	EventID     *bson.ObjectID
	Title       string
	Description string
	Trigger     Trigger
	Completed   bool
	CreatedAt   time.Time
}

// NewTimeReminder builds a reminder that fires at at.
func NewTimeReminder(userID, title string, at time.Time) (*Reminder, error) {
	if at.IsZero() {
		return nil, fmt.Errorf("%w: time reminder needs a time", ErrInvalidTrigger)
	}
	return newReminder(userID, title, TimeTrigger{At: at.UTC()}), nil
}

// NewLocationReminder builds a reminder that fires on entering place.
func NewLocationReminder(userID, title string, place Place) (*Reminder, error) {
	if err := place.Validate(); err != nil {
		return nil, err
	}
	return newReminder(userID, title, LocationTrigger{Place: place}), nil
}

func newReminder(userID, title string, trig Trigger) *Reminder {
	return &Reminder{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Trigger:   trig,
		CreatedAt: time.Now().UTC(),
	}
}

// At returns the firing time of a time reminder.
func (r *Reminder) At() (time.Time, bool) {
	t, ok := r.Trigger.(TimeTrigger)
	return t.At, ok
}

// reminderDoc is the flat storage and wire shape of a Reminder.
type reminderDoc struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      string         `bson:"user_id" json:"user_id"`
	NoteID      *bson.ObjectID `bson:"note_id,omitempty" json:"note_id,omitempty"`
	EventID     *bson.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	Title       string         `bson:"title" json:"title"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Type        TriggerKind    `bson:"type" json:"type"`
	Time        *time.Time     `bson:"time,omitempty" json:"time,omitempty"`
	Location    *Place         `bson:"location,omitempty" json:"location,omitempty"`
	Completed   bool           `bson:"completed" json:"completed"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
}

func (r Reminder) toDoc() (reminderDoc, error) {
	d := reminderDoc{
		ID:          r.ID,
		UserID:      r.UserID,
		NoteID:      r.NoteID,
		EventID:     r.EventID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
	}
	switch t := r.Trigger.(type) {
	case TimeTrigger:
		at := t.At
		d.Type = KindTime
		d.Time = &at
	case LocationTrigger:
		place := t.Place
		d.Type = KindLocation
		d.Location = &place
	default:
		return reminderDoc{}, fmt.Errorf("%w: reminder has no trigger", ErrInvalidTrigger)
	}
	return d, nil
}

// fromDoc rejects documents whose payload does not match their type.
func fromDoc(d reminderDoc) (Reminder, error) {
	r := Reminder{
		ID:          d.ID,
		UserID:      d.UserID,
		NoteID:      d.NoteID,
		EventID:     d.EventID,
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
	}
	switch {
	case d.Type == KindTime && d.Time != nil && d.Location == nil:
		r.Trigger = TimeTrigger{At: *d.Time}
	case d.Type == KindLocation && d.Location != nil && d.Time == nil:
		r.Trigger = LocationTrigger{Place: *d.Location}
	default:
		return Reminder{}, fmt.Errorf("%w: reminder %s has type %q with mismatched payload", ErrInvalidTrigger, d.ID.Hex(), d.Type)
	}
	return r, nil
}

// MarshalBSON implements bson.Marshaler.
func (r Reminder) MarshalBSON() ([]byte, error) {
	d, err := r.toDoc()
	if err != nil {
		return nil, err
	}
	return bson.Marshal(d)
}

// UnmarshalBSON implements bson.Unmarshaler.
func (r *Reminder) UnmarshalBSON(data []byte) error {
	var d reminderDoc
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	out, err := fromDoc(d)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Reminder) MarshalJSON() ([]byte, error) {
	d, err := r.toDoc()
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Reminder) UnmarshalJSON(data []byte) error {
	var d reminderDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	out, err := fromDoc(d)
	if err != nil {
		return err
	}
	*r = out
	return nil
}
