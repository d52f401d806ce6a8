package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notely/internal/services/entitlements"
	util "notely/internal/utils"
	"notely/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service manages events and reminders and answers calendar queries.
type Service struct {
	events    EventsRepo
	reminders RemindersRepo
	notes     NoteLookup
	subs      SubscriptionSource
	engine    *Engine
	now       func() time.Time
	log       *slog.Logger
}

// NewService creates a new calendar service
func NewService(events EventsRepo, reminders RemindersRepo, notes NoteLookup, subs SubscriptionSource, engine *Engine, log *slog.Logger) *Service {
	return &Service{
		events:    events,
		reminders: reminders,
		notes:     notes,
		subs:      subs,
		engine:    engine,
		now:       time.Now,
		log:       log,
	}
}

// CreateEventRequest represents an event creation request
type CreateEventRequest struct {
	NoteID      *bson.ObjectID `json:"note_id,omitempty"`
	Title       string         `json:"title" validate:"required,max=200" example:"Doctor Appointment"`
	Description string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Start       time.Time      `json:"start_time" validate:"required" example:"2024-03-28T09:30:00Z"`
	End         time.Time      `json:"end_time" example:"2024-03-28T10:00:00Z"`
	AllDay      bool           `json:"all_day"`
	Color       string         `json:"color,omitempty" validate:"omitempty,hexcolor" example:"#FFD700"`
	Tags        []string       `json:"tags,omitempty" validate:"omitempty,max=32,dive,max=64"`
}

// UpdateEventRequest changes the fields that are set; nil Tags leaves the
// tags alone. ClearNote drops the note link.
type UpdateEventRequest struct {
	NoteID      *bson.ObjectID `json:"note_id,omitempty"`
	ClearNote   bool           `json:"clear_note,omitempty"`
	Title       *string        `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Start       *time.Time     `json:"start_time,omitempty"`
	End         *time.Time     `json:"end_time,omitempty"`
	AllDay      *bool          `json:"all_day,omitempty"`
	Color       *string        `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Tags        []string       `json:"tags,omitempty" validate:"omitempty,max=32,dive,max=64"`
}

// CreateReminderRequest represents a reminder creation request. Exactly one
// of Time and Location must be set, matching Type.
type CreateReminderRequest struct {
	Type        TriggerKind    `json:"type" validate:"required,oneof=time location" example:"time"`
	Title       string         `json:"title" validate:"required,max=200" example:"Call the dentist"`
	Description string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Time        *time.Time     `json:"time,omitempty"`
	Location    *Place         `json:"location,omitempty"`
	NoteID      *bson.ObjectID `json:"note_id,omitempty"`
	EventID     *bson.ObjectID `json:"event_id,omitempty"`
}

// CreateEvent validates and stores an event.
func (s *Service) CreateEvent(ctx context.Context, profileID string, req CreateEventRequest) (*Event, error) {
	title := sanitize.Clean(req.Title)
	if title == "" {
		return nil, util.Invalid("title", "is required")
	}
	if req.Start.IsZero() {
		return nil, util.Invalid("start_time", "is required")
	}
	end := req.End
	if end.IsZero() && req.AllDay {
		end = req.Start
	}
	if !req.AllDay && end.Before(req.Start) {
		return nil, util.Invalid("end_time", "must not be before start_time")
	}
	if err := s.checkNote(ctx, profileID, req.NoteID); err != nil {
		return nil, err
	}

	ev := &Event{
		ID:          bson.NewObjectID(),
		UserID:      profileID,
		NoteID:      req.NoteID,
		Title:       title,
		Description: sanitize.Clean(req.Description),
		Start:       req.Start.UTC(),
		End:         end.UTC(),
		AllDay:      req.AllDay,
		Color:       req.Color,
		Tags:        sanitize.Tags(req.Tags),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.events.Create(ctx, ev); err != nil {
		s.log.Error(ErrCreateEvent.Error(), "error", err, "user_id", profileID)
		return nil, ErrCreateEvent
	}
	return ev, nil
}

// ListEvents returns all events of the profile by start time.
func (s *Service) ListEvents(ctx context.Context, profileID string) ([]*Event, error) {
	evs, err := s.events.ListByUser(ctx, profileID)
	if err != nil {
		s.log.Error(ErrListEvents.Error(), "error", err, "user_id", profileID)
		return nil, ErrListEvents
	}
	return evs, nil
}

// UpdateEvent applies req to a stored event. The merged event must still
// end no earlier than it starts unless it is all-day.
func (s *Service) UpdateEvent(ctx context.Context, profileID string, id bson.ObjectID, req UpdateEventRequest) (*Event, error) {
	ev, err := s.events.FindByID(ctx, profileID, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		s.log.Error(ErrUpdateEvent.Error(), "error", err, "user_id", profileID, "event_id", id.Hex())
		return nil, ErrUpdateEvent
	}

	if req.Title != nil {
		title := sanitize.Clean(*req.Title)
		if title == "" {
			return nil, util.Invalid("title", "is required")
		}
		ev.Title = title
	}
	if req.Description != nil {
		ev.Description = sanitize.Clean(*req.Description)
	}
	if req.Start != nil {
		if req.Start.IsZero() {
			return nil, util.Invalid("start_time", "is required")
		}
		ev.Start = req.Start.UTC()
	}
	if req.End != nil {
		ev.End = req.End.UTC()
	}
	if req.AllDay != nil {
		ev.AllDay = *req.AllDay
	}
	if req.Color != nil {
		ev.Color = *req.Color
	}
	if req.Tags != nil {
		ev.Tags = sanitize.Tags(req.Tags)
	}
	if !ev.AllDay && ev.End.Before(ev.Start) {
		return nil, util.Invalid("end_time", "must not be before start_time")
	}

	switch {
	case req.ClearNote:
		ev.NoteID = nil
	case req.NoteID != nil:
		if err := s.checkNote(ctx, profileID, req.NoteID); err != nil {
			return nil, err
		}
		ev.NoteID = req.NoteID
	}

	if err := s.events.Replace(ctx, ev); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		s.log.Error(ErrUpdateEvent.Error(), "error", err, "user_id", profileID, "event_id", id.Hex())
		return nil, ErrUpdateEvent
	}
	return ev, nil
}

// DeleteEvent removes an event. Reminders pointing at it are kept.
func (s *Service) DeleteEvent(ctx context.Context, profileID string, id bson.ObjectID) error {
	if err := s.events.Delete(ctx, profileID, id); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return ErrEventNotFound
		}
		s.log.Error(ErrDeleteEvent.Error(), "error", err, "user_id", profileID, "event_id", id.Hex())
		return ErrDeleteEvent
	}
	return nil
}

// CreateReminder validates and stores a reminder. Location reminders need
// the location-reminders feature.
func (s *Service) CreateReminder(ctx context.Context, profileID string, req CreateReminderRequest) (*Reminder, error) {
	title := sanitize.Clean(req.Title)
	if title == "" {
		return nil, util.Invalid("title", "is required")
	}

	var (
		r   *Reminder
		err error
	)
	switch req.Type {
	case KindTime:
		if req.Time == nil || req.Location != nil {
			return nil, util.Invalid("time", "must be the only trigger of a time reminder")
		}
		r, err = NewTimeReminder(profileID, title, *req.Time)
	case KindLocation:
		if req.Location == nil || req.Time != nil {
			return nil, util.Invalid("location", "must be the only trigger of a location reminder")
		}
		if err := s.checkFeature(ctx, profileID, entitlements.FeatureLocationReminders); err != nil {
			return nil, err
		}
		place := *req.Location
		place.Name = sanitize.Clean(place.Name)
		r, err = NewLocationReminder(profileID, title, place)
	default:
		return nil, util.Invalid("type", "must be one of time location")
	}
	if err != nil {
		return nil, &util.ValidationError{Field: string(req.Type), Reason: err.Error()}
	}

	if err := s.checkNote(ctx, profileID, req.NoteID); err != nil {
		return nil, err
	}
	if req.EventID != nil {
		if _, err := s.events.FindByID(ctx, profileID, *req.EventID); err != nil {
			if errors.Is(err, ErrEventNotFound) {
				return nil, util.Invalid("event_id", "does not reference one of your events")
			}
			s.log.Error(ErrCreateReminder.Error(), "error", err, "user_id", profileID)
			return nil, ErrCreateReminder
		}
	}

	r.Description = sanitize.Clean(req.Description)
	r.NoteID = req.NoteID
	r.EventID = req.EventID
	r.CreatedAt = s.now().UTC()

	if err := s.reminders.Create(ctx, r); err != nil {
		s.log.Error(ErrCreateReminder.Error(), "error", err, "user_id", profileID)
		return nil, ErrCreateReminder
	}
	return r, nil
}

// ListReminders returns all reminders of the profile.
func (s *Service) ListReminders(ctx context.Context, profileID string) ([]*Reminder, error) {
	rs, err := s.reminders.ListByUser(ctx, profileID)
	if err != nil {
		s.log.Error(ErrListReminders.Error(), "error", err, "user_id", profileID)
		return nil, ErrListReminders
	}
	return rs, nil
}

// RemindersForEvent returns the reminders attached to an event.
func (s *Service) RemindersForEvent(ctx context.Context, profileID string, eventID bson.ObjectID) ([]*Reminder, error) {
	if _, err := s.events.FindByID(ctx, profileID, eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		s.log.Error(ErrListReminders.Error(), "error", err, "user_id", profileID, "event_id", eventID.Hex())
		return nil, ErrListReminders
	}
	rs, err := s.reminders.ListByEvent(ctx, profileID, eventID)
	if err != nil {
		s.log.Error(ErrListReminders.Error(), "error", err, "user_id", profileID, "event_id", eventID.Hex())
		return nil, ErrListReminders
	}
	return rs, nil
}

// CompleteReminder marks a reminder as done.
func (s *Service) CompleteReminder(ctx context.Context, profileID string, id bson.ObjectID) (*Reminder, error) {
	r, err := s.reminders.SetCompleted(ctx, profileID, id, true)
	if err != nil {
		if errors.Is(err, ErrReminderNotFound) {
			return nil, ErrReminderNotFound
		}
		s.log.Error(ErrUpdateReminder.Error(), "error", err, "user_id", profileID, "reminder_id", id.Hex())
		return nil, ErrUpdateReminder
	}
	return r, nil
}

// DeleteReminder removes a reminder.
func (s *Service) DeleteReminder(ctx context.Context, profileID string, id bson.ObjectID) error {
	if err := s.reminders.Delete(ctx, profileID, id); err != nil {
		if errors.Is(err, ErrReminderNotFound) {
			return ErrReminderNotFound
		}
		s.log.Error(ErrDeleteReminder.Error(), "error", err, "user_id", profileID, "reminder_id", id.Hex())
		return ErrDeleteReminder
	}
	return nil
}

// Month renders the month grid for the profile. selected may be nil.
func (s *Service) Month(ctx context.Context, profileID string, year, month int, selected *time.Time) (*MonthView, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	from, to := s.engine.monthRange(year, month)
	evs, rs, err := s.load(ctx, profileID, from, to)
	if err != nil {
		return nil, err
	}
	return s.engine.MonthGrid(year, month, evs, rs, s.now(), selected)
}

// Day returns the events and time reminders of one date.
func (s *Service) Day(ctx context.Context, profileID string, year, month, day int) (*DayBucket, error) {
	if err := checkDate(year, month, day); err != nil {
		return nil, err
	}
	from, to := s.engine.dayRange(year, month, day)
	evs, rs, err := s.load(ctx, profileID, from, to)
	if err != nil {
		return nil, err
	}
	return s.engine.Day(year, month, day, evs, rs)
}

func (s *Service) load(ctx context.Context, profileID string, from, to time.Time) ([]*Event, []*Reminder, error) {
	evs, err := s.events.ListStartingBetween(ctx, profileID, from, to)
	if err != nil {
		s.log.Error(ErrListEvents.Error(), "error", err, "user_id", profileID)
		return nil, nil, ErrListEvents
	}
	rs, err := s.reminders.ListTimeBetween(ctx, profileID, from, to)
	if err != nil {
		s.log.Error(ErrListReminders.Error(), "error", err, "user_id", profileID)
		return nil, nil, ErrListReminders
	}
	return evs, rs, nil
}

func (s *Service) checkNote(ctx context.Context, profileID string, noteID *bson.ObjectID) error {
	if noteID == nil {
		return nil
	}
	ok, err := s.notes.NoteExists(ctx, profileID, *noteID)
	if err != nil {
		s.log.Error("failed to look up note", "error", err, "user_id", profileID, "note_id", noteID.Hex())
		return fmt.Errorf("look up note: %w", err)
	}
	if !ok {
		return util.Invalid("note_id", "does not reference one of your notes")
	}
	return nil
}

func (s *Service) checkFeature(ctx context.Context, profileID string, f entitlements.Feature) error {
	sub, err := s.subs.Subscription(ctx, profileID)
	if err != nil {
		s.log.Error("failed to load subscription", "error", err, "user_id", profileID)
		return fmt.Errorf("load subscription: %w", err)
	}
	return entitlements.CheckFeature(sub, f, s.now())
}
