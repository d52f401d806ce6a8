package calendar

import (
	"context"
	"time"

	"notely/cmd/server/handlers/handlerutil"
	"notely/cmd/server/handlers/httperr"
	"notely/internal/services/calendar"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines what the calendar handlers need
type Service interface {
	CreateEvent(ctx context.Context, profileID string, req calendar.CreateEventRequest) (*calendar.Event, error)
	ListEvents(ctx context.Context, profileID string) ([]*calendar.Event, error)
	UpdateEvent(ctx context.Context, profileID string, id bson.ObjectID, req calendar.UpdateEventRequest) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, profileID string, id bson.ObjectID) error
	RemindersForEvent(ctx context.Context, profileID string, eventID bson.ObjectID) ([]*calendar.Reminder, error)
	CreateReminder(ctx context.Context, profileID string, req calendar.CreateReminderRequest) (*calendar.Reminder, error)
	ListReminders(ctx context.Context, profileID string) ([]*calendar.Reminder, error)
	CompleteReminder(ctx context.Context, profileID string, id bson.ObjectID) (*calendar.Reminder, error)
	DeleteReminder(ctx context.Context, profileID string, id bson.ObjectID) error
	Month(ctx context.Context, profileID string, year, month int, selected *time.Time) (*calendar.MonthView, error)
	Day(ctx context.Context, profileID string, year, month, day int) (*calendar.DayBucket, error)
	ExportICS(ctx context.Context, profileID string) (string, error)
}

// Handlers contains the calendar HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new calendar handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{service: service, validator: validator}
}

// MonthQuery selects a month. Month is 0-based (January is 0).
type MonthQuery struct {
	Year     int    `query:"year" validate:"min=1"`
	Month    int    `query:"month" validate:"min=0,max=11"`
	Selected string `query:"selected" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// DayQuery selects a day. Month is 0-based.
type DayQuery struct {
	Year  int `query:"year" validate:"min=1"`
	Month int `query:"month" validate:"min=0,max=11"`
	Day   int `query:"day" validate:"min=1,max=31"`
}

// CreateEvent adds an event
// @Summary Create a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body calendar.CreateEventRequest true "Event"
// @Success 201 {object} calendar.Event
// @Failure 400 {object} httperr.E
// @Router /calendar/events [post]
func (h *Handlers) CreateEvent(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req calendar.CreateEventRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateEvent"); err != nil {
		return err
	}

	ev, err := h.service.CreateEvent(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

// ListEvents returns every event
// @Summary List calendar events
// @Tags calendar
// @Produce json
// @Security Bearer
// @Success 200 {array} calendar.Event
// @Router /calendar/events [get]
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	events, err := h.service.ListEvents(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(events)
}

// UpdateEvent edits an event
// @Summary Update a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Event ID"
// @Param request body calendar.UpdateEventRequest true "Changed fields"
// @Success 200 {object} calendar.Event
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /calendar/events/{id} [patch]
func (h *Handlers) UpdateEvent(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := handlerutil.ObjectIDParam(c, "id", "UpdateEvent")
	if err != nil {
		return err
	}

	var req calendar.UpdateEventRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateEvent"); err != nil {
		return err
	}

	ev, err := h.service.UpdateEvent(c.UserContext(), userID, id, req)
	if err != nil {
		return err
	}
	return c.JSON(ev)
}

// DeleteEvent removes an event
// @Summary Delete a calendar event
// @Tags calendar
// @Security Bearer
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Router /calendar/events/{id} [delete]
func (h *Handlers) DeleteEvent(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := handlerutil.ObjectIDParam(c, "id", "DeleteEvent")
	if err != nil {
		return err
	}

	if err := h.service.DeleteEvent(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EventReminders lists reminders linked to an event
// @Summary Reminders of an event
// @Tags calendar
// @Produce json
// @Security Bearer
// @Param id path string true "Event ID"
// @Success 200 {array} calendar.Reminder
// @Router /calendar/events/{id}/reminders [get]
func (h *Handlers) EventReminders(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := handlerutil.ObjectIDParam(c, "id", "EventReminders")
	if err != nil {
		return err
	}

	rems, err := h.service.RemindersForEvent(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(rems)
}

// CreateReminder adds a reminder
// @Summary Create a reminder
// @Tags calendar
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body calendar.CreateReminderRequest true "Reminder"
// @Success 201 {object} calendar.Reminder
// @Failure 400 {object} httperr.E
// @Failure 402 {object} httperr.E
// @Router /calendar/reminders [post]
func (h *Handlers) CreateReminder(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req calendar.CreateReminderRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateReminder"); err != nil {
		return err
	}

	rem, err := h.service.CreateReminder(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rem)
}

// ListReminders returns every reminder
// @Summary List reminders
// @Tags calendar
// @Produce json
// @Security Bearer
// @Success 200 {array} calendar.Reminder
// @Router /calendar/reminders [get]
func (h *Handlers) ListReminders(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	rems, err := h.service.ListReminders(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(rems)
}

// CompleteReminder marks a reminder done
// @Summary Complete a reminder
// @Tags calendar
// @Produce json
// @Security Bearer
// @Param id path string true "Reminder ID"
// @Success 200 {object} calendar.Reminder
// @Router /calendar/reminders/{id}/complete [post]
func (h *Handlers) CompleteReminder(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := handlerutil.ObjectIDParam(c, "id", "CompleteReminder")
	if err != nil {
		return err
	}

	rem, err := h.service.CompleteReminder(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(rem)
}

// DeleteReminder removes a reminder
// @Summary Delete a reminder
// @Tags calendar
// @Security Bearer
// @Param id path string true "Reminder ID"
// @Success 204
// @Router /calendar/reminders/{id} [delete]
func (h *Handlers) DeleteReminder(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := handlerutil.ObjectIDParam(c, "id", "DeleteReminder")
	if err != nil {
		return err
	}

	if err := h.service.DeleteReminder(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Month returns the month grid
// @Summary Month view
// @Tags calendar
// @Produce json
// @Security Bearer
// @Param year query int true "Year"
// @Param month query int true "Month, 0-based"
// @Param selected query string false "Selected instant, RFC 3339"
// @Success 200 {object} calendar.MonthView
// @Router /calendar/month [get]
func (h *Handlers) Month(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var q MonthQuery
	if err := handlerutil.ParseAndValidateQuery(c, &q, h.validator, "Month"); err != nil {
		return err
	}

	var selected *time.Time
	if q.Selected != "" {
		t, err := time.Parse(time.RFC3339, q.Selected)
		if err != nil {
			return httperr.Fail(httperr.ErrBadRequest)
		}
		selected = &t
	}

	view, err := h.service.Month(c.UserContext(), userID, q.Year, q.Month, selected)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// Day returns the events and reminders of one day
// @Summary Day view
// @Tags calendar
// @Produce json
// @Security Bearer
// @Param year query int true "Year"
// @Param month query int true "Month, 0-based"
// @Param day query int true "Day of month"
// @Success 200 {object} calendar.DayBucket
// @Router /calendar/day [get]
func (h *Handlers) Day(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var q DayQuery
	if err := handlerutil.ParseAndValidateQuery(c, &q, h.validator, "Day"); err != nil {
		return err
	}

	bucket, err := h.service.Day(c.UserContext(), userID, q.Year, q.Month, q.Day)
	if err != nil {
		return err
	}
	return c.JSON(bucket)
}

// Export returns the calendar as an iCalendar file
// @Summary Export calendar
// @Tags calendar
// @Produce text/calendar
// @Security Bearer
// @Success 200 {string} string
// @Router /calendar/export.ics [get]
func (h *Handlers) Export(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	body, err := h.service.ExportICS(c.UserContext(), userID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="notely.ics"`)
	return c.SendString(body)
}
