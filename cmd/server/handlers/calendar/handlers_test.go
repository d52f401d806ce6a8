package calendar

import (
	"context"
	"io"
	"testing"
	"time"

	"notely/cmd/server/testutil"
	"notely/internal/services/calendar"
	"notely/internal/services/entitlements"
	"notely/internal/services/profiles"
	util "notely/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const testUserID = "683cdb8aa96ad71e8e075bd0"

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) CreateEvent(ctx context.Context, profileID string, req calendar.CreateEventRequest) (*calendar.Event, error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.Event), args.Error(1)
}

func (m *MockCalendarService) ListEvents(ctx context.Context, profileID string) ([]*calendar.Event, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*calendar.Event), args.Error(1)
}

func (m *MockCalendarService) UpdateEvent(ctx context.Context, profileID string, id bson.ObjectID, req calendar.UpdateEventRequest) (*calendar.Event, error) {
	args := m.Called(ctx, profileID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.Event), args.Error(1)
}

func (m *MockCalendarService) DeleteEvent(ctx context.Context, profileID string, id bson.ObjectID) error {
	return m.Called(ctx, profileID, id).Error(0)
}

func (m *MockCalendarService) RemindersForEvent(ctx context.Context, profileID string, eventID bson.ObjectID) ([]*calendar.Reminder, error) {
	args := m.Called(ctx, profileID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*calendar.Reminder), args.Error(1)
}

func (m *MockCalendarService) CreateReminder(ctx context.Context, profileID string, req calendar.CreateReminderRequest) (*calendar.Reminder, error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.Reminder), args.Error(1)
}

func (m *MockCalendarService) ListReminders(ctx context.Context, profileID string) ([]*calendar.Reminder, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*calendar.Reminder), args.Error(1)
}

func (m *MockCalendarService) CompleteReminder(ctx context.Context, profileID string, id bson.ObjectID) (*calendar.Reminder, error) {
	args := m.Called(ctx, profileID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.Reminder), args.Error(1)
}

func (m *MockCalendarService) DeleteReminder(ctx context.Context, profileID string, id bson.ObjectID) error {
	return m.Called(ctx, profileID, id).Error(0)
}

func (m *MockCalendarService) Month(ctx context.Context, profileID string, year, month int, selected *time.Time) (*calendar.MonthView, error) {
	args := m.Called(ctx, profileID, year, month, selected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.MonthView), args.Error(1)
}

func (m *MockCalendarService) Day(ctx context.Context, profileID string, year, month, day int) (*calendar.DayBucket, error) {
	args := m.Called(ctx, profileID, year, month, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.DayBucket), args.Error(1)
}

func (m *MockCalendarService) ExportICS(ctx context.Context, profileID string) (string, error) {
	args := m.Called(ctx, profileID)
	return args.String(0), args.Error(1)
}

func setupCalendarTest(t *testing.T) (*fiber.App, *MockCalendarService) {
	t.Helper()

	svc := &MockCalendarService{}
	app := testutil.CreateTestApp(t)
	h := NewHandlers(svc, testutil.CreateTestValidator(t))

	grp := app.Group("/api/v1/calendar", testutil.AsProfile(&profiles.Profile{ID: testUserID}))
	grp.Get("/month", h.Month)
	grp.Get("/day", h.Day)
	grp.Get("/export.ics", h.Export)
	grp.Post("/events", h.CreateEvent)
	grp.Get("/events", h.ListEvents)
	grp.Patch("/events/:id", h.UpdateEvent)
	grp.Delete("/events/:id", h.DeleteEvent)
	grp.Get("/events/:id/reminders", h.EventReminders)
	grp.Post("/reminders", h.CreateReminder)
	grp.Get("/reminders", h.ListReminders)
	grp.Post("/reminders/:id/complete", h.CompleteReminder)
	grp.Delete("/reminders/:id", h.DeleteReminder)

	t.Cleanup(func() { svc.AssertExpectations(t) })
	return app, svc
}

func TestMonth(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		app, svc := setupCalendarTest(t)
		view := &calendar.MonthView{Year: 2024, Month: 1, Offset: 4}
		svc.On("Month", mock.Anything, testUserID, 2024, 1, (*time.Time)(nil)).Return(view, nil).Once()

		resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/calendar/month?year=2024&month=1", nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got calendar.MonthView
		testutil.DecodeJSON(t, resp, &got)
		assert.Equal(t, 4, got.Offset)
	})

	t.Run("with selected instant", func(t *testing.T) {
		app, svc := setupCalendarTest(t)
		selected := time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)
		svc.On("Month", mock.Anything, testUserID, 2024, 1, mock.MatchedBy(func(s *time.Time) bool {
			return s != nil && s.Equal(selected)
		})).Return(&calendar.MonthView{Year: 2024, Month: 1}, nil).Once()

		resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/calendar/month?year=2024&month=1&selected=2024-02-14T09:00:00Z", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	for _, q := range []string{"year=2024&month=12", "year=2024&month=-1", "year=0&month=3", "year=2024&month=1&selected=yesterday"} {
		t.Run("rejects "+q, func(t *testing.T) {
			app, _ := setupCalendarTest(t)
			resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/calendar/month?"+q, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestDay(t *testing.T) {
	app, svc := setupCalendarTest(t)
	svc.On("Day", mock.Anything, testUserID, 2023, 1, 29).
		Return(nil, calendar.ErrInvalidArgument).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/calendar/day?year=2023&month=1&day=29", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateReminderFeatureLocked(t *testing.T) {
	app, svc := setupCalendarTest(t)
	svc.On("CreateReminder", mock.Anything, testUserID, mock.Anything).
		Return(nil, &entitlements.FeatureError{Feature: entitlements.FeatureLocationReminders, Tier: entitlements.TierFree}).Once()

	body := map[string]any{
		"type":     "location",
		"title":    "Buy bread",
		"location": map[string]any{"name": "Bakery", "latitude": 41.0, "longitude": 29.0},
	}
	resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/calendar/reminders", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
}

func TestCreateReminderRejectsUnknownType(t *testing.T) {
	app, _ := setupCalendarTest(t)

	body := map[string]any{"type": "weather", "title": "Umbrella"}
	resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/calendar/reminders", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEventLifecycle(t *testing.T) {
	app, svc := setupCalendarTest(t)
	start := time.Date(2024, 3, 28, 9, 30, 0, 0, time.UTC)
	ev := &calendar.Event{ID: bson.NewObjectID(), UserID: testUserID, Title: "Doctor", Start: start, End: start.Add(30 * time.Minute)}

	svc.On("CreateEvent", mock.Anything, testUserID, mock.MatchedBy(func(r calendar.CreateEventRequest) bool {
		return r.Title == "Doctor" && r.Start.Equal(start)
	})).Return(ev, nil).Once()
	svc.On("ListEvents", mock.Anything, testUserID).Return([]*calendar.Event{ev}, nil).Once()
	svc.On("DeleteEvent", mock.Anything, testUserID, ev.ID).Return(nil).Once()
	svc.On("DeleteEvent", mock.Anything, testUserID, ev.ID).Return(calendar.ErrEventNotFound).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/calendar/events", map[string]any{
		"title":      "Doctor",
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(30 * time.Minute).Format(time.RFC3339),
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(testutil.CreateJSONRequest("GET", "/api/v1/calendar/events", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(testutil.CreateJSONRequest("DELETE", "/api/v1/calendar/events/"+ev.ID.Hex(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(testutil.CreateJSONRequest("DELETE", "/api/v1/calendar/events/"+ev.ID.Hex(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateEvent(t *testing.T) {
	id := bson.NewObjectID()
	start := time.Date(2024, 3, 28, 9, 30, 0, 0, time.UTC)

	t.Run("updated", func(t *testing.T) {
		app, svc := setupCalendarTest(t)
		svc.On("UpdateEvent", mock.Anything, testUserID, id, mock.MatchedBy(func(r calendar.UpdateEventRequest) bool {
			return r.Title != nil && *r.Title == "Dentist" && r.Start == nil
		})).Return(&calendar.Event{ID: id, UserID: testUserID, Title: "Dentist", Start: start, End: start}, nil).Once()

		resp, err := app.Test(testutil.CreateJSONRequest("PATCH", "/api/v1/calendar/events/"+id.Hex(), map[string]any{"title": "Dentist"}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got calendar.Event
		testutil.DecodeJSON(t, resp, &got)
		assert.Equal(t, "Dentist", got.Title)
	})

	t.Run("end before start", func(t *testing.T) {
		app, svc := setupCalendarTest(t)
		svc.On("UpdateEvent", mock.Anything, testUserID, id, mock.Anything).
			Return(nil, util.Invalid("end_time", "must not be before start_time")).Once()

		resp, err := app.Test(testutil.CreateJSONRequest("PATCH", "/api/v1/calendar/events/"+id.Hex(), map[string]any{
			"end_time": start.Add(-time.Hour).Format(time.RFC3339),
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing", func(t *testing.T) {
		app, svc := setupCalendarTest(t)
		svc.On("UpdateEvent", mock.Anything, testUserID, id, mock.Anything).Return(nil, calendar.ErrEventNotFound).Once()

		resp, err := app.Test(testutil.CreateJSONRequest("PATCH", "/api/v1/calendar/events/"+id.Hex(), map[string]any{"title": "x"}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestCompleteReminder(t *testing.T) {
	app, svc := setupCalendarTest(t)
	id := bson.NewObjectID()
	svc.On("CompleteReminder", mock.Anything, testUserID, id).Return(nil, calendar.ErrReminderNotFound).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/calendar/reminders/"+id.Hex()+"/complete", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestExport(t *testing.T) {
	app, svc := setupCalendarTest(t)
	svc.On("ExportICS", mock.Anything, testUserID).Return("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", nil).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/calendar/export.ics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")
}
