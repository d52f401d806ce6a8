package notes

import (
	"context"
	"testing"
	"time"

	"notely/cmd/server/testutil"
	"notely/internal/services/entitlements"
	"notely/internal/services/notes"
	"notely/internal/services/profiles"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const testUserID = "683cdb8aa96ad71e8e075bd0"

type MockNotesService struct {
	mock.Mock
}

func (m *MockNotesService) Create(ctx context.Context, profileID string, req notes.CreateNoteRequest) (*notes.Note, error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notes.Note), args.Error(1)
}

func (m *MockNotesService) List(ctx context.Context, profileID string, req notes.ListNotesRequest) ([]*notes.Note, error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notes.Note), args.Error(1)
}

func (m *MockNotesService) Get(ctx context.Context, profileID string, noteID bson.ObjectID) (*notes.Note, error) {
	args := m.Called(ctx, profileID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notes.Note), args.Error(1)
}

func (m *MockNotesService) Update(ctx context.Context, profileID string, noteID bson.ObjectID, req notes.UpdateNoteRequest) (*notes.Note, error) {
	args := m.Called(ctx, profileID, noteID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notes.Note), args.Error(1)
}

func (m *MockNotesService) ToggleTodo(ctx context.Context, profileID string, noteID bson.ObjectID, todoID string) (*notes.Note, error) {
	args := m.Called(ctx, profileID, noteID, todoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notes.Note), args.Error(1)
}

func (m *MockNotesService) Delete(ctx context.Context, profileID string, noteID bson.ObjectID) error {
	args := m.Called(ctx, profileID, noteID)
	return args.Error(0)
}

func setupNotesTest(t *testing.T) (*fiber.App, *MockNotesService) {
	t.Helper()

	svc := &MockNotesService{}
	app := testutil.CreateTestApp(t)
	h := NewHandlers(svc, testutil.CreateTestValidator(t))

	grp := app.Group("/api/v1/notes", testutil.AsProfile(&profiles.Profile{ID: testUserID}))
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Post("/:id/todos/:todoID/toggle", h.ToggleTodo)
	grp.Delete("/:id", h.Delete)

	t.Cleanup(func() { svc.AssertExpectations(t) })
	return app, svc
}

func sampleNote() *notes.Note {
	now := time.Now().UTC()
	return &notes.Note{
		ID:        bson.NewObjectID(),
		UserID:    testUserID,
		Title:     "Groceries",
		Content:   "milk",
		Tags:      []string{"home"},
		Todos:     []notes.Todo{{ID: "t1", Text: "milk"}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateNote(t *testing.T) {
	app, svc := setupNotesTest(t)
	note := sampleNote()

	req := notes.CreateNoteRequest{Title: "Groceries", Content: "milk", Tags: []string{"home"}}
	svc.On("Create", mock.Anything, testUserID, req).Return(note, nil).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/notes", req), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got notes.Note
	testutil.DecodeJSON(t, resp, &got)
	assert.Equal(t, note.ID, got.ID)
	assert.Equal(t, "Groceries", got.Title)
}

func TestCreateNoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		err    error
		status int
	}{
		{
			name:   "missing title",
			body:   map[string]string{"content": "x"},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "quota exhausted",
			body:   notes.CreateNoteRequest{Title: "t", Content: "c"},
			err:    &entitlements.QuotaError{Limit: 10, Used: 10},
			status: fiber.StatusPaymentRequired,
		},
		{
			name:   "feature locked",
			body:   notes.CreateNoteRequest{Title: "t", Content: "c"},
			err:    &entitlements.FeatureError{Feature: entitlements.FeatureImageAttachments},
			status: fiber.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, svc := setupNotesTest(t)
			if tt.err != nil {
				svc.On("Create", mock.Anything, testUserID, mock.Anything).Return(nil, tt.err).Once()
			}

			resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/notes", tt.body), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestListNotes(t *testing.T) {
	app, svc := setupNotesTest(t)
	list := []*notes.Note{sampleNote(), sampleNote()}

	svc.On("List", mock.Anything, testUserID, notes.ListNotesRequest{
		Tags: []string{"home", "work"},
		Q:    "milk",
	}).Return(list, nil).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/notes?tags=home&tags=work&q=milk", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got ListResponse
	testutil.DecodeJSON(t, resp, &got)
	assert.Equal(t, 2, got.Total)
	assert.Len(t, got.Notes, 2)
}

func TestGetNote(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		app, svc := setupNotesTest(t)
		note := sampleNote()
		svc.On("Get", mock.Anything, testUserID, note.ID).Return(note, nil).Once()

		resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/notes/"+note.ID.Hex(), nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		app, svc := setupNotesTest(t)
		id := bson.NewObjectID()
		svc.On("Get", mock.Anything, testUserID, id).Return(nil, notes.ErrNoteNotFound).Once()

		resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/notes/"+id.Hex(), nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		app, _ := setupNotesTest(t)

		resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/notes/not-an-id", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateNote(t *testing.T) {
	app, svc := setupNotesTest(t)
	note := sampleNote()
	title := "Renamed"

	svc.On("Update", mock.Anything, testUserID, note.ID, notes.UpdateNoteRequest{Title: &title}).
		Return(note, nil).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("PATCH", "/api/v1/notes/"+note.ID.Hex(), map[string]string{"title": title}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestToggleTodo(t *testing.T) {
	app, svc := setupNotesTest(t)
	note := sampleNote()

	svc.On("ToggleTodo", mock.Anything, testUserID, note.ID, "t1").Return(note, nil).Once()
	svc.On("ToggleTodo", mock.Anything, testUserID, note.ID, "missing").Return(nil, notes.ErrTodoNotFound).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/notes/"+note.ID.Hex()+"/todos/t1/toggle", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(testutil.CreateJSONRequest("POST", "/api/v1/notes/"+note.ID.Hex()+"/todos/missing/toggle", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteNote(t *testing.T) {
	app, svc := setupNotesTest(t)
	id := bson.NewObjectID()
	svc.On("Delete", mock.Anything, testUserID, id).Return(nil).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("DELETE", "/api/v1/notes/"+id.Hex(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
