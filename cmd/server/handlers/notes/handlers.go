package notes

import (
	"context"

	"notely/cmd/server/handlers/handlerutil"
	"notely/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for notes service
type Service interface {
	Create(ctx context.Context, profileID string, req notes.CreateNoteRequest) (*notes.Note, error)
	List(ctx context.Context, profileID string, req notes.ListNotesRequest) ([]*notes.Note, error)
	Get(ctx context.Context, profileID string, noteID bson.ObjectID) (*notes.Note, error)
	Update(ctx context.Context, profileID string, noteID bson.ObjectID, req notes.UpdateNoteRequest) (*notes.Note, error)
	ToggleTodo(ctx context.Context, profileID string, noteID bson.ObjectID, todoID string) (*notes.Note, error)
	Delete(ctx context.Context, profileID string, noteID bson.ObjectID) error
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// ListResponse wraps a notes listing.
type ListResponse struct {
	Notes []*notes.Note `json:"notes"`
	Total int           `json:"total"`
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 402 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	note, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// List handles notes listing
// @Summary List notes newest first, filtered by tags and a search query
// @Tags notes
// @Produce json
// @Security Bearer
// @Param tags query []string false "Match notes carrying any of these tags"
// @Param q query string false "Case-insensitive search in title or content"
// @Success 200 {object} ListResponse
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	list, err := h.service.List(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return c.JSON(ListResponse{Notes: list, Total: len(list)})
}

// Get returns one note
// @Summary Get a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "Get")
	if err != nil {
		return err
	}

	note, err := h.service.Get(c.UserContext(), userID, noteID)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

// Update handles note updates
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Update note request"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "Update")
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	note, err := h.service.Update(c.UserContext(), userID, noteID, req)
	if err != nil {
		return err
	}

	return c.JSON(note)
}

// ToggleTodo flips the completion of one todo item
// @Summary Toggle a todo item
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param todoID path string true "Todo ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/todos/{todoID}/toggle [post]
func (h *Handlers) ToggleTodo(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "ToggleTodo")
	if err != nil {
		return err
	}

	note, err := h.service.ToggleTodo(c.UserContext(), userID, noteID, c.Params("todoID"))
	if err != nil {
		return err
	}
	return c.JSON(note)
}

// Delete handles note deletion
// @Summary Delete a note
// @Tags notes
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "Delete")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), userID, noteID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
