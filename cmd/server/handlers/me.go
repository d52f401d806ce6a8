package handlers

import (
	"context"
	"time"

	"notely/cmd/server/handlers/handlerutil"
	"notely/internal/services/entitlements"
	"notely/internal/services/profiles"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProfileService is what the /me handlers need from the provisioning service.
type ProfileService interface {
	UpdateDetails(ctx context.Context, id string, req profiles.UpdateProfileRequest) (*profiles.Profile, error)
	Entitlements(ctx context.Context, profileID string, now time.Time) (entitlements.Summary, error)
}

// MeHandlers serves the signed-in profile.
type MeHandlers struct {
	service   ProfileService
	validator *validator.Validate
}

// NewMeHandlers creates new /me handlers
func NewMeHandlers(service ProfileService, v *validator.Validate) *MeHandlers {
	return &MeHandlers{service: service, validator: v}
}

// MeResponse is the profile plus what it is entitled to right now.
type MeResponse struct {
	Profile      *profiles.Profile    `json:"profile"`
	Entitlements entitlements.Summary `json:"entitlements"`
}

// Me returns the current profile
// @Summary Get current profile
// @Tags me
// @Produce json
// @Security Bearer
// @Success 200 {object} MeResponse
// @Failure 401 {object} httperr.E
// @Router /me [get]
func (h *MeHandlers) Me(c *fiber.Ctx) error {
	p, err := handlerutil.GetProfile(c)
	if err != nil {
		return err
	}

	sum := entitlements.Summarize(p.Subscription(), time.Now())
	return c.JSON(MeResponse{Profile: p, Entitlements: sum})
}

// Update edits the current profile
// @Summary Update current profile
// @Tags me
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body profiles.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} profiles.Profile
// @Failure 400 {object} httperr.E
// @Router /me [patch]
func (h *MeHandlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req profiles.UpdateProfileRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateMe"); err != nil {
		return err
	}

	p, err := h.service.UpdateDetails(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Entitlements returns the entitlement summary
// @Summary Current entitlements
// @Tags me
// @Produce json
// @Security Bearer
// @Success 200 {object} entitlements.Summary
// @Router /me/entitlements [get]
func (h *MeHandlers) Entitlements(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	sum, err := h.service.Entitlements(c.UserContext(), userID, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(sum)
}
