package auth

import (
	"context"

	"notely/cmd/server/handlers/handlerutil"
	"notely/internal/logger"
	"notely/internal/services/profiles"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Service defines the account operations the auth handlers need
type Service interface {
	SignUp(ctx context.Context, req profiles.SignUpRequest) (*profiles.Session, error)
	SignIn(ctx context.Context, req profiles.SignInRequest) (*profiles.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new auth handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// SignUp handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body profiles.SignUpRequest true "Sign up request"
// @Success 201 {object} profiles.Session
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /auth/sign-up [post]
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req profiles.SignUpRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignUp"); err != nil {
		return err
	}

	resp, err := h.service.SignUp(c.UserContext(), req)
	if err != nil {
		logger.L().Info("signup failed", "handler", "SignUp", "error", err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignIn handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body profiles.SignInRequest true "Sign in request"
// @Success 200 {object} profiles.Session
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/sign-in [post]
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	var req profiles.SignInRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignIn"); err != nil {
		return err
	}

	resp, err := h.service.SignIn(c.UserContext(), req)
	if err != nil {
		logger.L().Info("signin failed", "handler", "SignIn", "error", err)
		return err
	}

	return c.JSON(resp)
}

// SignOut ends the current session
// @Summary Sign out
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 401 {object} httperr.E
// @Router /auth/sign-out [post]
func (h *Handlers) SignOut(c *fiber.Ctx) error {
	token, err := handlerutil.GetToken(c)
	if err != nil {
		return err
	}

	if err := h.service.SignOut(c.UserContext(), token); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Successfully signed out"})
}
