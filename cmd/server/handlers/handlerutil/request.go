package handlerutil

import (
	"notely/cmd/server/handlers/httperr"
	"notely/internal/logger"
	"notely/internal/services/profiles"
	util "notely/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Locals keys set by the session middleware.
const (
	LocalProfile = "profile"
	LocalToken   = "token"
)

// GetProfile returns the signed-in profile stored by the session middleware.
func GetProfile(c *fiber.Ctx) (*profiles.Profile, error) {
	p, ok := c.Locals(LocalProfile).(*profiles.Profile)
	if !ok || p == nil {
		logger.L().Error("profile not found in context", "handler", "GetProfile", "path", c.Path())
		return nil, httperr.Fail(httperr.ErrUnauthorized)
	}
	return p, nil
}

// GetUserID returns the id of the signed-in profile.
func GetUserID(c *fiber.Ctx) (string, error) {
	p, err := GetProfile(c)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// GetToken returns the bearer token of the current request.
func GetToken(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals(LocalToken).(string)
	if !ok || token == "" {
		return "", httperr.Fail(httperr.ErrUnauthorized)
	}
	return token, nil
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, v *validator.Validate, handlerName string) error {
	p, _ := c.Locals(LocalProfile).(*profiles.Profile)

	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "user_id", idOf(p), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := util.ValidateCtx(c.UserContext(), v, req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "user_id", idOf(p), "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseAndValidateQuery parses query parameters and validates them
func ParseAndValidateQuery(c *fiber.Ctx, req any, v *validator.Validate, handlerName string) error {
	p, _ := c.Locals(LocalProfile).(*profiles.Profile)

	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "user_id", idOf(p), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := util.ValidateCtx(c.UserContext(), v, req); err != nil {
		logger.L().Warn("query validation failed", "handler", handlerName, "user_id", idOf(p), "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ObjectIDParam extracts an ObjectID path parameter. A malformed id is
// reported as not found.
func ObjectIDParam(c *fiber.Ctx, name, handlerName string) (bson.ObjectID, error) {
	raw := c.Params(name)
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		logger.L().Warn("invalid id parameter", "handler", handlerName, "param", name, "value", raw, "path", c.Path())
		return bson.ObjectID{}, httperr.Fail(httperr.ErrNotFound)
	}
	return id, nil
}

func idOf(p *profiles.Profile) string {
	if p == nil {
		return ""
	}
	return p.ID
}
