package middlewares

import (
	"context"

	"notely/cmd/server/handlers/handlerutil"
	"notely/cmd/server/handlers/httperr"
	"notely/internal/config"
	"notely/internal/logger"
	"notely/internal/services/profiles"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionResolver turns a verified bearer token into a live session.
type SessionResolver interface {
	Current(ctx context.Context, token string) (*profiles.Session, error)
}

// Session returns a Fiber middleware that:
//
//   - validates the Bearer token signature using cfg.JWTSecret
//   - resolves the token into its session, provisioning the profile on first sight
//   - stores the profile and the raw token in ctx.Locals for the handlers.
//
// Revoked or expired sessions are rejected with 401 even when the signature
// is still valid.
func Session(cfg config.Config, resolver SessionResolver) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			sess, err := resolver.Current(c.UserContext(), token.Raw)
			if err != nil {
				logger.L().Info("session rejected", "path", c.Path(), "error", err)
				return err
			}

			c.Locals(handlerutil.LocalProfile, sess.Profile)
			c.Locals(handlerutil.LocalToken, token.Raw)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.L().Debug("bearer token rejected", "path", c.Path(), "error", err)
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}
