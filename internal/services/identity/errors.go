package identity

import (
	"errors"
	"fmt"

	"notely/internal/services/profiles"
)

// ErrDuplicate is returned by the store when the email is already registered.
var ErrDuplicate = errors.New("user with this email already exists")

// ErrUserNotFound is returned by the store when no user has the email.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound is returned by the store when no session has the id.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", profiles.ErrAuth)

// ErrInvalidToken is returned for a bearer token that fails verification.
var ErrInvalidToken = fmt.Errorf("%w: invalid token", profiles.ErrAuth)

// ErrSessionExpired is returned for a well-formed token whose session is gone.
var ErrSessionExpired = fmt.Errorf("%w: session expired or revoked", profiles.ErrAuth)

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrCreateUser is returned when the account insert fails.
var ErrCreateUser = errors.New("failed to create user")

// ErrProcessPassword is returned when hashing the password fails.
var ErrProcessPassword = errors.New("failed to process password")

// ErrLookupUser is returned when the user store cannot be queried.
var ErrLookupUser = errors.New("failed to look up user")
