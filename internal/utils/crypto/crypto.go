package crypto

import (
	"errors"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// PasswordTag is the validator tag enforcing IsStrong.
const PasswordTag = "password"

// ErrPasswordStrength describes the password policy.
var ErrPasswordStrength = errors.New("password must be at least 8 characters long and contain at least one letter and one digit")

// HashPassword hashes a password using bcrypt with the given cost
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsStrong checks if a password meets minimum strength requirements:
// at least 8 runes, one letter and one digit.
func IsStrong(password string) bool {
	var n int
	var hasLetter, hasDigit bool
	for _, r := range password {
		n++
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return n >= 8 && hasLetter && hasDigit
}

func passwordRule(fl validator.FieldLevel) bool {
	return IsStrong(fl.Field().String())
}

// RegisterPasswordValidator registers the "password" validation tag with the validator.
// Registering twice on the same validator is not an error.
func RegisterPasswordValidator(v *validator.Validate) error {
	return v.RegisterValidation(PasswordTag, passwordRule)
}
