package profiles

import "errors"

// ErrNotFound is returned by the store when no profile has the id.
var ErrNotFound = errors.New("profile not found")

// ErrDuplicate is returned by the store when a profile with the id already
// exists. EnsureProfile absorbs it; it never reaches callers.
var ErrDuplicate = errors.New("profile already exists")

// ErrAlreadyRegistered is returned by SignUp for an email that has an account.
var ErrAlreadyRegistered = errors.New("already registered, sign in instead")

// ErrAuth is matched by every authentication failure of the identity provider.
var ErrAuth = errors.New("authentication failed")

// ErrCreateProfile is returned when the profile insert fails.
var ErrCreateProfile = errors.New("failed to create profile")

// ErrLoadProfile is returned when the profile lookup fails.
var ErrLoadProfile = errors.New("failed to load profile")

// ErrUpdateProfile is returned when a profile update fails.
var ErrUpdateProfile = errors.New("failed to update profile")

// ErrSeedDefaults is returned when default notes could not be created for a new profile.
var ErrSeedDefaults = errors.New("failed to seed default notes")
