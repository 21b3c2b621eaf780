package sessions

import "errors"

// Store errors.
var (
	ErrUserNotFound     = errors.New("the user was not found with that username")
	ErrAlreadyExists    = errors.New("a user with that username already exists")
	ErrStoreUnavailable = errors.New("the credential store is unavailable")
)

// Gateway errors. ErrInvalidCredentials is returned for both an unknown user and a wrong
// password.
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyUsername      = errors.New("username must not be empty")
	ErrUsernameTooLong    = errors.New("username must be 64 bytes or fewer")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrPasswordTooLong    = errors.New("password must be 72 bytes or fewer")
)

// Token errors.
var (
	ErrInvalidSignature = errors.New("the session token had an invalid signature")
	ErrMissingSecret    = errors.New("the session secret key is not configured")
	ErrTokenTooLong     = errors.New("the session token does not fit in a cookie")
)
