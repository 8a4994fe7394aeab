package domain

import "errors"

// Core errors.
var (
	// ErrRemoteUnavailable wraps transport failures talking to the remote
	// store. The core never retries; callers refresh manually.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrInvalidArgument is returned before any write when a required field
	// is missing.
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNoUserLoggedIn      = errors.New("no user logged in")
	ErrFailedToGetUserInfo = errors.New("failed to get user info")

	// Reserved for future validation of mutation targets. No code path
	// raises these today; kept so the API surface is stable when it does.
	ErrTaskDoesNotExist = errors.New("task does not exist")
	ErrUserDoesNotExist = errors.New("user does not exist")
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)
