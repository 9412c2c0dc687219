package credentials

import "errors"

var (
	// ErrNotFound is returned when no record exists for a username.
	ErrNotFound = errors.New("credentials: record not found")

	// ErrExists is returned by Create when the username is already taken.
	ErrExists = errors.New("credentials: record already exists")

	// ErrEmptyUsername is returned when a username is empty.
	ErrEmptyUsername = errors.New("credentials: username must not be empty")

	// ErrInvalidCredentials is returned by [Authenticator.Login] for an
	// unknown username and for a wrong password alike.
	ErrInvalidCredentials = errors.New("credentials: invalid username or password")

	// ErrWeakPassword wraps the policy reason when a new password is
	// rejected.
	ErrWeakPassword = errors.New("credentials: password rejected by policy")
)
