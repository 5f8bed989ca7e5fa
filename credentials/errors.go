package credentials

import "errors"

var (
	// ErrNotFound is returned by a [Repository] when no record exists for a
	// user ID.
	ErrNotFound = errors.New("credentials: record not found")

	// ErrInvalidCredentials is returned by [Service.Authenticate] when the
	// user is unknown or the password does not match. The two cases are
	// deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("credentials: invalid credentials")

	// ErrEmptyUserID is returned when an operation is called without a user
	// ID.
	ErrEmptyUserID = errors.New("credentials: user ID must not be empty")

	// ErrEmptyPassword is returned by [Service.SetPassword] for an empty
	// password.
	ErrEmptyPassword = errors.New("credentials: password must not be empty")
)
