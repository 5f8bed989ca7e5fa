package passgen

import "errors"

// Sentinel errors returned by passgen operations. Both are configuration
// errors: retrying with the same constraints fails the same way.
var (
	// ErrNoAllowedCharacters is returned when the disallow list (or the
	// allow list of [AlnumOptions]) leaves an alphabet the request needs
	// empty.
	ErrNoAllowedCharacters = errors.New("passgen: constraints leave no allowed characters")

	// ErrInvalidConstraints is returned for negative or inverted bounds.
	ErrInvalidConstraints = errors.New("passgen: invalid constraints")
)

// IsConfigurationError reports whether err is one of the passgen sentinel
// errors.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoAllowedCharacters) || errors.Is(err, ErrInvalidConstraints)
}
