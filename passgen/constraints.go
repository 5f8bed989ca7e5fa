package passgen

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultSymbols is the symbol pool used by [DefaultConstraints].
	DefaultSymbols = "@#$%^*_-+?()!.=/"

	// DefaultDisallow lists characters that are easily confused with one
	// another when read.
	DefaultDisallow = "O0I1l"
)

// Constraints bounds the composition of a generated password.
//
// For MaxUpper, MaxDigits and MaxSymbols, 0 means "any" and -1 means "none".
// A zero MaxUpper or MaxSymbols with a non-zero minimum allows up to half the
// password length. MinSymbols and MaxSymbols both zero means no symbols.
//
// Letters in Disallow are compared case-insensitively: disallowing "l" also
// disallows "L".
type Constraints struct {
	MinLength int
	MaxLength int

	MinUpper int
	MaxUpper int

	MinLower int

	MinDigits int
	MaxDigits int

	MinSymbols int
	MaxSymbols int

	// Symbols is the pool symbols are drawn from, without replacement.
	// ASCII only.
	Symbols string

	// Disallow lists characters that never appear in the result. ASCII only.
	Disallow string
}

// DefaultConstraints returns a readable default: 7 to 15 characters with at
// least one of each letter case and one digit, at most three upper-case
// letters and three symbols, and none of [DefaultDisallow].
func DefaultConstraints() Constraints {
	return Constraints{
		MinLength:  7,
		MaxLength:  15,
		MinUpper:   1,
		MaxUpper:   3,
		MinLower:   1,
		MinDigits:  1,
		MaxDigits:  0,
		MinSymbols: 0,
		MaxSymbols: 3,
		Symbols:    DefaultSymbols,
		Disallow:   DefaultDisallow,
	}
}

// Validate reports inverted or out-of-range bounds as [ErrInvalidConstraints].
func (c Constraints) Validate() error {
	if c.MinLength < 1 {
		return fmt.Errorf("%w: min length %d must be at least 1", ErrInvalidConstraints, c.MinLength)
	}
	if c.MaxLength < c.MinLength {
		return fmt.Errorf("%w: max length %d below min length %d", ErrInvalidConstraints, c.MaxLength, c.MinLength)
	}
	if err := checkASCII("symbols", c.Symbols); err != nil {
		return err
	}
	if err := checkASCII("disallow", c.Disallow); err != nil {
		return err
	}
	if c.MinUpper < 0 || c.MinLower < 0 || c.MinDigits < 0 || c.MinSymbols < 0 {
		return fmt.Errorf("%w: minimums must not be negative", ErrInvalidConstraints)
	}
	for _, b := range []struct {
		name     string
		min, max int
	}{
		{"upper", c.MinUpper, c.MaxUpper},
		{"digits", c.MinDigits, c.MaxDigits},
		{"symbols", c.MinSymbols, c.MaxSymbols},
	} {
		switch {
		case b.max < -1:
			return fmt.Errorf("%w: max %s %d", ErrInvalidConstraints, b.name, b.max)
		case b.max == -1 && b.min > 0:
			return fmt.Errorf("%w: %s are disallowed but min %s is %d", ErrInvalidConstraints, b.name, b.name, b.min)
		case b.max > 0 && b.min > b.max:
			return fmt.Errorf("%w: min %s %d above max %d", ErrInvalidConstraints, b.name, b.min, b.max)
		}
	}
	return nil
}

// minimumLength is the shortest password that can satisfy every minimum.
func (c Constraints) minimumLength() int {
	return c.MinUpper + c.MinLower + c.MinDigits + c.MinSymbols
}

// checkASCII rejects character sets the byte-wise generator cannot split
// into whole characters.
func checkASCII(name, set string) error {
	if i := strings.IndexFunc(set, func(r rune) bool { return r >= utf8.RuneSelf }); i >= 0 {
		return fmt.Errorf("%w: %s contains non-ASCII character at byte %d", ErrInvalidConstraints, name, i)
	}
	return nil
}
