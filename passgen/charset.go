package passgen

import (
	"fmt"
	"strings"

	"github.com/hasbyte1/go-credential-utils/arr"
	"github.com/hasbyte1/go-credential-utils/bcrypt64"
)

// CharSet selects the alphabet for [Generator.RandomChars].
type CharSet int

const (
	// Letters is a-z and A-Z.
	Letters CharSet = iota
	// Alphanumeric is a-z, A-Z and 0-9.
	Alphanumeric
	// Digits is 0-9.
	Digits
)

func (s CharSet) alphabet() string {
	switch s {
	case Alphanumeric:
		return lowerLetters + upperLetters + digitChars
	case Digits:
		return digitChars
	}
	return lowerLetters + upperLetters
}

// RandomChars returns count characters drawn uniformly from set, excluding
// the characters in disallow (compared exactly). It uses the fast seeded
// generator and is meant for filler characters, not for secrets on its own.
func (g *Generator) RandomChars(count int, set CharSet, disallow string) (string, error) {
	alphabet := arr.Diff([]byte(set.alphabet()), []byte(disallow))
	if len(alphabet) == 0 {
		return "", fmt.Errorf("%w: character set is fully disallowed", ErrNoAllowedCharacters)
	}
	if count <= 0 {
		return "", nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sample(alphabet, count), nil
}

// sample draws n characters with replacement. The caller holds g.mu.
func (g *Generator) sample(alphabet []byte, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i], _ = arr.Pick(alphabet, g.rng)
	}
	return string(out)
}

// AlnumOptions configures [Generator.RandomAlnum]. The zero value allows
// every ASCII letter and digit and uses the secure method.
type AlnumOptions struct {
	// Fast uses the seeded generator instead of filtering entropy source
	// output.
	Fast bool

	ExcludeUpper  bool
	ExcludeLower  bool
	ExcludeDigits bool

	// Allow restricts the result to exactly these ASCII characters,
	// overriding the Exclude flags. Characters other than letters and
	// digits force the fast method.
	Allow string

	// Disallow removes characters from the allowed set.
	Disallow string

	// MinLength and MaxLength bound the random length used when the
	// requested length is below 1. Defaults: 10 and 40.
	MinLength int
	MaxLength int
}

const (
	defaultAlnumMinLength = 10
	defaultAlnumMaxLength = 40
)

// RandomAlnum returns a random string of ASCII letters and digits.
//
// By default each character is taken from entropy source output encoded with
// the bcrypt base64 alphabet, discarding characters outside the allowed set.
// A length below 1 selects a random length in [MinLength, MaxLength].
func (g *Generator) RandomAlnum(length int, opts AlnumOptions) (string, error) {
	allowed, fast, err := opts.allowed()
	if err != nil {
		return "", err
	}
	if len(allowed) == 0 {
		return "", fmt.Errorf("%w: alnum options allow no characters", ErrNoAllowedCharacters)
	}
	fast = fast || opts.Fast

	if length < 1 {
		lo, hi := opts.MinLength, opts.MaxLength
		if lo <= 0 {
			lo = defaultAlnumMinLength
		}
		if hi <= 0 {
			hi = defaultAlnumMaxLength
		}
		if hi < lo {
			return "", fmt.Errorf("%w: max length %d below min length %d", ErrInvalidConstraints, hi, lo)
		}
		g.mu.Lock()
		length = g.between(lo, hi)
		g.mu.Unlock()
	}

	if fast {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.sample(allowed, length), nil
	}

	// Fewer than 50 allowed characters keep less of each draw, so draw more.
	baseLen := length * 2
	if len(allowed) < 50 {
		baseLen = length * 3
	}
	var b strings.Builder
	b.Grow(length)
	for b.Len() < length {
		base := []byte(bcrypt64.Random(g.src, baseLen))
		for _, c := range arr.Filter(base, func(c byte, _ int) bool { return arr.ContainsValue(allowed, c) }) {
			b.WriteByte(c)
			if b.Len() == length {
				break
			}
		}
	}
	return b.String(), nil
}

// RandomDigits returns a random string of digits. The letter exclusions of
// opts are ignored.
func (g *Generator) RandomDigits(length int, opts AlnumOptions) (string, error) {
	opts.ExcludeUpper = true
	opts.ExcludeLower = true
	opts.ExcludeDigits = false
	return g.RandomAlnum(length, opts)
}

// allowed returns the allowed alphabet and whether it requires the fast
// method.
func (o AlnumOptions) allowed() ([]byte, bool, error) {
	if err := checkASCII("allow", o.Allow); err != nil {
		return nil, false, err
	}
	if err := checkASCII("disallow", o.Disallow); err != nil {
		return nil, false, err
	}
	var set []byte
	fast := false
	if o.Allow != "" {
		set = arr.Unique([]byte(o.Allow))
		fast = arr.Count(set, func(c byte) bool { return !isLetter(c) && !isDigit(c) }) > 0
	} else {
		if !o.ExcludeUpper {
			set = append(set, upperLetters...)
		}
		if !o.ExcludeLower {
			set = append(set, lowerLetters...)
		}
		if !o.ExcludeDigits {
			set = append(set, digitChars...)
		}
	}
	return arr.Diff(set, []byte(o.Disallow)), fast, nil
}
