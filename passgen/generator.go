package passgen

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/hasbyte1/go-credential-utils/arr"
	"github.com/hasbyte1/go-credential-utils/bcrypt64"
	"github.com/hasbyte1/go-credential-utils/entropy"
)

const (
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars   = "0123456789"
)

// Generator synthesises passwords and random strings.
//
// Base material comes from the entropy source through the bcrypt base64
// alphabet. Quota adjustments and the final shuffle use a ChaCha8 generator
// seeded from the same source.
//
// # Thread safety
//
// Generator is safe for concurrent use. A [sync.Mutex] guards the seeded
// generator.
type Generator struct {
	src    *entropy.Source
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a [Generator].
type Option func(*Generator)

// WithLogger sets the logger. Generated values are never logged.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithSeed seeds the quota generator explicitly instead of from the entropy
// source.
func WithSeed(seed [32]byte) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewChaCha8(seed))
	}
}

// New returns a Generator drawing from src, or from [entropy.New] when src is
// nil.
func New(src *entropy.Source, opts ...Option) *Generator {
	if src == nil {
		src = entropy.New()
	}
	g := &Generator{src: src, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		var seed [32]byte
		copy(seed[:], src.Generate(len(seed)))
		g.rng = rand.New(rand.NewChaCha8(seed))
	}
	return g
}

// ──────────────────────────────────────────────────────────────────────────────
// Password synthesis
// ──────────────────────────────────────────────────────────────────────────────

// Generate returns a random password satisfying c.
//
// The length is drawn uniformly from [c.MinLength, c.MaxLength]. It exceeds
// c.MaxLength only when the minimums of c add up to more than that.
func (g *Generator) Generate(c Constraints) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.newSynthesis(c)
	if err != nil {
		return "", err
	}
	s.length = g.between(c.MinLength, c.MaxLength)
	symbols := s.symbolCount()

	s.drawBase(max(s.length-symbols, 2))
	s.replaceBaseSymbols()
	s.appendSymbols(symbols)
	s.applyUpper()
	s.applyLower()
	s.applyMinDigits()
	s.applyMaxDigits()
	s.sweepDisallowed()
	s.trim()

	g.logger.Debug("password generated",
		zap.Int("length", len(s.value)),
		zap.Int("target_length", s.length),
		zap.Int("symbols", symbols))
	return string(arr.Shuffle(s.value, g.rng)), nil
}

// synthesis is the state of one Generate call.
type synthesis struct {
	g *Generator
	c Constraints

	// disallow is c.Disallow with letters in both cases.
	disallow []byte

	lower, upper, letters, digits, symbols []byte

	length int
	value  []byte
}

func (g *Generator) newSynthesis(c Constraints) (*synthesis, error) {
	s := &synthesis{g: g, c: c, disallow: expandCase(c.Disallow)}
	s.lower = arr.Diff([]byte(lowerLetters), s.disallow)
	s.upper = arr.Diff([]byte(upperLetters), s.disallow)
	s.digits = arr.Diff([]byte(digitChars), s.disallow)
	s.letters = append(append([]byte{}, s.lower...), s.upper...)
	s.symbols = arr.Diff(arr.Unique([]byte(c.Symbols)), s.disallow)

	switch {
	case len(s.lower) == 0:
		return nil, fmt.Errorf("%w: every lower-case letter is disallowed", ErrNoAllowedCharacters)
	case len(s.upper) == 0 && c.MaxUpper >= 0:
		return nil, fmt.Errorf("%w: every upper-case letter is disallowed", ErrNoAllowedCharacters)
	case len(s.digits) == 0 && c.MaxDigits >= 0:
		return nil, fmt.Errorf("%w: every digit is disallowed", ErrNoAllowedCharacters)
	case c.MaxSymbols >= 0 && len(s.symbols) < c.MinSymbols:
		return nil, fmt.Errorf("%w: %d symbols required but only %d allowed",
			ErrNoAllowedCharacters, c.MinSymbols, len(s.symbols))
	}
	return s, nil
}

// symbolCount decides how many symbols to append, leaving room for a base of
// at least two characters where the minimum permits.
func (s *synthesis) symbolCount() int {
	c := s.c
	if c.MaxSymbols < 0 || (c.MinSymbols == 0 && c.MaxSymbols == 0) {
		return 0
	}
	hi := c.MaxSymbols
	if hi == 0 {
		hi = s.length / 2
	}
	hi = min(hi, s.length-2, len(s.symbols))
	return s.g.between(c.MinSymbols, max(hi, c.MinSymbols))
}

// drawBase draws base64-style strings until one holds a letter and a digit.
func (s *synthesis) drawBase(n int) {
	for {
		v := []byte(bcrypt64.Random(s.g.src, n))
		if arr.Count(v, isLetter) > 0 && arr.Count(v, isDigit) > 0 {
			s.value = v
			return
		}
	}
}

// replaceBaseSymbols swaps the alphabet's '/' and '.' for letters so symbols
// only appear through the symbol quota.
func (s *synthesis) replaceBaseSymbols() {
	for i, ch := range s.value {
		if ch == '/' || ch == '.' {
			s.value[i] = s.pick(s.letters)
		}
	}
}

func (s *synthesis) appendSymbols(n int) {
	if s.c.MaxSymbols < 0 {
		s.disallow = append(s.disallow, '/', '.')
		return
	}
	s.value = append(s.value, arr.Random(s.symbols, n, s.g.rng)...)
}

func (s *synthesis) applyUpper() {
	c := s.c
	switch {
	case c.MaxUpper > 0 || (c.MinUpper > 0 && c.MaxUpper > -1):
		hi := c.MaxUpper
		if hi == 0 {
			hi = len(s.value) / 2
		}
		want := s.g.between(c.MinUpper, max(hi, c.MinUpper))
		toLower(s.value)
		for i, ch := range s.value {
			if want == 0 {
				break
			}
			if isLower(ch) && !s.disallowed(ch) {
				s.value[i] = ch - 'a' + 'A'
				want--
			}
		}
		s.topUp(s.upper, want)
	case c.MaxUpper < 0:
		toLower(s.value)
	}
}

func (s *synthesis) applyLower() {
	s.topUp(s.lower, s.c.MinLower-arr.Count(s.value, isLower))
}

func (s *synthesis) applyMinDigits() {
	s.topUp(s.digits, s.c.MinDigits-arr.Count(s.value, isDigit))
}

// applyMaxDigits turns digits beyond the maximum into lower-case letters.
func (s *synthesis) applyMaxDigits() {
	if s.c.MaxDigits == 0 {
		return
	}
	limit := max(s.c.MaxDigits, 0)
	seen := 0
	for i, ch := range s.value {
		if !isDigit(ch) {
			continue
		}
		if seen++; seen > limit {
			s.value[i] = s.pick(s.lower)
		}
	}
}

// sweepDisallowed replaces each disallowed character with an allowed one of
// the same class.
func (s *synthesis) sweepDisallowed() {
	for i, ch := range s.value {
		if !s.disallowed(ch) {
			continue
		}
		switch {
		case isDigit(ch):
			s.value[i] = s.pick(s.digits)
		case isUpper(ch):
			s.value[i] = s.pick(s.upper)
		default:
			s.value[i] = s.pick(s.lower)
		}
	}
}

// trim drops characters of classes above their minimum until the value is
// back at the target length. Lower-case letters go first, symbols last.
func (s *synthesis) trim() {
	surplus := len(s.value) - max(s.length, s.c.minimumLength())
	for _, class := range []struct {
		is  func(byte) bool
		min int
	}{
		{isLower, s.c.MinLower},
		{isDigit, s.c.MinDigits},
		{isUpper, s.c.MinUpper},
		{isSymbol, s.c.MinSymbols},
	} {
		if surplus <= 0 {
			return
		}
		drop := min(arr.Count(s.value, class.is)-class.min, surplus)
		if drop <= 0 {
			continue
		}
		s.value = dropLast(s.value, class.is, drop)
		surplus -= drop
	}
}

func (s *synthesis) disallowed(ch byte) bool {
	return arr.ContainsValue(s.disallow, ch)
}

// topUp appends n characters of alphabet, the same draw [Generator.RandomChars]
// makes.
func (s *synthesis) topUp(alphabet []byte, n int) {
	if n > 0 {
		s.value = append(s.value, s.g.sample(alphabet, n)...)
	}
}

// pick returns a random element of a non-empty alphabet.
func (s *synthesis) pick(alphabet []byte) byte {
	return s.g.sample(alphabet, 1)[0]
}

// between returns a uniform integer in [lo, hi]. The caller holds g.mu.
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Character classes
// ──────────────────────────────────────────────────────────────────────────────

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isLetter(c byte) bool { return isUpper(c) || isLower(c) }
func isSymbol(c byte) bool { return !isLetter(c) && !isDigit(c) }

func toLower(v []byte) {
	for i, c := range v {
		if isUpper(c) {
			v[i] = c - 'A' + 'a'
		}
	}
}

// expandCase returns the characters of s with every letter in both cases.
func expandCase(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isLower(c):
			out = append(out, c, c-'a'+'A')
		case isUpper(c):
			out = append(out, c, c-'A'+'a')
		default:
			out = append(out, c)
		}
	}
	return arr.Unique(out)
}

// dropLast removes the last n elements of v matching is.
func dropLast(v []byte, is func(byte) bool, n int) []byte {
	for i := len(v) - 1; i >= 0 && n > 0; i-- {
		if is(v[i]) {
			v = append(v[:i], v[i+1:]...)
			n--
		}
	}
	return v
}
