package passgen_test

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hasbyte1/go-credential-utils/entropy"
	"github.com/hasbyte1/go-credential-utils/passgen"
)

type composition struct {
	upper, lower, digits, symbols int
}

func compose(pw string) composition {
	var c composition
	for i := 0; i < len(pw); i++ {
		switch ch := pw[i]; {
		case ch >= 'A' && ch <= 'Z':
			c.upper++
		case ch >= 'a' && ch <= 'z':
			c.lower++
		case ch >= '0' && ch <= '9':
			c.digits++
		default:
			c.symbols++
		}
	}
	return c
}

func newGenerator(t *testing.T) *passgen.Generator {
	t.Helper()
	return passgen.New(entropy.New())
}

// ──────────────────────────────────────────────────────────────────────────────
// Generate
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerate_DefaultConstraints(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	for i := 0; i < 500; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)

		got := compose(pw)
		assert.GreaterOrEqual(t, len(pw), 7, pw)
		assert.LessOrEqual(t, len(pw), 15, pw)
		assert.GreaterOrEqual(t, got.upper, 1, pw)
		assert.LessOrEqual(t, got.upper, 3, pw)
		assert.GreaterOrEqual(t, got.lower, 1, pw)
		assert.GreaterOrEqual(t, got.digits, 1, pw)
		assert.LessOrEqual(t, got.symbols, 3, pw)
		assert.False(t, strings.ContainsAny(pw, "oO0iI1lL"), "disallowed character in %q", pw)
		for _, ch := range pw {
			if !strings.ContainsRune(passgen.DefaultSymbols, ch) {
				continue
			}
			assert.Equal(t, 1, strings.Count(pw, string(ch)), "symbol %q repeated in %q", ch, pw)
		}
	}
}

func TestGenerate_FixedComposition(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.MinLength, c.MaxLength = 8, 8
	c.MinUpper, c.MaxUpper = 2, 2
	c.MinDigits, c.MaxDigits = 3, 3
	c.MinSymbols, c.MaxSymbols = 0, 0

	for i := 0; i < 200; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		require.Len(t, pw, 8)
		assert.Equal(t, composition{upper: 2, lower: 3, digits: 3}, compose(pw), pw)
	}
}

func TestGenerate_NoSymbols(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.MaxSymbols = -1
	for i := 0; i < 200; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		assert.Zero(t, compose(pw).symbols, pw)
	}
}

func TestGenerate_SymbolRange(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.MinLength, c.MaxLength = 12, 12
	c.MinSymbols, c.MaxSymbols = 2, 4
	c.Symbols = "!@#$%"
	for i := 0; i < 200; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		require.Len(t, pw, 12)
		n := compose(pw).symbols
		assert.GreaterOrEqual(t, n, 2, pw)
		assert.LessOrEqual(t, n, 4, pw)
		assert.False(t, strings.ContainsAny(pw, "/."), pw)
	}
}

func TestGenerate_NoDigits(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.MinDigits, c.MaxDigits = 0, -1
	for i := 0; i < 200; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		assert.Zero(t, compose(pw).digits, pw)
	}
}

func TestGenerate_NoUpper(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.MinUpper, c.MaxUpper = 0, -1
	for i := 0; i < 200; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		assert.Zero(t, compose(pw).upper, pw)
	}
}

func TestGenerate_AnyUpperUpToHalf(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.MinLength, c.MaxLength = 10, 10
	c.MinUpper, c.MaxUpper = 2, 0
	for i := 0; i < 200; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		n := compose(pw).upper
		assert.GreaterOrEqual(t, n, 2, pw)
		assert.LessOrEqual(t, n, len(pw)/2+1, pw)
	}
}

func TestGenerate_MinimumsExceedMaxLength(t *testing.T) {
	g := newGenerator(t)
	c := passgen.Constraints{
		MinLength: 4, MaxLength: 4,
		MinUpper: 3, MaxUpper: 3,
		MinLower:  3,
		MinDigits: 3, MaxDigits: 3,
		MaxSymbols: -1,
	}
	pw, err := g.Generate(c)
	require.NoError(t, err)
	assert.Equal(t, composition{upper: 3, lower: 3, digits: 3}, compose(pw), pw)
}

func TestGenerate_ShortPasswords(t *testing.T) {
	g := newGenerator(t)
	c := passgen.Constraints{MinLength: 1, MaxLength: 3, MaxSymbols: -1}
	for i := 0; i < 100; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(pw), 1, pw)
		assert.LessOrEqual(t, len(pw), 3, pw)
	}
}

func TestGenerate_InvalidConstraints(t *testing.T) {
	g := newGenerator(t)
	tests := map[string]func(*passgen.Constraints){
		"zero length":            func(c *passgen.Constraints) { c.MinLength = 0 },
		"inverted length":        func(c *passgen.Constraints) { c.MaxLength = 5 },
		"negative minimum":       func(c *passgen.Constraints) { c.MinLower = -1 },
		"inverted upper":         func(c *passgen.Constraints) { c.MinUpper = 4 },
		"upper none with min":    func(c *passgen.Constraints) { c.MaxUpper = -1 },
		"digits below -1":        func(c *passgen.Constraints) { c.MaxDigits = -2 },
		"symbols none with min":  func(c *passgen.Constraints) { c.MinSymbols, c.MaxSymbols = 1, -1 },
		"inverted symbols range": func(c *passgen.Constraints) { c.MinSymbols, c.MaxSymbols = 3, 2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := passgen.DefaultConstraints()
			mutate(&c)
			_, err := g.Generate(c)
			require.ErrorIs(t, err, passgen.ErrInvalidConstraints)
			assert.True(t, passgen.IsConfigurationError(err))
		})
	}
}

func TestGenerate_NonASCIISymbols(t *testing.T) {
	g := newGenerator(t)
	for _, set := range []struct{ symbols, disallow string }{
		{symbols: "€£§"},
		{symbols: "@#€"},
		{symbols: passgen.DefaultSymbols, disallow: "Oß"},
	} {
		c := passgen.DefaultConstraints()
		c.MinSymbols, c.MaxSymbols = 2, 3
		c.Symbols = set.symbols
		if set.disallow != "" {
			c.Disallow = set.disallow
		}
		_, err := g.Generate(c)
		require.ErrorIs(t, err, passgen.ErrInvalidConstraints, "symbols %q disallow %q", set.symbols, set.disallow)
	}

	c := passgen.DefaultConstraints()
	c.MinSymbols, c.MaxSymbols = 2, 3
	c.Symbols = "~&|"
	for range 200 {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		require.True(t, utf8.ValidString(pw), "%q", pw)
		require.GreaterOrEqual(t, compose(pw).symbols, 2)
	}
}

func TestGenerate_TopUpDrawsFromAllowedAlphabet(t *testing.T) {
	g := newGenerator(t)
	c := passgen.Constraints{
		MinLength: 6, MaxLength: 6,
		MinUpper: 4, MaxUpper: 4,
		MinLower:  4,
		MinDigits: 4, MaxDigits: 4,
		MaxSymbols: -1,
		Disallow:   "abcdefghijklmnopqrstuvwx0123456",
	}
	for range 100 {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		assert.Equal(t, composition{upper: 4, lower: 4, digits: 4}, compose(pw), pw)
		onlyFrom(t, pw, "ZYzy789")
	}
}

func TestGenerate_NoAllowedCharacters(t *testing.T) {
	g := newGenerator(t)
	tests := map[string]func(*passgen.Constraints){
		"all letters":    func(c *passgen.Constraints) { c.Disallow = "abcdefghijklmnopqrstuvwxyz" },
		"all digits":     func(c *passgen.Constraints) { c.Disallow = "0123456789" },
		"too few symbol": func(c *passgen.Constraints) { c.Symbols, c.MinSymbols = "!", 2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := passgen.DefaultConstraints()
			mutate(&c)
			_, err := g.Generate(c)
			require.ErrorIs(t, err, passgen.ErrNoAllowedCharacters)
		})
	}
}

func TestGenerate_AllDigitsDisallowedWithoutDigits(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.Disallow = "0123456789"
	c.MinDigits, c.MaxDigits = 0, -1
	pw, err := g.Generate(c)
	require.NoError(t, err)
	assert.Zero(t, compose(pw).digits)
}

func TestGenerate_DisallowIsCaseInsensitive(t *testing.T) {
	g := newGenerator(t)
	c := passgen.DefaultConstraints()
	c.Disallow = "abcdefghijklm"
	for i := 0; i < 200; i++ {
		pw, err := g.Generate(c)
		require.NoError(t, err)
		assert.False(t, strings.ContainsAny(pw, "abcdefghijklmABCDEFGHIJKLM"), pw)
	}
}

func TestGenerate_DoesNotLogPassword(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := passgen.New(entropy.New(), passgen.WithLogger(zap.New(core)))

	pw, err := g.Generate(passgen.DefaultConstraints())
	require.NoError(t, err)

	entries := logs.FilterMessage("password generated").All()
	require.Len(t, entries, 1)
	for _, f := range entries[0].Context {
		assert.NotEqual(t, pw, f.String)
	}
	assert.EqualValues(t, len(pw), entries[0].ContextMap()["length"])
}

func TestGenerate_Concurrent(t *testing.T) {
	g := newGenerator(t)
	var wg sync.WaitGroup
	results := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pw, err := g.Generate(passgen.DefaultConstraints())
			if err == nil {
				results <- pw
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for pw := range results {
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 45, "expected mostly distinct passwords")
}
