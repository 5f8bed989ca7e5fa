package passgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-credential-utils/passgen"
)

func onlyFrom(t *testing.T, s, alphabet string) {
	t.Helper()
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(alphabet, rune(s[i])) {
			t.Fatalf("%q contains %q outside %q", s, s[i], alphabet)
		}
	}
}

const (
	lower  = "abcdefghijklmnopqrstuvwxyz"
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits = "0123456789"
)

func TestRandomChars(t *testing.T) {
	g := newGenerator(t)
	tests := []struct {
		name     string
		set      passgen.CharSet
		disallow string
		alphabet string
	}{
		{"letters", passgen.Letters, "", lower + upper},
		{"alphanumeric", passgen.Alphanumeric, "", lower + upper + digits},
		{"digits", passgen.Digits, "", digits},
		{"digits minus disallow", passgen.Digits, "01", "23456789"},
		{"exact-case disallow", passgen.Letters, "l", "abcdefghijkmnopqrstuvwxyz" + upper},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := g.RandomChars(200, tt.set, tt.disallow)
			require.NoError(t, err)
			require.Len(t, s, 200)
			onlyFrom(t, s, tt.alphabet)
		})
	}
}

func TestRandomChars_Edges(t *testing.T) {
	g := newGenerator(t)

	s, err := g.RandomChars(0, passgen.Letters, "")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = g.RandomChars(3, passgen.Digits, digits)
	assert.ErrorIs(t, err, passgen.ErrNoAllowedCharacters)
}

func TestRandomAlnum_Defaults(t *testing.T) {
	g := newGenerator(t)
	for i := 0; i < 50; i++ {
		s, err := g.RandomAlnum(0, passgen.AlnumOptions{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(s), 10)
		assert.LessOrEqual(t, len(s), 40)
		onlyFrom(t, s, lower+upper+digits)
	}
}

func TestRandomAlnum_Options(t *testing.T) {
	g := newGenerator(t)
	tests := []struct {
		name     string
		opts     passgen.AlnumOptions
		alphabet string
	}{
		{"secure", passgen.AlnumOptions{}, lower + upper + digits},
		{"fast", passgen.AlnumOptions{Fast: true}, lower + upper + digits},
		{"lower only", passgen.AlnumOptions{ExcludeUpper: true, ExcludeDigits: true}, lower},
		{"allow", passgen.AlnumOptions{Allow: "abc123"}, "abc123"},
		{"allow non-alnum", passgen.AlnumOptions{Allow: "-_!"}, "-_!"},
		{"disallow", passgen.AlnumOptions{ExcludeUpper: true, Disallow: "aeiou"}, "bcdfghjklmnpqrstvwxyz" + digits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := g.RandomAlnum(64, tt.opts)
			require.NoError(t, err)
			require.Len(t, s, 64)
			onlyFrom(t, s, tt.alphabet)
		})
	}
}

func TestRandomAlnum_Errors(t *testing.T) {
	g := newGenerator(t)

	_, err := g.RandomAlnum(8, passgen.AlnumOptions{ExcludeUpper: true, ExcludeLower: true, ExcludeDigits: true})
	assert.ErrorIs(t, err, passgen.ErrNoAllowedCharacters)

	_, err = g.RandomAlnum(8, passgen.AlnumOptions{Allow: "ab", Disallow: "ab"})
	assert.ErrorIs(t, err, passgen.ErrNoAllowedCharacters)

	_, err = g.RandomAlnum(0, passgen.AlnumOptions{MinLength: 20, MaxLength: 5})
	assert.ErrorIs(t, err, passgen.ErrInvalidConstraints)

	_, err = g.RandomAlnum(8, passgen.AlnumOptions{Allow: "ab€"})
	assert.ErrorIs(t, err, passgen.ErrInvalidConstraints)

	_, err = g.RandomAlnum(8, passgen.AlnumOptions{Disallow: "é"})
	assert.ErrorIs(t, err, passgen.ErrInvalidConstraints)
}

func TestRandomDigits(t *testing.T) {
	g := newGenerator(t)
	s, err := g.RandomDigits(32, passgen.AlnumOptions{ExcludeDigits: true})
	require.NoError(t, err)
	require.Len(t, s, 32)
	onlyFrom(t, s, digits)

	s, err = g.RandomDigits(0, passgen.AlnumOptions{MinLength: 4, MaxLength: 6, Disallow: "0"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(s), 4)
	assert.LessOrEqual(t, len(s), 6)
	onlyFrom(t, s, "123456789")
}
