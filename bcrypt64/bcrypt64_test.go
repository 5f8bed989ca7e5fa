package bcrypt64_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-credential-utils/bcrypt64"
	"github.com/hasbyte1/go-credential-utils/entropy"
)

// transliterate is the reference construction: strip padding, then map the
// standard alphabet onto the bcrypt one character by character.
func transliterate(buf []byte, n int) string {
	const std = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	s := strings.TrimRight(base64.StdEncoding.EncodeToString(buf), "=")
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteByte(bcrypt64.Alphabet[strings.IndexByte(std, s[i])])
	}
	out := b.String()
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func TestEncode_MatchesTransliteration(t *testing.T) {
	src := entropy.New()
	for _, n := range []int{1, 5, 22, 31, 44} {
		buf := src.Generate(entropy.RawLength(n) + 3)
		assert.Equal(t, transliterate(buf, n), bcrypt64.Encode(buf, n), "n=%d", n)
	}
}

func TestEncode_KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		n    int
		want string
	}{
		{"zero bytes", []byte{0, 0, 0}, 4, "...."},
		{"all ones", []byte{0xff, 0xff, 0xff}, 4, "9999"},
		{"truncated", []byte("hello"), 3, "YET"},
		{"shorter than requested", []byte{0}, 10, ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bcrypt64.Encode(tt.buf, tt.n))
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	buf := []byte("the same buffer every time")
	first := bcrypt64.Encode(buf, 22)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, bcrypt64.Encode(buf, 22))
	}
}

func TestEncode_Length(t *testing.T) {
	buf := make([]byte, 10) // encodes to 14 characters
	assert.Len(t, bcrypt64.Encode(buf, 8), 8)
	assert.Len(t, bcrypt64.Encode(buf, 14), 14)
	assert.Len(t, bcrypt64.Encode(buf, 40), 14)
	assert.Empty(t, bcrypt64.Encode(buf, 0))
}

func TestRandom_AlphabetAndLength(t *testing.T) {
	src := entropy.New()
	for _, n := range []int{1, 2, 22, 44, 100} {
		s := bcrypt64.Random(src, n)
		assert.Len(t, s, n)
		assert.True(t, bcrypt64.Valid(s), "%q contains characters outside the alphabet", s)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, bcrypt64.Valid("./AZaz09"))
	assert.True(t, bcrypt64.Valid(""))
	assert.False(t, bcrypt64.Valid("abc+"))
	assert.False(t, bcrypt64.Valid("abc="))
}

func TestDecode_RoundTrip(t *testing.T) {
	src := entropy.New()
	for _, n := range []int{1, 2, 3, 16, 23} {
		buf := src.Generate(n)
		got, err := bcrypt64.Decode(bcrypt64.EncodeToString(buf))
		require.NoError(t, err)
		assert.Equal(t, buf, got)
	}
}

func TestDecode_SaltLength(t *testing.T) {
	// A 22-character bcrypt salt carries 16 bytes; the trailing 4 bits are dropped.
	got, err := bcrypt64.Decode("abcdefghijklmnopqrstuv")
	require.NoError(t, err)
	assert.Len(t, got, 16)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := bcrypt64.Decode("ab+d")
	assert.Error(t, err)
}
