// Package bcrypt64 encodes random buffers as strings drawn from the bcrypt
// base64 alphabet.
//
// bcrypt salts use their own alphabet ordering ("./A-Za-z0-9") rather than the
// standard base64 ordering ("A-Za-z0-9+/"), so salts handed to the adaptive
// hash must be transliterated before use.
package bcrypt64

import (
	"encoding/base64"
	"strings"

	"github.com/hasbyte1/go-credential-utils/entropy"
)

// Alphabet is the bcrypt base64 alphabet in encoding order.
const Alphabet = "./ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// encoding is standard base64 with every character translated position for
// position into [Alphabet], without padding.
var encoding = base64.NewEncoding(Alphabet).WithPadding(base64.NoPadding)

// padded is used for decoding; bcrypt strings are padded back to a multiple
// of four before decoding so that trailing bits are discarded, not rejected.
var padded = base64.NewEncoding(Alphabet)

// ByteSource supplies raw random bytes. [*entropy.Source] satisfies it.
type ByteSource interface {
	Generate(n int) []byte
}

// Encode base64-encodes buf, strips padding, transliterates the result into
// [Alphabet] and truncates it to requiredLength characters. The output is
// deterministic for a given buffer and never longer than the encoded form.
func Encode(buf []byte, requiredLength int) string {
	if requiredLength <= 0 {
		return ""
	}
	s := encoding.EncodeToString(buf)
	if len(s) > requiredLength {
		s = s[:requiredLength]
	}
	return s
}

// EncodeToString returns the full unpadded encoding of buf.
func EncodeToString(buf []byte) string {
	return encoding.EncodeToString(buf)
}

// Decode decodes an unpadded bcrypt base64 string.
func Decode(s string) ([]byte, error) {
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	return padded.DecodeString(s)
}

// Random returns a random string of length characters from [Alphabet],
// drawing just enough raw bytes from src.
func Random(src ByteSource, length int) string {
	if length <= 0 {
		return ""
	}
	return Encode(src.Generate(entropy.RawLength(length)), length)
}

// Valid reports whether every character of s belongs to [Alphabet].
func Valid(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
