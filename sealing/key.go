package sealing

import (
	"encoding/base64"
	"fmt"

	"github.com/hasbyte1/go-credential-utils/entropy"
)

// GenerateKey returns a new random key of [KeySize] bytes drawn from src. A
// nil src uses [entropy.New].
func GenerateKey(src *entropy.Source) []byte {
	if src == nil {
		src = entropy.New()
	}
	return src.Generate(KeySize)
}

// EncodeKey returns the standard base64 encoding of key, suitable for a
// configuration file or environment variable.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey decodes a key produced by [EncodeKey]. The URL-safe alphabet is
// also accepted.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err == nil {
		return key, nil
	}
	key, err = base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("sealing: decode key: %w", err)
	}
	return key, nil
}

// DecodeKeys decodes each of encoded with [DecodeKey].
func DecodeKeys(encoded []string) ([][]byte, error) {
	keys := make([][]byte, 0, len(encoded))
	for i, e := range encoded {
		k, err := DecodeKey(e)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
