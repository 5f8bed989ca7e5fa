package entropy

import (
	"crypto/rand"
	"io"
	"os"
)

// DefaultDevice is the device read by the device provider.
const DefaultDevice = "/dev/urandom"

// Provider names used by [DefaultProviders] and reported by [Source.Probe].
const (
	ProviderGetrandom  = "getrandom"
	ProviderCryptoRand = "crypto/rand"
	ProviderDevice     = "device"
	ProviderFast       = "fast"
)

// Provider is a single entropy source in a [Source] chain.
//
// Read returns up to n bytes. ok reports whether the provider considers the
// draw a full success; a provider may return a partial buffer with ok=false,
// and that partial buffer is still folded into the result.
type Provider struct {
	Name string
	Read func(n int) (b []byte, ok bool)
}

// DefaultProviders returns the built-in provider chain, strongest first.
// device is the path read by the last provider; pass "" for [DefaultDevice].
func DefaultProviders(device string) []Provider {
	if device == "" {
		device = DefaultDevice
	}
	return []Provider{
		{Name: ProviderGetrandom, Read: readGetrandom},
		{Name: ProviderCryptoRand, Read: readCryptoRand},
		{Name: ProviderDevice, Read: deviceReader(device)},
	}
}

func readCryptoRand(n int) ([]byte, bool) {
	b := make([]byte, n)
	got, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		return b[:got], false
	}
	return b, true
}

// deviceReader reads from a character device until n bytes are collected or
// the device reports an error.
func deviceReader(path string) func(n int) ([]byte, bool) {
	return func(n int) ([]byte, bool) {
		f, err := os.Open(path)
		if err != nil {
			return nil, false
		}
		defer f.Close()

		b := make([]byte, n)
		got, err := io.ReadFull(f, b)
		if err != nil {
			return b[:got], false
		}
		return b, true
	}
}
