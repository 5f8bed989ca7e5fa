package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// DigestFunc constructs a fresh [hash.Hash] for a legacy digest.
type DigestFunc func() hash.Hash

// DigestRegistry is a thread-safe registry of named legacy digests.
//
// Legacy credentials record only their salt, so the digest that produced them
// is named in configuration ([Options.LegacyDigest]) and resolved here. Names
// are case-insensitive and follow the common hash() naming ("sha256",
// "sha512/256", "sha3-256", "ripemd160").
//
// # Thread safety
//
// All DigestRegistry methods are safe for concurrent use. A [sync.RWMutex]
// serialises [DigestRegistry.Register] while allowing concurrent lookups.
type DigestRegistry struct {
	mu      sync.RWMutex
	digests map[string]DigestFunc
}

// NewDigestRegistry creates an empty DigestRegistry.
//
// Use [NewDefaultDigestRegistry] for the variant that registers every
// built-in digest.
func NewDigestRegistry() *DigestRegistry {
	return &DigestRegistry{digests: make(map[string]DigestFunc)}
}

// NewDefaultDigestRegistry creates a DigestRegistry with the built-in digests
// registered: md4, md5, sha1, the sha2 family, ripemd160, the sha3 family,
// blake2b-256, blake2b-512 and blake2s-256.
func NewDefaultDigestRegistry() *DigestRegistry {
	r := NewDigestRegistry()
	for name, fn := range map[string]DigestFunc{
		"md4":         md4.New,
		"md5":         md5.New,
		"sha1":        sha1.New,
		"sha224":      sha256.New224,
		"sha256":      sha256.New,
		"sha384":      sha512.New384,
		"sha512":      sha512.New,
		"sha512/224":  sha512.New512_224,
		"sha512/256":  sha512.New512_256,
		"ripemd160":   ripemd160.New,
		"sha3-224":    sha3.New224,
		"sha3-256":    sha3.New256,
		"sha3-384":    sha3.New384,
		"sha3-512":    sha3.New512,
		"blake2b-256": unkeyed(blake2b.New256),
		"blake2b-512": unkeyed(blake2b.New512),
		"blake2s-256": unkeyed(blake2s.New256),
	} {
		_ = r.Register(name, fn)
	}
	return r
}

// unkeyed adapts a keyed BLAKE2 constructor. A nil key never errors.
func unkeyed(fn func(key []byte) (hash.Hash, error)) DigestFunc {
	return func() hash.Hash {
		h, _ := fn(nil)
		return h
	}
}

// Register adds or replaces a named digest.
func (r *DigestRegistry) Register(name string, fn DigestFunc) error {
	name = normalizeDigestName(name)
	if name == "" {
		return ErrEmptyDigestName
	}
	if fn == nil {
		return ErrNilDigest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests[name] = fn
	return nil
}

// Lookup returns the constructor registered under name, or
// [ErrUnknownDigest].
func (r *DigestRegistry) Lookup(name string) (DigestFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.digests[normalizeDigestName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
	}
	return fn, nil
}

// Has reports whether a digest with the given name is registered.
func (r *DigestRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.digests[normalizeDigestName(name)]
	return ok
}

// Names returns the registered digest names in sorted order.
func (r *DigestRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.digests))
	for name := range r.digests {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Sum returns the lowercase hex digest of data.
func (r *DigestRegistry) Sum(name string, data []byte) (string, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return "", err
	}
	h := fn()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func normalizeDigestName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
