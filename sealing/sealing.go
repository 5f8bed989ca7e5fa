// Package sealing encrypts data at rest with AES-256-GCM.
//
// A [Sealer] holds one primary key used for sealing and any number of
// previous keys that are still accepted when opening, so a key can be rotated
// by adding the new key as primary and re-writing the data.
package sealing

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/hasbyte1/go-credential-utils/entropy"
)

const (
	// KeySize is the required key length in bytes (AES-256).
	KeySize = 32

	// tagSize is the AES-GCM authentication tag length in bytes.
	tagSize = 16

	// nonceSize is the standard AES-GCM nonce length in bytes.
	nonceSize = 12
)

// Envelope is the serialisable form of a sealed value. All fields are
// standard base64.
type Envelope struct {
	Nonce string `yaml:"nonce" json:"nonce"`
	Value string `yaml:"value" json:"value"`
	Tag   string `yaml:"tag" json:"tag"`
}

// Option configures a [Sealer].
type Option func(*Sealer)

// WithPreviousKeys registers keys tried, in order, after the primary key when
// opening. They are never used for sealing. Keys of the wrong length are
// reported by [New].
func WithPreviousKeys(keys ...[]byte) Option {
	return func(s *Sealer) {
		for _, k := range keys {
			s.keys = append(s.keys, cloneBytes(k))
		}
	}
}

// WithEntropy sets the source of nonces. Default: [entropy.New].
func WithEntropy(src *entropy.Source) Option {
	return func(s *Sealer) {
		if src != nil {
			s.src = src
		}
	}
}

// Sealer seals and opens [Envelope] values. It is safe for concurrent use.
type Sealer struct {
	// keys[0] is the primary key.
	keys [][]byte
	src  *entropy.Source
}

// New returns a Sealer whose primary key is key.
func New(key []byte, opts ...Option) (*Sealer, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	s := &Sealer{keys: [][]byte{cloneBytes(key)}}
	for _, o := range opts {
		o(s)
	}
	for i, k := range s.keys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("%w: key %d has %d bytes, want %d", ErrInvalidKeyLength, i, len(k), KeySize)
		}
	}
	if s.src == nil {
		s.src = entropy.New()
	}
	return s, nil
}

// Seal encrypts plaintext under the primary key with a fresh nonce.
func (s *Sealer) Seal(plaintext []byte) (Envelope, error) {
	gcm, err := newGCM(s.keys[0])
	if err != nil {
		return Envelope{}, err
	}
	nonce := s.src.Generate(nonceSize)

	// Seal appends the tag after the ciphertext.
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	n := len(sealed) - tagSize
	return Envelope{
		Nonce: base64.StdEncoding.EncodeToString(nonce),
		Value: base64.StdEncoding.EncodeToString(sealed[:n]),
		Tag:   base64.StdEncoding.EncodeToString(sealed[n:]),
	}, nil
}

// Open authenticates and decrypts env, trying the primary key first and then
// each previous key. It returns [ErrOpenFailed] when no key succeeds.
func (s *Sealer) Open(env Envelope) ([]byte, error) {
	if env.Nonce == "" || env.Tag == "" {
		return nil, ErrInvalidEnvelope
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != nonceSize {
		return nil, fmt.Errorf("%w: nonce", ErrInvalidEnvelope)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: value", ErrInvalidEnvelope)
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil || len(tag) != tagSize {
		return nil, fmt.Errorf("%w: tag", ErrInvalidEnvelope)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(append(sealed, ciphertext...), tag...)
	for _, key := range s.keys {
		gcm, err := newGCM(key)
		if err != nil {
			return nil, err
		}
		if plaintext, err := gcm.Open(nil, nonce, sealed, nil); err == nil {
			return plaintext, nil
		}
	}
	return nil, ErrOpenFailed
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sealing: create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, fmt.Errorf("sealing: initialise AES-GCM: %w", err)
	}
	return gcm, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
