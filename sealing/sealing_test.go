package sealing_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/hasbyte1/go-credential-utils/sealing"
)

func mustKey(t *testing.T) []byte {
	t.Helper()
	key := sealing.GenerateKey(nil)
	if len(key) != sealing.KeySize {
		t.Fatalf("GenerateKey length = %d, want %d", len(key), sealing.KeySize)
	}
	return key
}

func mustSealer(t *testing.T, key []byte, opts ...sealing.Option) *sealing.Sealer {
	t.Helper()
	s, err := sealing.New(key, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Constructor tests
// ──────────────────────────────────────────────────────────────────────────────

func TestNew_RejectsInvalidKeys(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		opts    []sealing.Option
		wantErr error
	}{
		{"nil key", nil, nil, sealing.ErrEmptyKey},
		{"empty key", []byte{}, nil, sealing.ErrEmptyKey},
		{"16-byte key", make([]byte, 16), nil, sealing.ErrInvalidKeyLength},
		{"short previous key", make([]byte, 32), []sealing.Option{sealing.WithPreviousKeys(make([]byte, 8))}, sealing.ErrInvalidKeyLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sealing.New(tt.key, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Seal / Open
// ──────────────────────────────────────────────────────────────────────────────

func TestSealOpen_RoundTrip(t *testing.T) {
	s := mustSealer(t, mustKey(t))
	for _, plain := range [][]byte{nil, []byte("x"), bytes.Repeat([]byte("users:\n"), 200)} {
		env, err := s.Seal(plain)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		got, err := s.Open(env)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(got, plain) {
			t.Fatalf("Open = %q, want %q", got, plain)
		}
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	s := mustSealer(t, mustKey(t))
	a, _ := s.Seal([]byte("same"))
	b, _ := s.Seal([]byte("same"))
	if a.Nonce == b.Nonce || a.Value == b.Value {
		t.Fatal("two seals of the same plaintext should differ")
	}
}

func TestOpen_WrongKey(t *testing.T) {
	env, err := mustSealer(t, mustKey(t)).Seal([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = mustSealer(t, mustKey(t)).Open(env)
	if !errors.Is(err, sealing.ErrOpenFailed) {
		t.Fatalf("err = %v, want ErrOpenFailed", err)
	}
}

func TestOpen_Tampered(t *testing.T) {
	s := mustSealer(t, mustKey(t))
	env, err := s.Seal([]byte("secret value"))
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := base64.StdEncoding.DecodeString(env.Value)
	raw[0] ^= 0xff
	env.Value = base64.StdEncoding.EncodeToString(raw)

	if _, err := s.Open(env); !errors.Is(err, sealing.ErrOpenFailed) {
		t.Fatalf("err = %v, want ErrOpenFailed", err)
	}
}

func TestOpen_InvalidEnvelope(t *testing.T) {
	s := mustSealer(t, mustKey(t))
	good, _ := s.Seal([]byte("v"))

	tests := []struct {
		name string
		env  sealing.Envelope
	}{
		{"empty", sealing.Envelope{}},
		{"missing tag", sealing.Envelope{Nonce: good.Nonce, Value: good.Value}},
		{"bad nonce", sealing.Envelope{Nonce: "!!", Value: good.Value, Tag: good.Tag}},
		{"short nonce", sealing.Envelope{Nonce: "AAAA", Value: good.Value, Tag: good.Tag}},
		{"bad tag", sealing.Envelope{Nonce: good.Nonce, Value: good.Value, Tag: "AAAA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Open(tt.env); !errors.Is(err, sealing.ErrInvalidEnvelope) {
				t.Fatalf("err = %v, want ErrInvalidEnvelope", err)
			}
		})
	}
}

func TestOpen_PreviousKeys(t *testing.T) {
	oldKey, newKey := mustKey(t), mustKey(t)
	env, err := mustSealer(t, oldKey).Seal([]byte("rotated"))
	if err != nil {
		t.Fatal(err)
	}

	rotated := mustSealer(t, newKey, sealing.WithPreviousKeys(oldKey))
	got, err := rotated.Open(env)
	if err != nil {
		t.Fatalf("Open with previous key: %v", err)
	}
	if string(got) != "rotated" {
		t.Fatalf("Open = %q", got)
	}

	// New seals use the primary key only.
	fresh, _ := rotated.Seal([]byte("new"))
	if _, err := mustSealer(t, oldKey).Open(fresh); !errors.Is(err, sealing.ErrOpenFailed) {
		t.Fatalf("old key opened a new seal: %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Key encoding
// ──────────────────────────────────────────────────────────────────────────────

func TestEncodeDecodeKey(t *testing.T) {
	key := mustKey(t)
	got, err := sealing.DecodeKey(sealing.EncodeKey(key))
	if err != nil || !bytes.Equal(got, key) {
		t.Fatalf("DecodeKey(EncodeKey) = %x, %v", got, err)
	}

	url := base64.URLEncoding.EncodeToString(key)
	if got, err := sealing.DecodeKey(url); err != nil || !bytes.Equal(got, key) {
		t.Fatalf("DecodeKey(url) = %x, %v", got, err)
	}

	if _, err := sealing.DecodeKey("not base64!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, err := sealing.DecodeKeys([]string{sealing.EncodeKey(key), "%%"}); err == nil {
		t.Fatal("expected error for second key")
	}
}
