package sealing

import "errors"

// Sentinel errors returned by sealing operations.
//
// Callers should use errors.Is for comparisons:
//
//	_, err := s.Open(env)
//	if errors.Is(err, sealing.ErrOpenFailed) {
//	    // wrong key or tampered data
//	}
var (
	// ErrEmptyKey is returned when a nil or zero-length key is provided.
	ErrEmptyKey = errors.New("sealing: key must not be empty")

	// ErrInvalidKeyLength is returned when a key is not [KeySize] bytes.
	ErrInvalidKeyLength = errors.New("sealing: invalid key length")

	// ErrInvalidEnvelope is returned when an envelope is missing fields or
	// cannot be base64-decoded.
	ErrInvalidEnvelope = errors.New("sealing: invalid envelope")

	// ErrOpenFailed is returned when no configured key authenticates the
	// envelope. It covers both a wrong key and modified data.
	ErrOpenFailed = errors.New("sealing: authentication failed")
)
