package credentials

import (
	"context"
	"time"

	"github.com/hasbyte1/go-credential-utils/hashing"
)

// Record is a user's stored credential.
type Record struct {
	UserID     string
	Credential hashing.Credential
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository defines the persistence operations for [Record] values.
// Implementations must store Credential.Salt and Credential.Hash verbatim.
type Repository interface {
	// Find retrieves the record for userID.
	// Returns [ErrNotFound] when no matching record exists.
	Find(ctx context.Context, userID string) (*Record, error)

	// Save creates or replaces the record for rec.UserID. The salt and hash
	// must be written together.
	Save(ctx context.Context, rec *Record) error

	// Delete removes the record for userID.
	// Returns [ErrNotFound] if no such record exists.
	Delete(ctx context.Context, userID string) error
}

// Notifier is told when a user logs in with a credential that should be
// rotated, so the application can prompt for a new password.
type Notifier interface {
	RotationRequired(ctx context.Context, userID string, algorithm hashing.Algorithm)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(ctx context.Context, userID string, algorithm hashing.Algorithm)

// RotationRequired calls f.
func (f NotifierFunc) RotationRequired(ctx context.Context, userID string, algorithm hashing.Algorithm) {
	f(ctx, userID, algorithm)
}
