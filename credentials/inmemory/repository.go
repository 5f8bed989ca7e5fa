// Package inmemory provides a thread-safe in-memory implementation of
// [credentials.Repository].
//
// It is intended for use in tests and prototyping. Do not use it in production.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/hasbyte1/go-credential-utils/credentials"
)

// Repository is a thread-safe in-memory implementation of [credentials.Repository].
type Repository struct {
	mu      sync.RWMutex
	records map[string]*credentials.Record // keyed by user ID
}

// New creates an empty [Repository].
func New() *Repository {
	return &Repository{records: make(map[string]*credentials.Record)}
}

// Find retrieves the record for userID. Returns [credentials.ErrNotFound] when absent.
func (r *Repository) Find(_ context.Context, userID string) (*credentials.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return nil, credentials.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Save creates or replaces the record for rec.UserID.
func (r *Repository) Save(_ context.Context, rec *credentials.Record) error {
	if rec.UserID == "" {
		return credentials.ErrEmptyUserID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.UserID] = cloneRecord(rec)
	return nil
}

// Delete removes the record for userID. Returns [credentials.ErrNotFound] when absent.
func (r *Repository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[userID]; !ok {
		return credentials.ErrNotFound
	}
	delete(r.records, userID)
	return nil
}

// UserIDs returns the stored user IDs in sorted order.
func (r *Repository) UserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// cloneRecord returns a copy of rec. Record holds no reference types, so a
// shallow copy is enough.
func cloneRecord(rec *credentials.Record) *credentials.Record {
	cp := *rec
	return &cp
}
