// Package filestore provides a YAML file implementation of
// [credentials.Repository], suitable for command-line tools and small
// deployments.
//
// The whole file is read on every call and rewritten through a temporary file
// and rename on every change, so a crash never leaves a salt without its hash.
//
// With [WithSealer] the user map is encrypted and the file holds only a
// sealed envelope. A plain file is still read, and is sealed on the next
// write.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/hashing"
	"github.com/hasbyte1/go-credential-utils/sealing"
)

// ErrSealed is returned when the file is sealed and the store has no sealer.
var ErrSealed = errors.New("filestore: file is sealed; an encryption key is required")

// Store keeps records in a single YAML document keyed by user ID.
type Store struct {
	path   string
	sealer *sealing.Sealer
	mu     sync.Mutex
}

// Option configures a [Store].
type Option func(*Store)

// WithSealer encrypts the user map at rest with s.
func WithSealer(s *sealing.Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

// document is the plain layout.
type document struct {
	Users map[string]entry `yaml:"users"`
}

// file is the on-disk layout. Exactly one of Users and Sealed is set; Sealed
// holds an encrypted document.
type file struct {
	Users  map[string]entry  `yaml:"users,omitempty"`
	Sealed *sealing.Envelope `yaml:"sealed,omitempty"`
}

type entry struct {
	Salt      string    `yaml:"salt"`
	Hash      string    `yaml:"hash"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// New returns a Store backed by path. The file is created on the first Save.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Find retrieves the record for userID. Returns [credentials.ErrNotFound] when absent.
func (s *Store) Find(_ context.Context, userID string) (*credentials.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	e, ok := doc.Users[userID]
	if !ok {
		return nil, credentials.ErrNotFound
	}
	return &credentials.Record{
		UserID:     userID,
		Credential: hashing.Credential{Salt: e.Salt, Hash: e.Hash},
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}, nil
}

// Save creates or replaces the record for rec.UserID.
func (s *Store) Save(_ context.Context, rec *credentials.Record) error {
	if rec.UserID == "" {
		return credentials.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Users[rec.UserID] = entry{
		Salt:      rec.Credential.Salt,
		Hash:      rec.Credential.Hash,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	return s.write(doc)
}

// Delete removes the record for userID. Returns [credentials.ErrNotFound] when absent.
func (s *Store) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Users[userID]; !ok {
		return credentials.ErrNotFound
	}
	delete(doc.Users, userID)
	return s.write(doc)
}

func (s *Store) load() (*document, error) {
	doc := &document{}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("filestore: read %s: %w", s.path, err)
	default:
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("filestore: parse %s: %w", s.path, err)
		}
		doc.Users = f.Users
		if f.Sealed != nil {
			if doc, err = s.open(*f.Sealed); err != nil {
				return nil, err
			}
		}
	}
	if doc.Users == nil {
		doc.Users = make(map[string]entry)
	}
	return doc, nil
}

func (s *Store) open(env sealing.Envelope) (*document, error) {
	if s.sealer == nil {
		return nil, ErrSealed
	}
	plain, err := s.sealer.Open(env)
	if err != nil {
		return nil, fmt.Errorf("filestore: open %s: %w", s.path, err)
	}
	doc := &document{}
	if err := yaml.Unmarshal(plain, doc); err != nil {
		return nil, fmt.Errorf("filestore: parse sealed %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) encode(doc *document) ([]byte, error) {
	plain, err := yaml.Marshal(doc)
	if err != nil || s.sealer == nil {
		return plain, err
	}
	env, err := s.sealer.Seal(plain)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(file{Sealed: &env})
}

func (s *Store) write(doc *document) error {
	data, err := s.encode(doc)
	if err != nil {
		return fmt.Errorf("filestore: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("filestore: replace %s: %w", s.path, err)
	}
	return nil
}
