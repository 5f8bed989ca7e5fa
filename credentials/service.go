package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hasbyte1/go-credential-utils/hashing"
	"github.com/hasbyte1/go-credential-utils/passgen"
)

// Config holds the runtime configuration for a [Service].
type Config struct {
	// RehashOnLogin re-hashes a legacy credential with the password that
	// just verified against it, instead of waiting for the user to change
	// it.
	RehashOnLogin bool

	// ResetConstraints shapes passwords generated by
	// [Service.ResetPassword].
	ResetConstraints passgen.Constraints
}

// DefaultConfig returns a [Config] populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RehashOnLogin:    false,
		ResetConstraints: passgen.DefaultConstraints(),
	}
}

// Service provides the password lifecycle operations.
// All storage calls are delegated to [Repository], keeping the business
// logic independent of any database technology.
type Service struct {
	repo      Repository
	hasher    *hashing.Hasher
	generator *passgen.Generator
	notifier  Notifier
	logger    *zap.Logger
	config    Config
	now       func() time.Time
}

// Option configures a [Service].
type Option func(*Service)

// WithNotifier sets the notifier told about logins that need rotation.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithGenerator sets the password generator used by [Service.ResetPassword].
func WithGenerator(g *passgen.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a [Service] with the supplied dependencies.
func NewService(repo Repository, hasher *hashing.Hasher, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		config: cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = passgen.New(nil)
	}
	return s
}

// SetPassword hashes plain and saves it for userID, creating the record when
// none exists. It reports whether anything was written: setting the password
// the user already has leaves the stored salt and hash untouched.
func (s *Service) SetPassword(ctx context.Context, userID, plain string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}
	if plain == "" {
		return false, ErrEmptyPassword
	}

	rec, err := s.repo.Find(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = &Record{UserID: userID, CreatedAt: s.now()}
	case err != nil:
		return false, fmt.Errorf("credentials: load record: %w", err)
	}

	cred := rec.Credential
	changed, err := s.hasher.SetSecret(&cred, plain)
	if err != nil {
		return false, fmt.Errorf("credentials: set password: %w", err)
	}
	if !changed {
		return false, nil
	}

	rec.Credential = cred
	rec.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("credentials: persist record: %w", err)
	}
	s.logger.Info("password set", zap.String("user_id", userID))
	return true, nil
}

// Authenticate verifies plain against the stored credential of userID.
//
// An unknown user and a wrong password both return [ErrInvalidCredentials].
// Configuration errors from the hasher, such as
// [hashing.ErrBlowfishUnsupported], are returned wrapped.
//
// When the match reports ShouldRotate the notifier is called, and with
// [Config.RehashOnLogin] the credential is re-hashed and saved. A failed
// re-hash is logged but does not fail the login.
func (s *Service) Authenticate(ctx context.Context, userID, plain string) (hashing.MatchResult, error) {
	if userID == "" {
		return hashing.MatchResult{}, ErrEmptyUserID
	}

	rec, err := s.repo.Find(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return hashing.MatchResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return hashing.MatchResult{}, fmt.Errorf("credentials: load record: %w", err)
	}

	res, err := s.hasher.Matches(rec.Credential, plain)
	if err != nil {
		return hashing.MatchResult{}, fmt.Errorf("credentials: verify password: %w", err)
	}
	if !res.Matched {
		return res, ErrInvalidCredentials
	}

	if res.ShouldRotate {
		algo := hashing.DetectAlgorithm(rec.Credential.Salt, s.hasher.Options().LegacyDigest)
		if s.notifier != nil {
			s.notifier.RotationRequired(ctx, userID, algo)
		}
		if s.config.RehashOnLogin {
			if err := s.rehash(ctx, rec, plain); err != nil {
				s.logger.Warn("rehash on login failed", zap.String("user_id", userID), zap.Error(err))
			} else {
				s.logger.Info("legacy credential rehashed on login",
					zap.String("user_id", userID), zap.Stringer("from", algo))
			}
		}
	}
	return res, nil
}

// rehash replaces rec's credential with a fresh one for plain.
func (s *Service) rehash(ctx context.Context, rec *Record, plain string) error {
	var cred hashing.Credential
	if _, err := s.hasher.SetSecret(&cred, plain); err != nil {
		return err
	}
	rec.Credential = cred
	rec.UpdatedAt = s.now()
	return s.repo.Save(ctx, rec)
}

// ResetPassword replaces the password of userID with one generated under
// [Config.ResetConstraints] and returns it. The plain-text password must be
// delivered to the user; it cannot be recovered.
func (s *Service) ResetPassword(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}
	pw, err := s.generator.Generate(s.config.ResetConstraints)
	if err != nil {
		return "", fmt.Errorf("credentials: generate password: %w", err)
	}
	if _, err := s.SetPassword(ctx, userID, pw); err != nil {
		return "", err
	}
	return pw, nil
}

// NeedsRehash reports whether the stored credential of userID was produced
// with something other than the hasher's current settings.
func (s *Service) NeedsRehash(ctx context.Context, userID string) (bool, error) {
	rec, err := s.repo.Find(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("credentials: load record: %w", err)
	}
	return s.hasher.NeedsRehash(rec.Credential), nil
}

// Delete removes the stored credential of userID.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("credentials: delete record: %w", err)
	}
	return nil
}
