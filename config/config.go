// Package config loads credtool settings from a YAML file, CREDTOOL_*
// environment variables and bound command-line flags, in increasing order of
// precedence, and bridges them into the option types of the core packages.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/entropy"
	"github.com/hasbyte1/go-credential-utils/hashing"
	"github.com/hasbyte1/go-credential-utils/passgen"
	"github.com/hasbyte1/go-credential-utils/sealing"
)

// EnvPrefix prefixes every environment variable: auth.cost is read from
// CREDTOOL_AUTH_COST.
const EnvPrefix = "CREDTOOL"

// Config is the complete credtool configuration.
type Config struct {
	Auth    AuthConfig    `mapstructure:"auth"`
	Entropy EntropyConfig `mapstructure:"entropy"`
	Passgen PassgenConfig `mapstructure:"passgen"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
}

// AuthConfig configures the credential hasher.
type AuthConfig struct {
	Pepper          string `mapstructure:"pepper"`
	LegacyDigest    string `mapstructure:"legacy_digest"`
	Cost            int    `mapstructure:"cost" validate:"min=4,max=31"`
	Prefix          string `mapstructure:"prefix" validate:"oneof=$2a $2b $2x $2y"`
	DisableBlowfish bool   `mapstructure:"disable_blowfish"`
	RehashOnLogin   bool   `mapstructure:"rehash_on_login"`
}

// EntropyConfig configures the random byte source.
type EntropyConfig struct {
	// Device is the random device read after getrandom and crypto/rand.
	Device string `mapstructure:"device" validate:"required"`
}

// PassgenConfig mirrors [passgen.Constraints].
type PassgenConfig struct {
	MinLength  int    `mapstructure:"min_length" validate:"min=1"`
	MaxLength  int    `mapstructure:"max_length" validate:"gtefield=MinLength"`
	MinUpper   int    `mapstructure:"min_upper" validate:"min=0"`
	MaxUpper   int    `mapstructure:"max_upper" validate:"min=-1"`
	MinLower   int    `mapstructure:"min_lower" validate:"min=0"`
	MinDigits  int    `mapstructure:"min_digits" validate:"min=0"`
	MaxDigits  int    `mapstructure:"max_digits" validate:"min=-1"`
	MinSymbols int    `mapstructure:"min_symbols" validate:"min=0"`
	MaxSymbols int    `mapstructure:"max_symbols" validate:"min=-1"`
	Symbols    string `mapstructure:"symbols"`
	Disallow   string `mapstructure:"disallow"`
}

// StoreConfig selects the credential repository used by credtool.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory file sqlite redis"`

	// DSN is the file path for "file" and "sqlite", or a redis:// URL.
	DSN string `mapstructure:"dsn" validate:"required_unless=Driver memory"`

	// EncryptionKey is a base64 AES-256 key that seals the "file" store at
	// rest. PreviousKeys are still accepted when reading, for rotation.
	EncryptionKey string   `mapstructure:"encryption_key"`
	PreviousKeys  []string `mapstructure:"previous_keys"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// NewViper returns a viper instance with every key defaulted and the
// CREDTOOL_ environment prefix applied.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := passgen.DefaultConstraints()

	v.SetDefault("auth.pepper", "")
	v.SetDefault("auth.legacy_digest", "")
	v.SetDefault("auth.cost", hashing.DefaultBlowfishCost)
	v.SetDefault("auth.prefix", hashing.DefaultBlowfishPrefix)
	v.SetDefault("auth.disable_blowfish", false)
	v.SetDefault("auth.rehash_on_login", false)

	v.SetDefault("entropy.device", entropy.DefaultDevice)

	v.SetDefault("passgen.min_length", d.MinLength)
	v.SetDefault("passgen.max_length", d.MaxLength)
	v.SetDefault("passgen.min_upper", d.MinUpper)
	v.SetDefault("passgen.max_upper", d.MaxUpper)
	v.SetDefault("passgen.min_lower", d.MinLower)
	v.SetDefault("passgen.min_digits", d.MinDigits)
	v.SetDefault("passgen.max_digits", d.MaxDigits)
	v.SetDefault("passgen.min_symbols", d.MinSymbols)
	v.SetDefault("passgen.max_symbols", d.MaxSymbols)
	v.SetDefault("passgen.symbols", d.Symbols)
	v.SetDefault("passgen.disallow", d.Disallow)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.previous_keys", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads path (if non-empty) on top of the defaults and environment and
// returns the validated configuration.
func Load(path string) (*Config, error) {
	return FromViper(NewViper(), path)
}

// FromViper reads path (if non-empty) into v and returns the validated
// configuration. Use it when command-line flags are bound to v.
func FromViper(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: validate: %w", err)
		}
		for _, fe := range verrs {
			result = multierror.Append(result,
				fmt.Errorf("config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	if err := c.PasswordConstraints().Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("config: passgen: %w", err))
	}
	if d := strings.ToLower(strings.TrimSpace(c.Auth.LegacyDigest)); d != "" && d != hashing.BlowfishDigestName &&
		!hashing.NewDefaultDigestRegistry().Has(d) {
		result = multierror.Append(result, fmt.Errorf("config: auth.legacy_digest: %w: %q", hashing.ErrUnknownDigest, c.Auth.LegacyDigest))
	}
	if _, err := c.Sealer(nil); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// ──────────────────────────────────────────────────────────────────────────────
// Bridges into the core packages
// ──────────────────────────────────────────────────────────────────────────────

// EntropyOptions returns the options for [entropy.New].
func (c *Config) EntropyOptions(logger *zap.Logger) []entropy.Option {
	return []entropy.Option{
		entropy.WithDevice(c.Entropy.Device),
		entropy.WithLogger(logger),
	}
}

// HasherOptions returns the options for [hashing.NewHasher].
func (c *Config) HasherOptions(src *entropy.Source, logger *zap.Logger) hashing.Options {
	return hashing.Options{
		Pepper:          c.Auth.Pepper,
		LegacyDigest:    c.Auth.LegacyDigest,
		Cost:            c.Auth.Cost,
		Prefix:          c.Auth.Prefix,
		DisableBlowfish: c.Auth.DisableBlowfish,
		Entropy:         src,
		Logger:          logger,
	}
}

// PasswordConstraints returns the configured [passgen.Constraints].
func (c *Config) PasswordConstraints() passgen.Constraints {
	p := c.Passgen
	return passgen.Constraints{
		MinLength:  p.MinLength,
		MaxLength:  p.MaxLength,
		MinUpper:   p.MinUpper,
		MaxUpper:   p.MaxUpper,
		MinLower:   p.MinLower,
		MinDigits:  p.MinDigits,
		MaxDigits:  p.MaxDigits,
		MinSymbols: p.MinSymbols,
		MaxSymbols: p.MaxSymbols,
		Symbols:    p.Symbols,
		Disallow:   p.Disallow,
	}
}

// Sealer returns the sealer for the file store, or nil when no encryption
// key is configured.
func (c *Config) Sealer(src *entropy.Source) (*sealing.Sealer, error) {
	if c.Store.EncryptionKey == "" {
		if len(c.Store.PreviousKeys) > 0 {
			return nil, errors.New("config: store.previous_keys set without store.encryption_key")
		}
		return nil, nil
	}
	key, err := sealing.DecodeKey(c.Store.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config: store.encryption_key: %w", err)
	}
	previous, err := sealing.DecodeKeys(c.Store.PreviousKeys)
	if err != nil {
		return nil, fmt.Errorf("config: store.previous_keys: %w", err)
	}
	s, err := sealing.New(key, sealing.WithPreviousKeys(previous...), sealing.WithEntropy(src))
	if err != nil {
		return nil, fmt.Errorf("config: store: %w", err)
	}
	return s, nil
}

// ServiceConfig returns the [credentials.Config] for the credential service.
func (c *Config) ServiceConfig() credentials.Config {
	return credentials.Config{
		RehashOnLogin:    c.Auth.RehashOnLogin,
		ResetConstraints: c.PasswordConstraints(),
	}
}
