// Package cli implements the credtool command tree.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hasbyte1/go-credential-utils/config"
	"github.com/hasbyte1/go-credential-utils/entropy"
	"github.com/hasbyte1/go-credential-utils/hashing"
	"github.com/hasbyte1/go-credential-utils/logging"
	"github.com/hasbyte1/go-credential-utils/passgen"
)

// ErrMismatch is returned by verify and login when the password does not
// match. main maps it to exit status 1 without printing a usage message.
var ErrMismatch = errors.New("password does not match")

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here are read directly from the command.
var flagKeys = map[string]string{
	"cost":             "auth.cost",
	"legacy-digest":    "auth.legacy_digest",
	"disable-blowfish": "auth.disable_blowfish",
	"rehash-on-login":  "auth.rehash_on_login",
	"device":           "entropy.device",
	"store":            "store.driver",
	"dsn":              "store.dsn",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"min-length":       "passgen.min_length",
	"max-length":       "passgen.max_length",
	"min-upper":        "passgen.min_upper",
	"max-upper":        "passgen.max_upper",
	"min-lower":        "passgen.min_lower",
	"min-digits":       "passgen.min_digits",
	"max-digits":       "passgen.max_digits",
	"min-symbols":      "passgen.min_symbols",
	"max-symbols":      "passgen.max_symbols",
	"symbols":          "passgen.symbols",
	"disallow":         "passgen.disallow",
}

// app holds the state shared by every subcommand. It is populated by the
// root command's PersistentPreRunE.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg    *config.Config
	logger *zap.Logger
	src    *entropy.Source
	hasher *hashing.Hasher
	gen    *passgen.Generator
}

// NewRootCommand returns the credtool command tree. Logs are written to the
// command's error stream.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "credtool",
		Short: "Hash, verify and generate passwords",
		Long: `credtool sets and verifies salted password credentials (bcrypt with a
pepper, plus legacy digests for older records), generates passwords under
composition rules and manages a credential store.

Settings are read from --config, then CREDTOOL_* environment variables, then
flags. The pepper is only read from the file or CREDTOOL_AUTH_PEPPER.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "path to a YAML config file")
	pf.Int("cost", hashing.DefaultBlowfishCost, "bcrypt cost for new salts (4-31)")
	pf.String("legacy-digest", "", "digest for non-bcrypt salts, e.g. sha1")
	pf.Bool("disable-blowfish", false, "hash new credentials with the legacy digest")
	pf.Bool("rehash-on-login", false, "upgrade legacy credentials after a successful login")
	pf.String("device", entropy.DefaultDevice, "random device used after getrandom")
	pf.String("store", "memory", "credential store: memory, file, sqlite or redis")
	pf.String("dsn", "", "store location: file path or redis:// URL")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "console", "log format: console or json")

	root.AddCommand(
		newHashCommand(a),
		newVerifyCommand(a),
		newInfoCommand(a),
		newGenerateCommand(a),
		newRandomCommand(a),
		newProbeCommand(a),
		newKeygenCommand(a),
		newUserCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := BindFlagsToViper(cmd, a.v); err != nil {
		return err
	}
	cfg, err := config.FromViper(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.src = entropy.New(cfg.EntropyOptions(a.logger)...)
	a.hasher, err = hashing.NewHasher(cfg.HasherOptions(a.src, a.logger))
	if err != nil {
		return fmt.Errorf("create hasher: %w", err)
	}
	a.gen = passgen.New(a.src, passgen.WithLogger(a.logger))

	a.logger.Debug("configuration loaded",
		zap.String("config_file", a.cfgFile),
		zap.String("store", cfg.Store.Driver),
		zap.Int("cost", cfg.Auth.Cost),
		zap.Bool("blowfish", a.hasher.SupportsBlowfish()),
	)
	return nil
}

// BindFlagsToViper binds every flag of cmd that has a configuration key to
// that key in v.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, ErrMismatch) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
