package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-credential-utils/passgen"
	"github.com/hasbyte1/go-credential-utils/sealing"
)

func newGenerateCommand(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate passwords under composition rules",
		Long: `Generate passwords that satisfy the configured composition rules.
Each flag overrides the matching passgen.* setting. A maximum of -1 disallows
the class; a max-symbols of 0 allows up to half the length.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			c := a.cfg.PasswordConstraints()
			for range count {
				pw, err := a.gen.Generate(c)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), pw)
			}
			return nil
		},
	}

	d := passgen.DefaultConstraints()
	f := cmd.Flags()
	f.IntVarP(&count, "count", "n", 1, "number of passwords")
	f.Int("min-length", d.MinLength, "minimum length")
	f.Int("max-length", d.MaxLength, "maximum length")
	f.Int("min-upper", d.MinUpper, "minimum uppercase letters")
	f.Int("max-upper", d.MaxUpper, "maximum uppercase letters (0 any, -1 none)")
	f.Int("min-lower", d.MinLower, "minimum lowercase letters")
	f.Int("min-digits", d.MinDigits, "minimum digits")
	f.Int("max-digits", d.MaxDigits, "maximum digits (0 any, -1 none)")
	f.Int("min-symbols", d.MinSymbols, "minimum symbols")
	f.Int("max-symbols", d.MaxSymbols, "maximum symbols (0 up to half, -1 none)")
	f.String("symbols", d.Symbols, "symbol pool")
	f.String("disallow", d.Disallow, "characters never used, case-insensitive")
	return cmd
}

func newRandomCommand(a *app) *cobra.Command {
	var (
		kind   string
		length int
		opts   passgen.AlnumOptions
	)
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random token of letters and/or digits",
		Long: `Print a random token. --kind selects the character classes:
alnum (letters and digits, filtered from entropy source output), digits, or
letters. A --length below 1 picks a random length between 10 and 40.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				s   string
				err error
			)
			switch kind {
			case "alnum":
				s, err = a.gen.RandomAlnum(length, opts)
			case "digits":
				s, err = a.gen.RandomDigits(length, opts)
			case "letters":
				opts.ExcludeDigits = true
				s, err = a.gen.RandomAlnum(length, opts)
			default:
				return fmt.Errorf("unknown --kind %q: want alnum, digits or letters", kind)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "kind", "alnum", "character classes: alnum, digits or letters")
	f.IntVarP(&length, "length", "l", 0, "token length (below 1 for random)")
	f.BoolVar(&opts.Fast, "fast", false, "use the seeded generator instead of the entropy source")
	f.BoolVar(&opts.ExcludeUpper, "no-upper", false, "exclude uppercase letters")
	f.BoolVar(&opts.ExcludeLower, "no-lower", false, "exclude lowercase letters")
	f.StringVar(&opts.Allow, "allow", "", "use exactly these characters")
	f.StringVar(&opts.Disallow, "exclude", "", "characters to leave out")
	return cmd
}

type probeOutput struct {
	Provider  string `yaml:"provider"`
	Available bool   `yaml:"available"`
	Bytes     string `yaml:"bytes"`
}

func newProbeCommand(a *app) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Show the output of every entropy provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 1 {
				return fmt.Errorf("--bytes must be at least 1, got %d", n)
			}
			samples := a.src.Probe(n)
			out := make([]probeOutput, 0, len(samples))
			for _, s := range samples {
				out = append(out, probeOutput{
					Provider:  s.Provider,
					Available: s.Available,
					Bytes:     hex.EncodeToString(s.Bytes),
				})
			}
			return writeYAML(cmd, out)
		},
	}
	cmd.Flags().IntVarP(&n, "bytes", "b", 16, "bytes to request from each provider")
	return cmd
}

func newKeygenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new base64 key for store.encryption_key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), sealing.EncodeKey(sealing.GenerateKey(a.src)))
			return nil
		},
	}
}
