package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hasbyte1/go-credential-utils/hashing"
)

type credentialOutput struct {
	Salt      string `yaml:"salt"`
	Hash      string `yaml:"hash"`
	Algorithm string `yaml:"algorithm"`
}

func newHashCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash [password]",
		Short: "Hash a password and print the salt and hash",
		Long: `Hash a password with a new salt and print the resulting credential.
The password is read from standard input when not given as an argument.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readPassword(cmd, args, 0)
			if err != nil {
				return err
			}
			var c hashing.Credential
			if _, err := a.hasher.SetSecret(&c, plain); err != nil {
				return err
			}
			return writeYAML(cmd, credentialOutput{
				Salt:      c.Salt,
				Hash:      c.Hash,
				Algorithm: hashing.DetectAlgorithm(c.Salt, a.cfg.Auth.LegacyDigest).String(),
			})
		},
	}
}

func newVerifyCommand(a *app) *cobra.Command {
	var c hashing.Credential
	cmd := &cobra.Command{
		Use:   "verify --salt SALT --hash HASH [password]",
		Short: "Check a password against a stored salt and hash",
		Long: `Check a password against a stored credential. Prints "match" or
"no match" and exits non-zero on a mismatch. A successful match against a
legacy credential also prints a rotation notice.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readPassword(cmd, args, 0)
			if err != nil {
				return err
			}
			res, err := a.hasher.Matches(c, plain)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Matched {
				fmt.Fprintln(out, "no match")
				return ErrMismatch
			}
			fmt.Fprintln(out, "match")
			if res.ShouldRotate {
				fmt.Fprintln(out, "rotation recommended: password uses a legacy hash")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Salt, "salt", "", "stored salt")
	cmd.Flags().StringVar(&c.Hash, "hash", "", "stored hash")
	_ = cmd.MarkFlagRequired("hash")
	return cmd
}

type infoOutput struct {
	Algorithm   string         `yaml:"algorithm"`
	Params      map[string]any `yaml:"params,omitempty"`
	NeedsRehash bool           `yaml:"needs_rehash"`
}

func newInfoCommand(a *app) *cobra.Command {
	var c hashing.Credential
	cmd := &cobra.Command{
		Use:   "info --salt SALT [--hash HASH]",
		Short: "Describe the algorithm and parameters of a stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := a.hasher.Info(c)
			if err != nil {
				return err
			}
			a.logger.Debug("credential inspected", zap.Stringer("algorithm", info.Algorithm))
			return writeYAML(cmd, infoOutput{
				Algorithm:   info.Algorithm.String(),
				Params:      info.Params,
				NeedsRehash: a.hasher.NeedsRehash(c),
			})
		},
	}
	cmd.Flags().StringVar(&c.Salt, "salt", "", "stored salt")
	cmd.Flags().StringVar(&c.Hash, "hash", "", "stored hash")
	_ = cmd.MarkFlagRequired("salt")
	return cmd
}
