package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/hashing"
)

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage credentials in the configured store",
		Long: `Manage user credentials in the store selected by --store and --dsn.
The memory store does not outlive the process and is only useful for trying
the commands out.`,
	}
	cmd.AddCommand(
		a.userCommand("set USER [password]", "Set a user's password", cobra.RangeArgs(1, 2), runUserSet),
		a.userCommand("login USER [password]", "Authenticate a user", cobra.RangeArgs(1, 2), runUserLogin),
		a.userCommand("reset USER", "Replace a user's password with a generated one", cobra.ExactArgs(1), runUserReset),
		a.userCommand("delete USER", "Remove a user's credential", cobra.ExactArgs(1), runUserDelete),
		a.userCommand("status USER", "Report whether a user's credential needs rehashing", cobra.ExactArgs(1), runUserStatus),
	)
	return cmd
}

type userRunFunc func(cmd *cobra.Command, svc *credentials.Service, args []string) error

// userCommand builds a subcommand that runs fn against a credential service
// on the configured store.
func (a *app) userCommand(use, short string, args cobra.PositionalArgs, fn userRunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			repo, closeRepo, err := a.openRepository()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeRepo(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			svc := credentials.NewService(repo, a.hasher, a.cfg.ServiceConfig(),
				credentials.WithGenerator(a.gen),
				credentials.WithLogger(a.logger),
				credentials.WithNotifier(credentials.NotifierFunc(
					func(_ context.Context, userID string, algo hashing.Algorithm) {
						fmt.Fprintf(cmd.ErrOrStderr(), "user %s should change their password (stored as %s)\n", userID, algo)
					})),
			)
			return fn(cmd, svc, args)
		},
	}
}

func runUserSet(cmd *cobra.Command, svc *credentials.Service, args []string) error {
	plain, err := readPassword(cmd, args, 1)
	if err != nil {
		return err
	}
	changed, err := svc.SetPassword(cmd.Context(), args[0], plain)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintln(cmd.OutOrStdout(), "password updated")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "password unchanged")
	}
	return nil
}

func runUserLogin(cmd *cobra.Command, svc *credentials.Service, args []string) error {
	plain, err := readPassword(cmd, args, 1)
	if err != nil {
		return err
	}
	res, err := svc.Authenticate(cmd.Context(), args[0], plain)
	if errors.Is(err, credentials.ErrInvalidCredentials) {
		fmt.Fprintln(cmd.OutOrStdout(), "invalid credentials")
		return ErrMismatch
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "authenticated")
	if res.ShouldRotate {
		fmt.Fprintln(cmd.OutOrStdout(), "rotation recommended: password uses a legacy hash")
	}
	return nil
}

func runUserReset(cmd *cobra.Command, svc *credentials.Service, args []string) error {
	pw, err := svc.ResetPassword(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pw)
	return nil
}

func runUserDelete(cmd *cobra.Command, svc *credentials.Service, args []string) error {
	if err := svc.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "deleted")
	return nil
}

func runUserStatus(cmd *cobra.Command, svc *credentials.Service, args []string) error {
	stale, err := svc.NeedsRehash(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if stale {
		fmt.Fprintln(cmd.OutOrStdout(), "needs rehash")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "current")
	}
	return nil
}
