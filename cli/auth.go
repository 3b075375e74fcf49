package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"little_library/api"
)

var errNotSignedIn = errors.New("not signed in")

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and remember the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			if len(args) == 1 {
				email = strings.TrimSpace(args[0])
			} else {
				var err error
				if email, err = a.prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			password, err := a.readPassword(cmd)
			if err != nil {
				return err
			}

			if !a.holder.Login(cmd.Context(), email, password) {
				return fmt.Errorf("login: %w", a.holder.LastError())
			}
			user, _ := a.holder.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.DisplayName())
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register [email]",
		Short: "Create an account and sign in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Email = strings.TrimSpace(args[0])
			} else {
				var err error
				if req.Email, err = a.prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			password, err := a.readPassword(cmd)
			if err != nil {
				return err
			}
			req.Password = password

			if !a.holder.Register(cmd.Context(), req) {
				return fmt.Errorf("register: %w", a.holder.LastError())
			}
			user, _ := a.holder.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", user.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&req.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last", "", "last name")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.holder.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := a.holder.User()
			if !a.holder.Active() || !ok {
				return errNotSignedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.DisplayName(), user.Email)
			return nil
		},
	}
}
