package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Accounts.Whoami(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUser(u))
			return nil
		},
	}

	cmd.AddCommand(
		newProfileUpdateCmd(app),
		newProfilePasswordCmd(app),
	)
	return cmd
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var upd domain.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name, username or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			u, err := app.Backend.UpdateProfile(cmd.Context(), cred, upd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Profile updated."))
			if u.ID != "" {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUser(u))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&upd.Username, "username", "", "new username")
	f.StringVar(&upd.Email, "email", "", "new email address")
	f.StringVar(&upd.FirstName, "first-name", "", "new first name")
	f.StringVar(&upd.LastName, "last-name", "", "new last name")
	return cmd
}

func newProfilePasswordCmd(app *App) *cobra.Command {
	var change domain.PasswordChange

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			if app.interactive() && change.New == "" {
				err := app.runForm(cmd, huh.NewGroup(
					passwordInput("Current password", &change.Current),
					passwordInput("New password", &change.New),
					passwordInput("Confirm new password", &change.Confirm),
				))
				if err != nil {
					return err
				}
			}
			if change.Confirm == "" {
				change.Confirm = change.New
			}
			if err := app.Backend.ChangePassword(cmd.Context(), cred, change); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Password changed."))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&change.Current, "current", "", "current password")
	f.StringVar(&change.New, "new", "", "new password")
	f.StringVar(&change.Confirm, "confirm", "", "new password again (defaults to --new)")
	return cmd
}
