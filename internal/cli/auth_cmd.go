package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var req domain.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with your email or username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.promptLogin(cmd, &req, "Log in to GNF Invest"); err != nil {
				return err
			}
			saved, err := app.Accounts.Login(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Logged in as "+formatter.Bold(saved.Username)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.EmailOrUsername, "user", "u", "", "email address or username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

// promptLogin fills the missing fields of req from an interactive form.
// Without a terminal the request is left as is and validation reports what
// is missing.
func (a *App) promptLogin(cmd *cobra.Command, req *domain.LoginRequest, title string) error {
	if !a.interactive() || (req.EmailOrUsername != "" && req.Password != "") {
		return nil
	}
	var fields []huh.Field
	if req.EmailOrUsername == "" {
		fields = append(fields, requiredInput("Email or username", "you@example.com", &req.EmailOrUsername).Description(title))
	}
	if req.Password == "" {
		fields = append(fields, passwordInput("Password", &req.Password))
	}
	return a.runForm(cmd, huh.NewGroup(fields...))
}

func newSignupCmd(app *App) *cobra.Command {
	var req domain.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an investor account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() && req.Password == "" {
				err := app.runForm(cmd,
					huh.NewGroup(
						requiredInput("Username", "", &req.Username),
						requiredInput("First name", "", &req.FirstName),
						requiredInput("Last name", "", &req.LastName),
						requiredInput("Email", "you@example.com", &req.Email),
					),
					huh.NewGroup(
						requiredInput("Date of birth", "YYYY-MM-DD", &req.DateOfBirth),
						requiredInput("Address", "", &req.Address),
						requiredInput("Phone", "10 to 15 digits", &req.Phone),
						requiredInput("Country", "", &req.Country),
					),
					huh.NewGroup(
						passwordInput("Password", &req.Password).
							Description("8+ characters with an uppercase letter, a number and one of !@#$%^&*"),
						passwordInput("Confirm password", &req.ConfirmPassword),
					),
				)
				if err != nil {
					return err
				}
			}
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			saved, err := app.Accounts.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Welcome, "+formatter.Bold(saved.Username)+". You are logged in."))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Username, "username", "", "username (3+ characters)")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.DateOfBirth, "dob", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&req.Address, "address", "", "postal address")
	f.StringVar(&req.Phone, "phone", "", "phone number, digits only")
	f.StringVar(&req.Country, "country", "", "country")
	f.StringVarP(&req.Password, "password", "p", "", "password")
	f.StringVar(&req.ConfirmPassword, "confirm-password", "", "password again (defaults to --password)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	var admin, all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roles := []domain.Role{domain.RoleInvestor}
			switch {
			case all:
				roles = []domain.Role{domain.RoleInvestor, domain.RoleAdmin}
			case admin:
				roles = []domain.Role{domain.RoleAdmin}
			}
			names := make([]string, 0, len(roles))
			for _, role := range roles {
				if err := app.Accounts.Logout(cmd.Context(), role); err != nil {
					return err
				}
				names = append(names, string(role))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Logged out ("+strings.Join(names, ", ")+")"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "forget the admin login instead")
	cmd.Flags().BoolVar(&all, "all", false, "forget both logins")
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in investor",
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
}
