package cli

import (
	"github.com/spf13/cobra"
)

func newLoginCmd(app func() *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.Session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			a.Cart.RefreshUI()
			a.View.Header()
			a.View.Message("Login successful")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newRegisterCmd(app func() *App) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.Session.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}
			a.Cart.RefreshUI()
			a.View.Header()
			a.View.Message("Registration successful")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and the cart",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a := app()
			a.Session.Logout()
			a.Cart.RefreshUI()
			a.View.Header()
			return nil
		},
	}
}

func newWhoamiCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a := app()
			a.Refresh()
			user, ok := a.Session.User()
			if !a.Session.IsLoggedIn() || !ok {
				a.View.Message("Not logged in")
				return nil
			}
			a.View.Message("%s <%s>", user.Name, user.Email)
			return nil
		},
	}
}
