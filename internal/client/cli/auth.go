package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/banktech/internal/client/auth"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/validation"
)

func (c *Cli) newLoginCommand() *cobra.Command {
	var email, password, code string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c.io.Println("=== Login ===")
			c.io.Println()

			email, err := c.promptIfEmpty(email, "Email: ")
			if err != nil {
				return err
			}
			password, err := c.passwordIfEmpty(password, "Password: ")
			if err != nil {
				return err
			}

			var result *auth.LoginResult
			if code != "" {
				result, err = c.app.Session.LoginWith2FA(ctx, email, password, code)
			} else {
				result, err = c.app.Session.Login(ctx, email, password)
				// Сервер требует второй фактор: спрашиваем код и повторяем вход
				if auth.IsTwoFactorRequired(err) {
					code, err = c.io.ReadInput("2FA code: ")
					if err != nil {
						return fmt.Errorf("failed to read code: %w", err)
					}
					result, err = c.app.Session.LoginWith2FA(ctx, email, password, code)
				}
			}
			if err != nil {
				return err
			}

			c.io.Println()
			c.io.Println("✓ Login successful!")
			c.printSessionUser(result.Session)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (not recommended, prompts when empty)")
	cmd.Flags().StringVar(&code, "code", "", "Two-factor authentication code")
	return cmd
}

func (c *Cli) newRegisterCommand() *cobra.Command {
	var form validation.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.io.Println("=== Registration ===")
			c.io.Println()

			var err error
			if form.Name, err = c.promptIfEmpty(form.Name, "Full name: "); err != nil {
				return err
			}
			if form.Email, err = c.promptIfEmpty(form.Email, "Email: "); err != nil {
				return err
			}
			if form.CPF, err = c.promptIfEmpty(form.CPF, "CPF (optional): "); err != nil {
				return err
			}
			if form.Phone, err = c.promptIfEmpty(form.Phone, "Phone (optional): "); err != nil {
				return err
			}
			if form.Password, err = c.passwordIfEmpty(form.Password, "Password: "); err != nil {
				return err
			}
			if form.ConfirmPassword == "" {
				if form.ConfirmPassword, err = c.io.ReadPassword("Confirm password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}

			result, err := c.app.Session.Register(cmd.Context(), form)
			if err != nil {
				return err
			}

			c.io.Println()
			c.io.Println("✓ Registration successful!")
			if form.CPF != "" {
				c.io.Printf("CPF:      %s\n", validation.MaskCPF(form.CPF))
			}
			c.printSessionUser(result.Session)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email")
	cmd.Flags().StringVar(&form.CPF, "cpf", "", "CPF")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "Phone number with area code")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (not recommended, prompts when empty)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password confirmation")
	return cmd
}

func (c *Cli) printSessionUser(session *models.Session) {
	if session == nil || session.User == nil {
		return
	}
	c.io.Printf("Name:     %s\n", session.User.Name)
	c.io.Printf("Email:    %s\n", session.User.Email)
	if acc := session.User.Account; acc != nil {
		c.io.Printf("Account:  %s / %s\n", acc.AgencyNumber, acc.AccountNumber)
	}
	c.io.Println()
	c.io.Println("Your session has been saved.")
}

func (c *Cli) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wasLoggedIn := c.app.Session.State() == auth.StateLoggedIn
			c.app.Session.Logout(cmd.Context())

			if wasLoggedIn {
				c.io.Println("✓ Logged out")
			} else {
				c.io.Println("Not logged in")
			}
			return nil
		},
	}
}

// statusView данные для statusTemplate
type statusView struct {
	Session *models.Session
	State   auth.State
}

func (c *Cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			view := statusView{State: c.app.Session.State()}
			if session, ok := c.app.Session.Session(ctx); ok {
				view.Session = session
			}
			if err := c.render(statusTmpl, view); err != nil {
				return err
			}

			if view.Session == nil {
				c.io.Println()
				c.io.Println("Run 'banktech login' to authenticate.")
			}
			return nil
		},
	}
}

func (c *Cli) newPasswordResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password-reset",
		Short: "Reset a forgotten password",
	}

	var email string
	request := &cobra.Command{
		Use:   "request",
		Short: "Send a reset link to the account email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := c.promptIfEmpty(email, "Email: ")
			if err != nil {
				return err
			}
			if err := validation.ValidateEmail(email); err != nil {
				return err
			}
			if err := c.app.API.RequestPasswordReset(cmd.Context(), email); err != nil {
				return err
			}
			c.io.Println("✓ If the email is registered, reset instructions were sent.")
			return nil
		},
	}
	request.Flags().StringVar(&email, "email", "", "Account email")

	var token, password string
	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Set a new password with the reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := c.promptIfEmpty(token, "Reset token: ")
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = c.io.ReadPassword("New password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				confirmation, err := c.io.ReadPassword("Confirm password: ")
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				if err := validation.ValidatePasswordConfirmation(password, confirmation); err != nil {
					return err
				}
			}
			if err := validation.ValidatePassword(password); err != nil {
				return err
			}
			if err := c.app.API.ConfirmPasswordReset(cmd.Context(), token, password); err != nil {
				return err
			}
			c.io.Println("✓ Password changed. You can log in now.")
			return nil
		},
	}
	confirm.Flags().StringVar(&token, "token", "", "Reset token from the email")
	confirm.Flags().StringVar(&password, "password", "", "New password (not recommended, prompts when empty)")

	cmd.AddCommand(request, confirm)
	return cmd
}
