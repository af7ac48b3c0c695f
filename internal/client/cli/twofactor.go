package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/banktech/internal/validation"
)

func (c *Cli) newTwoFactorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "2fa",
		Short: "Manage two-factor authentication",
	}

	enable := &cobra.Command{
		Use:   "enable",
		Short: "Start 2FA setup and show the authenticator secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			setup, err := c.app.API.Enable2FA(ctx)
			if err != nil {
				return err
			}
			return c.render(twoFactorSetupTmpl, setup)
		},
	}

	cmd.AddCommand(
		enable,
		c.twoFactorCodeCommand("verify", "Confirm 2FA setup with a code", "✓ Two-factor authentication enabled", c.verify2FA),
		c.twoFactorCodeCommand("disable", "Disable 2FA", "✓ Two-factor authentication disabled", c.disable2FA),
	)
	return cmd
}

func (c *Cli) verify2FA(ctx context.Context, code string) error {
	return c.app.API.Verify2FA(ctx, code)
}

func (c *Cli) disable2FA(ctx context.Context, code string) error {
	return c.app.API.Disable2FA(ctx, code)
}

func (c *Cli) twoFactorCodeCommand(use, short, done string, action func(context.Context, string) error) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			code, err := c.promptIfEmpty(code, "2FA code: ")
			if err != nil {
				return err
			}
			if err := validation.ValidateTOTPCode(code); err != nil {
				return err
			}
			if err := action(ctx, code); err != nil {
				return fmt.Errorf("2fa %s failed: %w", use, err)
			}
			c.io.Println(done)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Code from the authenticator app")
	return cmd
}
