package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *Cli) newCardsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			cards, err := c.app.API.ListCards(ctx)
			if err != nil {
				return err
			}
			return c.render(cardsTmpl, cards)
		},
	}

	cmd.AddCommand(
		c.cardActionCommand("block", "Temporarily block a card", "blocked", c.blockCard),
		c.cardActionCommand("unblock", "Unblock a card", "unblocked", c.unblockCard),
		c.cardActionCommand("cancel", "Cancel a card permanently", "cancelled", c.cancelCard),
	)
	return cmd
}

func (c *Cli) blockCard(ctx context.Context, id string) error   { return c.app.API.BlockCard(ctx, id) }
func (c *Cli) unblockCard(ctx context.Context, id string) error { return c.app.API.UnblockCard(ctx, id) }
func (c *Cli) cancelCard(ctx context.Context, id string) error  { return c.app.API.CancelCard(ctx, id) }

func (c *Cli) cardActionCommand(use, short, done string, action func(context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <card-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			if err := action(ctx, args[0]); err != nil {
				return err
			}
			c.io.Printf("✓ Card %s\n", done)
			return nil
		},
	}
}
