package cli

import (
	"github.com/spf13/cobra"
)

func (c *Cli) newNotificationsCommand() *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			items, err := c.app.API.ListNotifications(ctx, unread)
			if err != nil {
				return err
			}
			if err := c.render(notificationsTmpl, items); err != nil {
				return err
			}

			count, err := c.app.API.UnreadNotificationCount(ctx)
			if err != nil {
				// счетчик вспомогательный, список уже показан
				c.logger.WarnContext(ctx, "failed to load unread count", "error", err)
				return nil
			}
			c.io.Printf("\nUnread: %d\n", count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "Show only unread notifications")

	var all bool
	read := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark a notification (or all with --all) as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			switch {
			case all:
				if err := c.app.API.MarkAllNotificationsRead(ctx); err != nil {
					return err
				}
				c.io.Println("✓ All notifications marked as read")
			case len(args) == 1:
				if err := c.app.API.MarkNotificationRead(ctx, args[0]); err != nil {
					return err
				}
				c.io.Println("✓ Notification marked as read")
			default:
				return cmd.Usage()
			}
			return nil
		},
	}
	read.Flags().BoolVar(&all, "all", false, "Mark all notifications as read")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			if err := c.app.API.DeleteNotification(ctx, args[0]); err != nil {
				return err
			}
			c.io.Println("✓ Notification deleted")
			return nil
		},
	}

	cmd.AddCommand(read, remove)
	return cmd
}
