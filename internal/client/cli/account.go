package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iudanet/banktech/internal/client/balance"
	"github.com/iudanet/banktech/internal/client/banking"
	"github.com/iudanet/banktech/internal/format"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/validation"
)

// DefaultWatchInterval период опроса баланса в режиме --watch
const DefaultWatchInterval = 30 * time.Second

func (c *Cli) newBalanceCommand() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			if !watch {
				view, err := c.app.Balance.Refresh(ctx)
				c.printBalance(view)
				// Последнее известное значение показано, ошибка не фатальна
				if err != nil && !view.Known() {
					return err
				}
				return nil
			}

			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			c.io.Printf("Watching balance every %s, press Ctrl+C to stop\n", interval)
			c.app.Balance.Watch(ctx, interval, c.printBalance)
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing the balance until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", DefaultWatchInterval, "Refresh interval for --watch")
	return cmd
}

func (c *Cli) printBalance(view balance.View) {
	line := fmt.Sprintf("Balance: %s", format.BRL(view.Value))
	switch {
	case view.Source == models.BalanceSourcePlaceholder:
		line = "Balance: unavailable"
	case view.Err != nil:
		line += " (offline, last known value)"
	}
	c.io.Println(line)
}

// parseAmount разбирает сумму из флага или спрашивает ее
func (c *Cli) parseAmount(value string) (decimal.Decimal, error) {
	value, err := c.promptIfEmpty(value, "Amount (R$): ")
	if err != nil {
		return decimal.Zero, err
	}
	return validation.ParseAmount(value)
}

// operationView данные для operationTemplate
type operationView struct {
	Result *banking.Result
	Title  string
}

func (c *Cli) newDepositCommand() *cobra.Command {
	var amount string
	var in banking.DepositInput

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit money into an account (own account by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			if err := c.ensureAccount(ctx); err != nil {
				return err
			}

			var err error
			if in.Amount, err = c.parseAmount(amount); err != nil {
				return err
			}

			result, err := c.app.Banking.Deposit(ctx, in)
			if err != nil {
				return err
			}
			return c.render(operationTmpl, operationView{Title: "Deposit completed", Result: result})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 100,50")
	cmd.Flags().StringVar(&in.Agency, "agency", "", "Agency number (defaults to own account)")
	cmd.Flags().StringVar(&in.Account, "account", "", "Account number (defaults to own account)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	return cmd
}

func (c *Cli) newTransferCommand() *cobra.Command {
	var amount string
	var in banking.TransferInput

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer money to another account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			if err := c.ensureAccount(ctx); err != nil {
				return err
			}

			var err error
			if in.ToAccountNumber, err = c.promptIfEmpty(in.ToAccountNumber, "To account: "); err != nil {
				return err
			}
			if in.Amount, err = c.parseAmount(amount); err != nil {
				return err
			}

			result, err := c.app.Banking.Transfer(ctx, in)
			if err != nil {
				return err
			}
			return c.render(operationTmpl, operationView{Title: "Transfer completed", Result: result})
		},
	}

	cmd.Flags().StringVar(&in.ToAccountNumber, "to", "", "Destination account number")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 100,50")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	return cmd
}

// ensureAccount загружает счет, если в снимке сессии его еще нет
func (c *Cli) ensureAccount(ctx context.Context) error {
	session, ok := c.app.Session.Session(ctx)
	if ok && session.User != nil && session.User.Account != nil {
		return nil
	}
	if _, err := c.app.Balance.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

func (c *Cli) newTransactionsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"history"},
		Short:   "List recent transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			txs, err := c.app.API.ListTransactions(ctx, limit)
			if err != nil {
				return err
			}
			return c.render(transactionsTmpl, txs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of transactions")
	return cmd
}
