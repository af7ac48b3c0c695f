package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/banktech/internal/client/banking"
	"github.com/iudanet/banktech/internal/validation"
	pkgapi "github.com/iudanet/banktech/pkg/api"
)

func (c *Cli) newPixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pix",
		Short: "PIX payments and keys",
	}
	cmd.AddCommand(
		c.newPixSendCommand(),
		c.newPixKeysCommand(),
	)
	return cmd
}

// parsePixKeyType разбирает тип ключа без учета регистра
func parsePixKeyType(s string) (pkgapi.PixKeyType, error) {
	keyType := pkgapi.PixKeyType(strings.ToUpper(strings.TrimSpace(s)))
	if !keyType.Valid() {
		return "", &validation.ValidationError{
			Field:   "keyType",
			Message: fmt.Sprintf("unknown PIX key type %q, use CPF, EMAIL, PHONE or RANDOM", s),
		}
	}
	return keyType, nil
}

func (c *Cli) newPixSendCommand() *cobra.Command {
	var keyType, amount string
	var yes bool
	var in banking.PixInput

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a PIX payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			var err error
			if keyType, err = c.promptIfEmpty(keyType, "Key type (CPF, EMAIL, PHONE, RANDOM): "); err != nil {
				return err
			}
			if in.KeyType, err = parsePixKeyType(keyType); err != nil {
				return err
			}
			if in.Key, err = c.promptIfEmpty(in.Key, "PIX key: "); err != nil {
				return err
			}
			if err := validation.ValidatePixKey(in.KeyType, in.Key); err != nil {
				return err
			}
			if in.Amount, err = c.parseAmount(amount); err != nil {
				return err
			}

			// Показываем получателя до отправки
			lookup := in.Key
			if in.KeyType == pkgapi.PixKeyCPF || in.KeyType == pkgapi.PixKeyPhone {
				lookup = validation.Digits(lookup)
			}
			info, err := c.app.API.ConsultPixKey(ctx, lookup)
			if err != nil {
				return err
			}
			c.io.Printf("Recipient: %s", info.Name)
			if info.Bank != "" {
				c.io.Printf(" (%s)", info.Bank)
			}
			c.io.Println()

			if !yes {
				ok, err := c.confirm("Send payment?")
				if err != nil {
					return err
				}
				if !ok {
					c.io.Println("Payment cancelled")
					return nil
				}
			}

			result, err := c.app.Banking.PayPix(ctx, in)
			if err != nil {
				return err
			}
			return c.render(operationTmpl, operationView{Title: "PIX sent", Result: result})
		},
	}

	cmd.Flags().StringVar(&keyType, "key-type", "", "Key type: CPF, EMAIL, PHONE or RANDOM")
	cmd.Flags().StringVar(&in.Key, "key", "", "Recipient PIX key")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 100,50")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (c *Cli) newPixKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List registered PIX keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			keys, err := c.app.API.ListPixKeys(ctx)
			if err != nil {
				return err
			}
			return c.render(pixKeysTmpl, keys)
		},
	}

	var keyType, value string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a PIX key for the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			kt, err := parsePixKeyType(keyType)
			if err != nil {
				return err
			}
			req := pkgapi.CreatePixKeyRequest{KeyType: kt}
			// значение RANDOM генерирует сервер
			if kt != pkgapi.PixKeyRandom {
				if err := validation.ValidatePixKey(kt, value); err != nil {
					return err
				}
				req.KeyValue = value
				if kt == pkgapi.PixKeyCPF || kt == pkgapi.PixKeyPhone {
					req.KeyValue = validation.Digits(value)
				}
			}

			key, err := c.app.API.CreatePixKey(ctx, req)
			if err != nil {
				return err
			}
			c.io.Printf("✓ PIX key registered: %s %s\n", key.KeyType, key.KeyValue)
			return nil
		},
	}
	add.Flags().StringVar(&keyType, "type", "", "Key type: CPF, EMAIL, PHONE or RANDOM")
	add.Flags().StringVar(&value, "value", "", "Key value (not used for RANDOM)")
	_ = add.MarkFlagRequired("type")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a PIX key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			if err := c.app.API.DeletePixKey(ctx, args[0]); err != nil {
				return err
			}
			c.io.Println("✓ PIX key deleted")
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}
