package cli

import (
	"github.com/spf13/cobra"

	"github.com/iudanet/banktech/internal/validation"
)

func (c *Cli) newBoletoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boleto",
		Short: "Boleto payments",
	}

	var barcode, amount string
	var yes bool
	pay := &cobra.Command{
		Use:   "pay",
		Short: "Pay a boleto by barcode or digitable line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			barcode, err := c.promptIfEmpty(barcode, "Barcode: ")
			if err != nil {
				return err
			}
			if err := validation.ValidateBarcode(barcode); err != nil {
				return err
			}

			boleto, err := c.app.API.ConsultBoleto(ctx, validation.Digits(barcode))
			if err != nil {
				return err
			}
			if err := c.render(boletoTmpl, boleto); err != nil {
				return err
			}

			// Без --amount платим сумму документа
			value := boleto.Amount
			if amount != "" {
				if value, err = validation.ParseAmount(amount); err != nil {
					return err
				}
			}
			if !value.IsPositive() {
				if value, err = c.parseAmount(""); err != nil {
					return err
				}
			}

			if !yes {
				ok, err := c.confirm("Pay this boleto?")
				if err != nil {
					return err
				}
				if !ok {
					c.io.Println("Payment cancelled")
					return nil
				}
			}

			result, err := c.app.Banking.PayBoleto(ctx, barcode, value)
			if err != nil {
				return err
			}
			return c.render(operationTmpl, operationView{Title: "Boleto paid", Result: result})
		},
	}
	pay.Flags().StringVar(&barcode, "barcode", "", "Barcode (44 digits) or digitable line (47 digits)")
	pay.Flags().StringVar(&amount, "amount", "", "Amount to pay (defaults to the boleto amount)")
	pay.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	history := &cobra.Command{
		Use:   "history",
		Short: "List paid boletos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			boletos, err := c.app.API.BoletoHistory(ctx)
			if err != nil {
				return err
			}
			if len(boletos) == 0 {
				c.io.Println("No boletos paid yet.")
				return nil
			}
			for i := range boletos {
				if err := c.render(boletoTmpl, &boletos[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(pay, history)
	return cmd
}
