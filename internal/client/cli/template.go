package cli

import (
	"fmt"
	"text/template"

	"github.com/iudanet/banktech/internal/format"
	"github.com/iudanet/banktech/pkg/api"
)

var templateFuncs = template.FuncMap{
	"brl":      format.BRL,
	"signed":   func(tx api.Transaction) string { return format.SignedBRL(&tx) },
	"date":     format.Date,
	"datetime": format.DateTime,
	"maskCard": format.CardNumber,
}

const statusTemplate = `
=== Session Status ===

Status:   {{.State}}
{{- with .Session}}
{{- with .User}}
Name:     {{.Name}}
Email:    {{.Email}}
{{- with .Account}}
Account:  {{.AgencyNumber}} / {{.AccountNumber}}
Balance:  {{brl .Balance}} (last known)
{{- end}}
{{- end}}
Token expires: {{datetime .ExpiresAt}}
{{- end}}
`

const operationTemplate = `
✓ {{.Title}}

Amount:      {{brl .Result.Amount}}
{{- if .Result.Recipient}}
Recipient:   {{.Result.Recipient}}
{{- end}}
{{- if .Result.TransactionID}}
Transaction: {{.Result.TransactionID}}
{{- end}}
{{- if .Result.Status}}
Status:      {{.Result.Status}}
{{- end}}
New balance: {{brl .Result.Balance.Value}}
`

const transactionsTemplate = `
=== Transactions ===
{{range .}}
{{datetime .CreatedAt}}  {{printf "%-13s" .Type}} {{printf "%16s" (signed .)}}  {{.Description}}
{{- else}}
No transactions yet.
{{- end}}
`

const cardsTemplate = `
=== Cards ===
{{range .}}
{{.ID}}  {{.Brand}} {{.Type}}  {{maskCard .CardNumber}}  exp {{.ExpirationDate}}  {{.Status}}
{{- if .IsVirtual}}  (virtual){{end}}
{{- with .Limit}}  limit {{brl .}}{{end}}
{{- else}}
No cards.
{{- end}}
`

const notificationsTemplate = `
=== Notifications ===
{{range .}}
{{if .IsRead}} {{else}}●{{end}} {{datetime .CreatedAt}}  [{{.Type}}] {{.Title}}
    {{.Message}}
    id: {{.ID}}
{{- else}}
No notifications.
{{- end}}
`

const pixKeysTemplate = `
=== PIX Keys ===
{{range .}}
{{.ID}}  {{printf "%-6s" .KeyType}}  {{.KeyValue}}
{{- else}}
No PIX keys registered.
{{- end}}
`

const boletoTemplate = `
=== Boleto ===

Recipient: {{.Recipient}}
Amount:    {{brl .Amount}}
Due date:  {{date .DueDate}}
Status:    {{.Status}}
`

const twoFactorSetupTemplate = `
=== Two-factor authentication setup ===

1. Add this account to your authenticator app:
   {{.QRCode}}

   Or enter the secret manually: {{.Secret}}

2. Confirm with a code from the app:
   banktech 2fa verify --code 123456
`

var (
	statusTmpl         = mustTemplate("status", statusTemplate)
	operationTmpl      = mustTemplate("operation", operationTemplate)
	transactionsTmpl   = mustTemplate("transactions", transactionsTemplate)
	cardsTmpl          = mustTemplate("cards", cardsTemplate)
	notificationsTmpl  = mustTemplate("notifications", notificationsTemplate)
	pixKeysTmpl        = mustTemplate("pixKeys", pixKeysTemplate)
	boletoTmpl         = mustTemplate("boleto", boletoTemplate)
	twoFactorSetupTmpl = mustTemplate("twoFactorSetup", twoFactorSetupTemplate)
)

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}

// render выводит данные по шаблону
func (c *Cli) render(tmpl *template.Template, data any) error {
	if err := tmpl.Execute(c.io, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return nil
}
