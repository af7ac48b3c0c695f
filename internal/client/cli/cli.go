package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/banktech/internal/client/app"
	"github.com/iudanet/banktech/internal/client/auth"
	"github.com/iudanet/banktech/internal/client/iocli"
	"github.com/iudanet/banktech/internal/config"
)

// annotationNoApp помечает команды, которым не нужны хранилище и сессия
const annotationNoApp = "banktech/no-app"

// ErrNotAuthenticated команда требует входа
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'banktech login' first")

// BuildInfo информация о сборке, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Cli команды клиента. Зависимости создаются в PersistentPreRunE
// и закрываются после выполнения команды.
type Cli struct {
	io      iocli.IO
	app     *app.App
	viper   *viper.Viper
	logger  *slog.Logger
	appOpts []app.Option
	build   BuildInfo
}

// Option настраивает Cli
type Option func(*Cli)

// WithAppOptions передает опции сборки App (в тестах)
func WithAppOptions(opts ...app.Option) Option {
	return func(c *Cli) {
		c.appOpts = append(c.appOpts, opts...)
	}
}

// WithViper задает источник настроек
func WithViper(v *viper.Viper) Option {
	return func(c *Cli) {
		c.viper = v
	}
}

// Execute разбирает args и выполняет команду
func Execute(ctx context.Context, io iocli.IO, build BuildInfo, args []string, opts ...Option) error {
	root, c := newRootCommand(io, build, opts...)
	defer func() {
		if err := c.close(); err != nil && c.logger != nil {
			c.logger.Error("failed to close client", slog.Any("error", err))
		}
	}()

	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCommand создает корневую команду banktech
func newRootCommand(io iocli.IO, build BuildInfo, opts ...Option) (*cobra.Command, *Cli) {
	c := &Cli{
		io:    io,
		build: build,
		viper: config.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:               "banktech",
		Short:             "BankTech command line banking client",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(io)
	config.RegisterClientFlags(root.PersistentFlags())

	root.AddCommand(
		c.newLoginCommand(),
		c.newRegisterCommand(),
		c.newLogoutCommand(),
		c.newStatusCommand(),
		c.newPasswordResetCommand(),
		c.newBalanceCommand(),
		c.newDepositCommand(),
		c.newTransferCommand(),
		c.newTransactionsCommand(),
		c.newPixCommand(),
		c.newBoletoCommand(),
		c.newCardsCommand(),
		c.newNotificationsCommand(),
		c.newTwoFactorCommand(),
		c.newVersionCommand(),
	)

	return root, c
}

// setup читает настройки, открывает хранилище и восстанавливает сессию
func (c *Cli) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[annotationNoApp] != "" {
		return nil
	}

	cfg, err := config.LoadClient(c.viper, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	c.logger = config.NewLogger(os.Stderr, cfg.LogLevel)

	opts := append([]app.Option{app.WithSessionListener(c.onSessionEvent)}, c.appOpts...)
	a, err := app.New(cmd.Context(), cfg, c.logger, opts...)
	if err != nil {
		return err
	}
	c.app = a

	c.app.Session.Restore(cmd.Context())
	return nil
}

// close останавливает таймер обновления и закрывает хранилище
func (c *Cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// onSessionEvent сообщает о принудительном выходе
func (c *Cli) onSessionEvent(e auth.Event) {
	if e.State == auth.StateLoggedOut && e.Err != nil {
		c.io.Println("⚠️  Your session has expired. Please log in again.")
	}
}

// requireSession проверяет вход и обновляет токен, если он почти истек
func (c *Cli) requireSession(ctx context.Context) error {
	if c.app.Session.State() != auth.StateLoggedIn {
		return ErrNotAuthenticated
	}
	if err := c.app.Session.RefreshIfStale(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return nil
}

// promptIfEmpty возвращает значение флага или спрашивает его у пользователя
func (c *Cli) promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return strings.TrimSpace(value), nil
	}
	input, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// passwordIfEmpty как promptIfEmpty, но без эха
func (c *Cli) passwordIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// confirm спрашивает подтверждение, пустой ответ означает отказ
func (c *Cli) confirm(prompt string) (bool, error) {
	answer, err := c.io.ReadInput(prompt + " [y/N]: ")
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return true, nil
	}
	return false, nil
}
