// Package app собирает зависимости клиента. Все сервисы создаются явно
// и передаются потребителям, глобального состояния нет.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/banktech/internal/client/api"
	"github.com/iudanet/banktech/internal/client/auth"
	"github.com/iudanet/banktech/internal/client/balance"
	"github.com/iudanet/banktech/internal/client/banking"
	"github.com/iudanet/banktech/internal/client/storage/boltdb"
	"github.com/iudanet/banktech/internal/config"
	"github.com/iudanet/banktech/internal/crdt"
)

// App набор сервисов одного процесса клиента
type App struct {
	Logger  *slog.Logger
	Storage *boltdb.Storage
	API     *api.Client
	Tokens  *auth.TokenStore
	Session *auth.Controller
	Balance *balance.Reconciler
	Banking *banking.Service
}

// Option настраивает App при создании
type Option func(*options)

type options struct {
	controller []auth.ControllerOption
	listeners  []auth.Listener
}

// WithControllerOptions передает дополнительные опции контроллеру сессии
func WithControllerOptions(opts ...auth.ControllerOption) Option {
	return func(o *options) {
		o.controller = append(o.controller, opts...)
	}
}

// WithSessionListener подписывает на смену состояния сессии
func WithSessionListener(l auth.Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// New открывает хранилище и связывает сервисы
func New(ctx context.Context, cfg *config.Client, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a, err := wire(ctx, cfg, logger, store, o)
	if err != nil {
		if cerr := store.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg *config.Client, logger *slog.Logger, store *boltdb.Storage, o options) (*App, error) {
	// 1. Хранилище токенов, с шифрованием если задана ключевая фраза
	storeOpts := []auth.StoreOption{auth.WithStoreLogger(logger)}
	if cfg.StorePassphrase != "" {
		cipher, err := auth.LoadCipher(ctx, store, cfg.StorePassphrase)
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, auth.WithCipher(cipher))
	}
	tokens := auth.NewTokenStore(store, storeOpts...)

	// 2. API клиент берет bearer token из хранилища на каждый запрос
	apiClient := api.NewClient(cfg.Server,
		api.WithTokenSource(tokens),
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	)

	// 3. Часы Лампорта с идентификатором устройства
	nodeID, err := auth.LoadNodeID(ctx, store)
	if err != nil {
		return nil, err
	}
	clock := crdt.NewLamportClockWithNodeID(nodeID)

	// 4. Контроллер сессии; после выхода значения баланса этого процесса забываются
	var reconciler *balance.Reconciler
	controllerOpts := []auth.ControllerOption{
		auth.WithLogger(logger),
		auth.WithListener(func(e auth.Event) {
			if e.State == auth.StateLoggedOut && reconciler != nil {
				reconciler.Reset()
			}
		}),
	}
	for _, l := range o.listeners {
		controllerOpts = append(controllerOpts, auth.WithListener(l))
	}
	controllerOpts = append(controllerOpts, o.controller...)
	session := auth.NewController(apiClient, tokens, controllerOpts...)

	// 5. Баланс и операции
	reconciler = balance.NewReconciler(apiClient, session, clock, balance.WithLogger(logger))
	bank := banking.NewService(apiClient, session, reconciler, logger)

	return &App{
		Logger:  logger,
		Storage: store,
		API:     apiClient,
		Tokens:  tokens,
		Session: session,
		Balance: reconciler,
		Banking: bank,
	}, nil
}

// Close останавливает таймер обновления и закрывает хранилище.
// Сохраненная сессия остается для следующего запуска.
func (a *App) Close() error {
	a.Session.Close()
	if err := a.Storage.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
