// Package server собирает dev сервер BankTech: хранилище, handlers,
// middleware и HTTP сервер с корректной остановкой.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/banktech/internal/config"
	"github.com/iudanet/banktech/internal/server/handlers"
	"github.com/iudanet/banktech/internal/server/middleware"
	"github.com/iudanet/banktech/internal/server/storage/sqlite"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	tokenCleanupEvery = time.Hour
	authRateWindow    = time.Minute
)

// Server dev сервер
type Server struct {
	store   *sqlite.Storage
	limiter *middleware.RateLimiter
	logger  *slog.Logger
	handler http.Handler
	addr    string
}

// New открывает базу, создает демо данные и собирает роутер
func New(ctx context.Context, cfg *config.Server, logger *slog.Logger, version string) (*Server, error) {
	store, err := sqlite.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := Seed(ctx, store, logger); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to seed storage: %w", err)
	}

	jwtCfg := handlers.JWTConfig{
		Secret:          []byte(cfg.JWTSecret),
		AccessTokenTTL:  cfg.AccessTTL,
		RefreshTokenTTL: cfg.RefreshTTL,
	}
	notifier := handlers.NewNotifier(store, logger)
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, authRateWindow, logger)

	h := routes{
		health:        handlers.NewHealthHandler(logger, store, version),
		auth:          handlers.NewAuthHandler(logger, store, store, store, store, notifier, jwtCfg),
		accounts:      handlers.NewAccountHandler(logger, store, store, store),
		transactions:  handlers.NewTransactionHandler(logger, store, store, notifier),
		pix:           handlers.NewPixHandler(logger, store, store, store, notifier),
		boleto:        handlers.NewBoletoHandler(logger, store, store, notifier),
		cards:         handlers.NewCardHandler(logger, store, store, store, notifier),
		notifications: handlers.NewNotificationHandler(logger, store),
	}

	return &Server{
		store:   store,
		limiter: limiter,
		logger:  logger,
		handler: newRouter(logger, h, jwtCfg, limiter),
		addr:    cfg.Addr,
	}, nil
}

// Handler возвращает корневой handler (используется в тестах через httptest)
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает адрес из настроек до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln. После отмены ctx дожидается
// завершения активных запросов, но не дольше shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.cleanupTokens(gctx)
		return nil
	})

	return g.Wait()
}

// cleanupTokens периодически удаляет истекшие refresh и reset токены
func (s *Server) cleanupTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpiredTokens(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				s.logger.InfoContext(ctx, "expired tokens deleted", slog.Int("count", n))
			}
		}
	}
}

// Close останавливает rate limiter и закрывает базу
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.store.Close()
}
