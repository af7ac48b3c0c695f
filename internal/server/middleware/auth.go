package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/banktech/internal/server/handlers"
	"github.com/iudanet/banktech/pkg/api"
)

// AuthMiddleware создает middleware для проверки JWT access token.
// Данные из token кладутся в контекст через handlers.WithUser.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "missing Authorization header", slog.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "missing access token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.WarnContext(ctx, "invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "invalid token format")
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, parts[1])
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "invalid or expired access token")
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", claims.UserID))

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(ctx, claims.UserID, claims.Email)))
		})
	}
}
