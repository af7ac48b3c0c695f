package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/banktech/pkg/api"
)

// ErrCodeRateLimited код ответа 429
const ErrCodeRateLimited = "rate_limited"

// writeError отвечает в том же JSON формате, что и handlers
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: code, Message: message})
}
