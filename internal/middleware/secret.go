package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
)

const SecretHeader = "X-Webhook-Secret"

// RequireSecret rejects requests whose X-Webhook-Secret header does not match
// secret. An empty server-side secret rejects everything.
func RequireSecret(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(SecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			ctx := r.Context()
			slog.WarnContext(ctx, "rejected request with invalid secret", "path", r.URL.Path, "secret_configured", secret != "") // #nosec G706

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			resp := map[string]any{
				"success":   false,
				"error":     "unauthorized",
				"requestId": GetRequestID(ctx),
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				slog.ErrorContext(ctx, "failed to encode error response", "error", err)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
