package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/bookshelf/internal/ctxkeys"
)

const (
	msgTokenRequired = "Authorization token is required"
	msgTokenInvalid  = "Token expired or invalid"
)

// TokenVerifier resolves a bearer token to the user id it was issued for
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireToken rejects requests without a valid bearer token and stores the
// authenticated user id in the request context
func RequireToken(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				writeMessage(w, http.StatusUnauthorized, msgTokenRequired)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeMessage(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil {
				slog.Debug("rejected access token", "error", err, "path", r.URL.Path)
				writeMessage(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
