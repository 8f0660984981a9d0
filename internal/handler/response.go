package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/templui/bookshelf/internal/apperror"
)

const msgInternal = "internal server error"

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError is the single place where errors become HTTP responses.
// Only the message of a known kind reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		slog.Error("unhandled error", "error", err, "method", r.Method, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgInternal})
		return
	}

	status := appErr.Kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"kind", appErr.Kind.String(),
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	} else {
		slog.Debug("request rejected", "kind", appErr.Kind.String(), "message", appErr.Message, "path", r.URL.Path)
	}

	message := appErr.Message
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, messageResponse{Message: message})
}
