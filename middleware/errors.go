package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/multiAuth/autherr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// WriteError answers r with the status and public message of err. Internal
// errors are logged with their full text and reported as
// "Internal server error".
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := autherr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	WriteJSON(w, status, ErrorBody{Message: autherr.PublicMessage(err), StatusCode: status})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
