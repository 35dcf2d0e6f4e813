package http

import (
	"net/http"

	"github.com/stillwater-io/grantd/internal/oauth/grant"
	"github.com/stillwater-io/grantd/pkg/httpx"
)

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	httpx.WriteJSON(w, status, errorResponse{Error: code, Description: description})
}

func writeServerError(w http.ResponseWriter) {
	writeOAuthError(w, http.StatusInternalServerError, "server_error", "")
}

// statusForKind maps a protocol error kind to the token-endpoint status code.
// Everything is a 400 bad request except failed client authority, which the
// framework treats as 401.
func statusForKind(kind grant.ErrorKind) int {
	if kind == grant.KindUnauthorizedClient {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}
