package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/internal/oauth/grant"
	"github.com/stillwater-io/grantd/internal/oauth/store"
	"github.com/stillwater-io/grantd/pkg/cryptox"
	"github.com/stillwater-io/grantd/pkg/httpx"
	"github.com/stillwater-io/grantd/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token.
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
// Confidential clients must authenticate with their secret before the grant
// core ever sees the request; the core itself is authentication-agnostic.
type TokenHandler struct {
	CodeGrant *grant.AuthorizationCodeGrant
	Store     store.Store
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Content-Type must be application/x-www-form-urlencoded.")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed form body.")
		return
	}

	clientID := strings.TrimSpace(r.Form.Get("client_id"))
	clientSecret := r.Form.Get("client_secret")
	if clientID == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing client_id parameter.")
		return
	}

	// Resolve and authenticate the client before the grant core runs. An
	// unknown client is deferred to the core so the response matches the
	// protocol error model (unauthorized_client).
	var resolved *domain.Client
	client, err := h.Store.Clients().GetClientByID(ctx, clientID)
	switch {
	case err == nil:
		if !client.Public() && (clientSecret == "" || cryptox.VerifySecret(clientSecret, client.SecretHash) != nil) {
			w.Header().Set("WWW-Authenticate", `Basic realm="grantd"`)
			writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "")
			return
		}
		resolved = &client
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Error("client lookup failed", "err", err)
		writeServerError(w)
		return
	}

	req := &domain.Request{
		ClientID:  clientID,
		GrantType: strings.TrimSpace(r.Form.Get("grant_type")),
		State:     r.Form.Get("state"),
		Client:    resolved,
		Params:    r.Form,
	}

	body, perr, err := h.CodeGrant.CreateTokenResponse(ctx, req)
	if err != nil {
		log.Error("token request failed", "err", err)
		writeServerError(w)
		return
	}
	if perr != nil {
		httpx.WriteJSONBody(w, statusForKind(perr.Kind), body)
		return
	}
	httpx.WriteJSONBody(w, http.StatusOK, body)
}
