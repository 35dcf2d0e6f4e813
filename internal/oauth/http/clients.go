package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/internal/oauth/store"
	"github.com/stillwater-io/grantd/pkg/cryptox"
	"github.com/stillwater-io/grantd/pkg/httpx"
	"github.com/stillwater-io/grantd/pkg/idx"
	"github.com/stillwater-io/grantd/pkg/slogx"
)

// ClientsHandler serves the client admin endpoints. They are guarded by the
// deployment's bootstrap token rather than OAuth2 itself: the service has no
// clients until someone registers one.
type ClientsHandler struct {
	Store          store.Store
	BootstrapToken string
}

type createClientRequest struct {
	Name         string   `json:"name"`
	Scopes       []string `json:"scopes"`
	RedirectURIs []string `json:"redirect_uris"`
	GrantTypes   []string `json:"grant_types"`
	Confidential bool     `json:"confidential"`
}

type clientResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Scopes       []string  `json:"scopes"`
	RedirectURIs []string  `json:"redirect_uris"`
	GrantTypes   []string  `json:"grant_types"`
	Confidential bool      `json:"confidential"`
	CreatedAt    time.Time `json:"created_at"`

	// Secret is only ever present in the create response; it is not stored
	// in recoverable form.
	Secret string `json:"secret,omitempty"`
}

// HandleCreate registers a new client. Confidential clients get a generated
// secret returned exactly once.
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeOAuthError(w, http.StatusForbidden, "access_denied", "")
		return
	}

	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing client name.")
		return
	}

	client := domain.Client{
		ID:           idx.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Scopes:       req.Scopes,
		RedirectURIs: req.RedirectURIs,
		GrantTypes:   req.GrantTypes,
	}

	var secret string
	if req.Confidential {
		var err error
		secret, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			writeServerError(w)
			return
		}
		client.SecretHash, err = cryptox.HashSecret(secret)
		if err != nil {
			writeServerError(w)
			return
		}
	}

	if err := h.Store.Clients().CreateClient(r.Context(), client); err != nil {
		slogx.FromContext(r.Context()).Error("client create failed", "err", err)
		writeServerError(w)
		return
	}

	resp := toClientResponse(client)
	resp.Secret = secret
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleList returns all registered clients, newest first.
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeOAuthError(w, http.StatusForbidden, "access_denied", "")
		return
	}

	clients, err := h.Store.Clients().ListClients(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("client list failed", "err", err)
		writeServerError(w)
		return
	}

	out := make([]clientResponse, len(clients))
	for i, c := range clients {
		out[i] = toClientResponse(c)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete removes a client and, via schema cascade, its grants and
// tokens.
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeOAuthError(w, http.StatusForbidden, "access_denied", "")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing client id.")
		return
	}

	if err := h.Store.Clients().DeleteClient(r.Context(), id); err != nil {
		slogx.FromContext(r.Context()).Error("client delete failed", "err", err)
		writeServerError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientsHandler) authorized(r *http.Request) bool {
	if h.BootstrapToken == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.BootstrapToken)) == 1
}

func toClientResponse(c domain.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Scopes:       c.Scopes,
		RedirectURIs: c.RedirectURIs,
		GrantTypes:   c.GrantTypes,
		Confidential: !c.Public(),
		CreatedAt:    c.CreatedAt,
	}
}
