package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/internal/oauth/grant"
	"github.com/stillwater-io/grantd/pkg/httpx"
	"github.com/stillwater-io/grantd/pkg/slogx"
)

// AuthorizeHandler serves the authorization endpoint. GET carries the
// request in the query string, POST in a form body; both dispatch on
// response_type to the code or implicit grant.
type AuthorizeHandler struct {
	CodeGrant     *grant.AuthorizationCodeGrant
	ImplicitGrant *grant.ImplicitGrant
}

// HandleGet processes GET /v1/oauth2/authorize.
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, r.URL.Query())
}

// HandlePost processes POST /v1/oauth2/authorize.
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Content-Type must be application/x-www-form-urlencoded.")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed form body.")
		return
	}
	h.process(w, r, r.Form)
}

func (h *AuthorizeHandler) process(w http.ResponseWriter, r *http.Request, params url.Values) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	req := &domain.Request{
		ClientID:     strings.TrimSpace(params.Get("client_id")),
		ResponseType: strings.TrimSpace(params.Get("response_type")),
		RedirectURI:  strings.TrimSpace(params.Get("redirect_uri")),
		Scopes:       httpx.ParseSpaceDelimitedFields(params.Get("scope")),
		State:        params.Get("state"),
		Params:       params,
	}

	var (
		uri  string
		perr *grant.ProtocolError
		err  error
	)
	if req.ResponseType == grant.ResponseTypeToken {
		uri, perr, err = h.ImplicitGrant.CreateAuthorizationResponse(ctx, req)
	} else {
		uri, perr, err = h.CodeGrant.CreateAuthorizationResponse(ctx, req)
	}
	if err != nil {
		log.Error("authorization request failed", "err", err)
		writeServerError(w)
		return
	}

	// Protocol errors ride the redirect like successes do, but only when
	// there is an absolute URI to send the user agent to. Without one the
	// error is returned directly.
	if perr != nil && !grant.IsAbsoluteURI(req.RedirectURI) {
		writeOAuthError(w, http.StatusBadRequest, string(perr.Kind), perr.Description)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, uri, http.StatusFound)
}
