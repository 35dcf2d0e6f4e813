package grant

import (
	"context"
	"encoding/json"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/pkg/cryptox"
)

const (
	// ResponseTypeCode is the authorization-endpoint response type handled
	// by the authorization code grant.
	ResponseTypeCode = "code"

	// GrantTypeAuthorizationCode is the only grant_type the token endpoint
	// accepts in this core.
	GrantTypeAuthorizationCode = "authorization_code"
)

// AuthorizationCodeGrant orchestrates the authorization code flow: shared
// validation, code issuance on the authorization endpoint, and code
// redemption on the token endpoint.
type AuthorizationCodeGrant struct {
	backend   CodeBackend
	handler   TokenHandler
	validator *Validator
}

// NewAuthorizationCodeGrant wires the grant to its collaborators. handler
// may be nil, in which case issued tokens pass through unchanged.
func NewAuthorizationCodeGrant(backend CodeBackend, handler TokenHandler, validator *Validator) *AuthorizationCodeGrant {
	return &AuthorizationCodeGrant{backend: backend, handler: handler, validator: validator}
}

// CreateAuthorizationResponse processes an authorization-endpoint request
// and returns the redirect URI the user agent should be sent to. Protocol
// failures are themselves redirects: the error is encoded as query
// parameters on the resolved (or request-supplied) redirect URI, and the
// returned *ProtocolError only tells the transport what happened. A non-nil
// error means a collaborator failed and no redirect could be built.
func (g *AuthorizationCodeGrant) CreateAuthorizationResponse(ctx context.Context, req *domain.Request) (string, *ProtocolError, error) {
	if perr := g.validator.Validate(ctx, req); perr != nil {
		uri, err := AddParamsToURI(req.RedirectURI, perr.Params(), false)
		if err != nil {
			return "", perr, err
		}
		return uri, perr, nil
	}

	codeGrant, err := g.createGrant(req)
	if err != nil {
		return "", nil, err
	}

	if err := g.backend.SaveAuthorizationGrant(ctx, req.ClientID, codeGrant, req.State); err != nil {
		return "", nil, err
	}

	uri, err := AddParamsToURI(req.RedirectURI, grantParams(codeGrant), false)
	if err != nil {
		return "", nil, err
	}
	return uri, nil, nil
}

// CreateTokenResponse redeems an authorization code for a token. The
// response is always a JSON body: the token on success, the protocol error
// otherwise. A non-nil error means a collaborator failed.
func (g *AuthorizationCodeGrant) CreateTokenResponse(ctx context.Context, req *domain.Request) ([]byte, *ProtocolError, error) {
	req.Code = req.Params.Get("code")
	req.RedirectURI = req.Params.Get("redirect_uri")

	if perr := g.ValidateTokenRequest(ctx, req); perr != nil {
		return perr.JSON(), perr, nil
	}

	scopes := g.backend.CodeScopes(ctx, req.ClientID, req.Code)
	token, err := mintToken(scopes, true)
	if err != nil {
		return nil, nil, err
	}

	if g.handler != nil {
		token, err = g.handler(ctx, req.ClientID, token)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := g.backend.SaveIssuedToken(ctx, req.ClientID, req.Code, token); err != nil {
		return nil, nil, err
	}

	body, err := json.Marshal(token)
	if err != nil {
		return nil, nil, err
	}
	return body, nil, nil
}

// ValidateTokenRequest runs the ordered token-endpoint checks. It
// re-resolves the redirect URI through the shared validator before checking
// the code itself: redemption deliberately repeats the authorization-time
// client and redirect checks to block code-for-client substitution.
func (g *AuthorizationCodeGrant) ValidateTokenRequest(ctx context.Context, req *domain.Request) *ProtocolError {
	if req.GrantType != GrantTypeAuthorizationCode {
		return newError(KindUnsupportedGrantType, req.State, "")
	}
	if req.Code == "" {
		return newError(KindInvalidRequest, req.State, "Missing code parameter.")
	}

	if !g.backend.ValidateClient(ctx, req.ClientID, req.GrantType) {
		return newError(KindUnauthorizedClient, req.State, "")
	}

	if perr := g.validator.resolveRedirectURI(ctx, req); perr != nil {
		return perr
	}

	if !g.backend.ValidateCode(ctx, req.ClientID, req.Code, req.RedirectURI) {
		return newError(KindInvalidGrant, req.State, "")
	}
	return nil
}

// createGrant fabricates the code artifact for a validated request. The
// code is an unpredictable opaque token; redirect URI and scopes are copied
// from the request so the backend can bind the code to them.
func (g *AuthorizationCodeGrant) createGrant(req *domain.Request) (domain.CodeGrant, error) {
	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.CodeGrant{}, err
	}
	return domain.CodeGrant{
		Code:        code,
		State:       req.State,
		RedirectURI: req.RedirectURI,
		Scopes:      req.Scopes,
	}, nil
}

// grantParams returns the ordered wire serialization of a code grant: only
// the code and, when supplied, the client's state.
func grantParams(g domain.CodeGrant) []Param {
	params := []Param{{Key: "code", Value: g.Code}}
	if g.State != "" {
		params = append(params, Param{Key: "state", Value: g.State})
	}
	return params
}
