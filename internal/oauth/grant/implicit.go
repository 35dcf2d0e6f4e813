package grant

import (
	"context"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
)

// ResponseTypeToken is the authorization-endpoint response type handled by
// the implicit grant.
const ResponseTypeToken = "token"

// ImplicitGrant orchestrates the implicit flow: shared validation followed
// by direct token issuance on the authorization endpoint. There is no code
// intermediary and no token endpoint involvement.
type ImplicitGrant struct {
	backend   TokenBackend
	handler   TokenHandler
	validator *Validator
}

// NewImplicitGrant wires the grant to its collaborators. handler may be
// nil, in which case issued tokens pass through unchanged.
func NewImplicitGrant(backend TokenBackend, handler TokenHandler, validator *Validator) *ImplicitGrant {
	return &ImplicitGrant{backend: backend, handler: handler, validator: validator}
}

// CreateAuthorizationResponse processes an implicit-grant authorization
// request. Success and protocol errors are both encoded as URI fragment
// parameters, never query parameters: fragments stay in the user agent, so
// tokens cannot end up in intermediate server logs.
func (g *ImplicitGrant) CreateAuthorizationResponse(ctx context.Context, req *domain.Request) (string, *ProtocolError, error) {
	if perr := g.validator.Validate(ctx, req); perr != nil {
		uri, err := AddParamsToURI(req.RedirectURI, perr.Params(), true)
		if err != nil {
			return "", perr, err
		}
		return uri, perr, nil
	}

	token, err := mintToken(req.Scopes, false)
	if err != nil {
		return "", nil, err
	}
	token.State = req.State

	if g.handler != nil {
		token, err = g.handler(ctx, req.ClientID, token)
		if err != nil {
			return "", nil, err
		}
	}

	if err := g.backend.SaveGrant(ctx, req.ClientID, token, req.State); err != nil {
		return "", nil, err
	}

	uri, err := AddParamsToURI(req.RedirectURI, tokenParams(token), true)
	if err != nil {
		return "", nil, err
	}
	return uri, nil, nil
}
