package grant

import (
	"context"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
)

// Validator runs the shared precondition checks both grant types apply
// before any grant-specific logic. Checks short-circuit on the first
// failure; the order matters because earlier checks are prerequisites for
// later ones, and structural errors take precedence over authorization
// errors.
type Validator struct {
	authority     Authority
	responseTypes map[string]struct{}
}

// NewValidator builds a validator for a server instance supporting the
// given response types (e.g. "code", "token").
func NewValidator(authority Authority, responseTypes ...string) *Validator {
	supported := make(map[string]struct{}, len(responseTypes))
	for _, rt := range responseTypes {
		supported[rt] = struct{}{}
	}
	return &Validator{authority: authority, responseTypes: supported}
}

// Validate checks req against the full authorization-endpoint pipeline. It
// returns nil on success, after which req.Scopes and req.RedirectURI are
// guaranteed populated and valid; the only mutation is filling those two
// defaults. Structural checks run before any collaborator hook is invoked.
func (v *Validator) Validate(ctx context.Context, req *domain.Request) *ProtocolError {
	if req.ClientID == "" {
		return newError(KindInvalidRequest, req.State, "Missing client_id parameter.")
	}
	if req.ResponseType == "" {
		return newError(KindInvalidRequest, req.State, "Missing response_type parameter.")
	}

	if !v.authority.ValidateClient(ctx, req.ClientID, "") {
		return newError(KindUnauthorizedClient, req.State, "")
	}

	if _, ok := v.responseTypes[req.ResponseType]; !ok {
		return newError(KindUnsupportedResponseType, req.State, "")
	}

	if perr := v.resolveScopes(ctx, req); perr != nil {
		return perr
	}
	return v.resolveRedirectURI(ctx, req)
}

// resolveScopes validates requested scopes or fills the client's defaults.
func (v *Validator) resolveScopes(ctx context.Context, req *domain.Request) *ProtocolError {
	if len(req.Scopes) > 0 {
		if !v.authority.ValidateScopes(ctx, req.ClientID, req.Scopes) {
			return newError(KindInvalidScope, req.State, "")
		}
		return nil
	}
	req.Scopes = v.authority.DefaultScopes(ctx, req.ClientID)
	return nil
}

// resolveRedirectURI validates a supplied redirect URI or falls back to the
// client's default. A request-supplied URI must be syntactically absolute
// and registered for the client; with neither a supplied URI nor a default
// the request cannot be answered at all.
func (v *Validator) resolveRedirectURI(ctx context.Context, req *domain.Request) *ProtocolError {
	if req.RedirectURI != "" {
		if !IsAbsoluteURI(req.RedirectURI) {
			return newError(KindInvalidRequest, req.State, "Non absolute redirect URI. See RFC 3986.")
		}
		if !v.authority.ValidateRedirectURI(ctx, req.ClientID, req.RedirectURI) {
			return newError(KindAccessDenied, req.State, "")
		}
		return nil
	}

	uri, ok := v.authority.DefaultRedirectURI(ctx, req.ClientID)
	if !ok || uri == "" {
		return newError(KindAccessDenied, req.State, "")
	}
	req.RedirectURI = uri
	return nil
}
