package grant

import (
	"context"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
)

// Authority is the client/scope/redirect policy every storage backend must
// implement. The grant components depend only on these interfaces, never on
// a concrete backend.
type Authority interface {
	// ValidateClient reports whether the client exists and may use the
	// given grant type. grantType is empty for authorization-endpoint
	// checks, where only identity matters.
	ValidateClient(ctx context.Context, clientID, grantType string) bool

	// ValidateScopes reports whether every requested scope is allowed for
	// the client.
	ValidateScopes(ctx context.Context, clientID string, scopes []string) bool

	// DefaultScopes returns the scopes granted when a request names none.
	DefaultScopes(ctx context.Context, clientID string) []string

	// ValidateRedirectURI reports whether the redirect URI is registered
	// for the client.
	ValidateRedirectURI(ctx context.Context, clientID, redirectURI string) bool

	// DefaultRedirectURI returns the client's default redirect URI, with
	// ok=false when the client has none.
	DefaultRedirectURI(ctx context.Context, clientID string) (uri string, ok bool)
}

// CodeBackend is the collaborator for the authorization code grant.
type CodeBackend interface {
	Authority

	// ValidateCode checks a presented code at redemption. Implementations
	// must make redemption single-use and atomic: of any concurrent calls
	// for the same code at most one may return true, and a code that was
	// already redeemed must fail here on every later attempt. On detecting
	// reuse the backend should also revoke tokens previously issued from
	// the code.
	ValidateCode(ctx context.Context, clientID, code, redirectURI string) bool

	// CodeScopes resolves the scopes bound to a client+code pair.
	CodeScopes(ctx context.Context, clientID, code string) []string

	// SaveAuthorizationGrant persists a freshly issued code grant. Codes
	// must expire shortly after issuance; a maximum lifetime of 10 minutes
	// is recommended.
	SaveAuthorizationGrant(ctx context.Context, clientID string, g domain.CodeGrant, state string) error

	// SaveIssuedToken persists a token minted at redemption, so downstream
	// validation and revocation have a record to act on. The redeemed code
	// is passed so the backend can link the token to its grant.
	SaveIssuedToken(ctx context.Context, clientID, code string, token domain.Token) error
}

// TokenBackend is the collaborator for the implicit grant.
type TokenBackend interface {
	Authority

	// SaveGrant persists a token issued directly from the authorization
	// endpoint.
	SaveGrant(ctx context.Context, clientID string, token domain.Token, state string) error
}

// TokenHandler transforms or augments a freshly minted token before it is
// returned, e.g. replacing the opaque access token with a signed JWT bound
// to the requesting client. A nil handler leaves tokens untouched.
type TokenHandler func(ctx context.Context, clientID string, token domain.Token) (domain.Token, error)
