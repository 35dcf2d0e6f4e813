// Package signing provides the JWT token handler: it swaps the opaque access
// token minted by the grant components for a signed EdDSA JWT carrying the
// client and scope claims.
package signing

import (
	"context"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/internal/oauth/grant"
	"github.com/stillwater-io/grantd/pkg/jwtx"
)

// NewHandler returns a grant.TokenHandler that replaces the access token
// with a signed JWT. Refresh tokens stay opaque; they are only ever compared
// by fingerprint.
func NewHandler(signer *jwtx.Signer, issuer string) grant.TokenHandler {
	return func(_ context.Context, clientID string, token domain.Token) (domain.Token, error) {
		ttl := time.Duration(token.ExpiresIn) * time.Second
		claims := jwtx.NewAccessClaims(issuer, clientID, token.Scope, ttl, time.Now())

		signed, err := signer.Sign(claims)
		if err != nil {
			return domain.Token{}, err
		}

		token.AccessToken = signed
		return token, nil
	}
}
