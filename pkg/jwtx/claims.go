package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims grantd embeds when the JWT token
// handler is wired. Additive changes only, to preserve compatibility.
type Claims struct {
	jwt.RegisteredClaims

	// ClientID of the client the token was issued to.
	ClientID string `json:"client_id,omitempty"`

	// Scope is the space-joined list of granted scopes.
	Scope string `json:"scope,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an issued token.
func NewAccessClaims(issuer, clientID, scope string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   clientID,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		ClientID: clientID,
		Scope:    scope,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in no state to issue
		// tokens at all.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
