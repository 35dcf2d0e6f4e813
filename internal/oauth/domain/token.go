package domain

import "time"

// Token is the credential issued by a successful grant or redemption. It is
// created fresh each time and never mutated afterwards, except by the
// token-handler collaborator which may wrap or re-sign it.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"` // seconds
	Scope        string `json:"scope"`      // space-joined
	State        string `json:"state,omitempty"`
}

// IssuedToken is the stored record of a token, kept so downstream
// introspection and revocation have something to act on. GrantID links a
// token back to the authorization code it was redeemed from; it is empty for
// implicit-grant tokens.
type IssuedToken struct {
	ID               string
	ClientID         string
	GrantID          string
	AccessTokenHash  string
	RefreshTokenHash string
	Scope            string
	Revoked          bool
	ExpiresAt        time.Time
	CreatedAt        time.Time
}
