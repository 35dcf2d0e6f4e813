package domain

import "time"

// CodeGrant is the authorization-code artifact handed back to the client on
// the redirect. Only Code and State appear on the wire; RedirectURI and
// Scopes travel with the grant so the persistence collaborator can enforce
// binding and answer scope resolution at redemption time.
type CodeGrant struct {
	Code  string
	State string

	RedirectURI string
	Scopes      []string
}

// AuthorizationGrant is the stored record of an issued code. Codes are
// single-use: UsedAt is set exactly once, atomically, on first redemption.
type AuthorizationGrant struct {
	ID          string
	ClientID    string
	CodeHash    string // fingerprint of the opaque code, never the code itself
	RedirectURI string
	Scopes      []string
	State       string
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}
