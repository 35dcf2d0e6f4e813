package domain

import "time"

// Client is a registered OAuth2 client.
type Client struct {
	ID           string
	Name         string
	SecretHash   string // empty for public clients
	Scopes       []string
	RedirectURIs []string
	GrantTypes   []string // grant types this client may use, e.g. "authorization_code"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public reports whether the client registered without a secret.
func (c Client) Public() bool { return c.SecretHash == "" }
