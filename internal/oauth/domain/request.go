package domain

import "net/url"

// Request carries one authorization or token request through the grant
// pipeline. It is populated once from the incoming wire request; the
// validator is the only component that mutates it, and only to fill the
// scope and redirect URI defaults.
type Request struct {
	ClientID     string
	ResponseType string
	RedirectURI  string
	Scopes       []string
	State        string
	GrantType    string
	Code         string

	// Client is the resolved client identity. The transport layer fills it
	// after authenticating the client at the token endpoint; the grant core
	// itself only keys collaborator hooks by ClientID.
	Client *Client

	// Params holds the raw wire parameters. The token-redemption flow reads
	// code and redirect_uri from here rather than from pre-parsed fields.
	Params url.Values
}
