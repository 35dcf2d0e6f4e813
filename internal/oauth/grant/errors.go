// Package grant implements the OAuth2 authorization-grant decision core:
// request validation and response assembly for the authorization code and
// implicit grants. It performs no I/O of its own; client policy, code
// registries, and token persistence are collaborator interfaces supplied by
// the caller.
package grant

import "encoding/json"

// ErrorKind is one of the closed set of protocol error codes. The value is
// the machine-readable code that goes on the wire.
type ErrorKind string

const (
	// KindInvalidRequest signals a malformed or missing required parameter.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindUnauthorizedClient signals a failed client identity or authority check.
	KindUnauthorizedClient ErrorKind = "unauthorized_client"
	// KindUnsupportedResponseType signals a response_type this server does not handle.
	KindUnsupportedResponseType ErrorKind = "unsupported_response_type"
	// KindInvalidScope signals scopes rejected by the scope authority.
	KindInvalidScope ErrorKind = "invalid_scope"
	// KindAccessDenied signals a rejected redirect URI, or that no default
	// redirect URI is available.
	KindAccessDenied ErrorKind = "access_denied"
	// KindUnsupportedGrantType signals a token-endpoint grant_type other
	// than authorization_code.
	KindUnsupportedGrantType ErrorKind = "unsupported_grant_type"
	// KindInvalidGrant signals a code that is unknown, expired, already
	// redeemed, or bound to a different client or redirect URI.
	KindInvalidGrant ErrorKind = "invalid_grant"
)

// ProtocolError is a protocol failure carried up the call chain as a value.
// State is echoed back verbatim so clients can correlate the failure with
// the request that caused it. Immutable once constructed.
type ProtocolError struct {
	Kind        ErrorKind
	Description string
	State       string
}

func (e *ProtocolError) Error() string {
	if e.Description == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Description
}

// Params returns the redirect serialization: ordered (key, value) pairs
// suitable for query or fragment encoding. The error code always comes
// first; description and state follow only when present.
func (e *ProtocolError) Params() []Param {
	params := []Param{{Key: "error", Value: string(e.Kind)}}
	if e.Description != "" {
		params = append(params, Param{Key: "error_description", Value: e.Description})
	}
	if e.State != "" {
		params = append(params, Param{Key: "state", Value: e.State})
	}
	return params
}

// JSON returns the body serialization used by the token endpoint.
func (e *ProtocolError) JSON() []byte {
	body, err := json.Marshal(struct {
		Error       string `json:"error"`
		Description string `json:"error_description,omitempty"`
		State       string `json:"state,omitempty"`
	}{
		Error:       string(e.Kind),
		Description: e.Description,
		State:       e.State,
	})
	if err != nil {
		// Three plain string fields cannot fail to marshal.
		panic(err)
	}
	return body
}

func newError(kind ErrorKind, state, description string) *ProtocolError {
	return &ProtocolError{Kind: kind, Description: description, State: state}
}
