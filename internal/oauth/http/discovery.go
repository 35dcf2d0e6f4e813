package http

import (
	"net/http"

	"github.com/stillwater-io/grantd/pkg/httpx"
)

// serverMetadata is the RFC 8414 authorization server metadata document,
// trimmed to the fields this server actually implements.
type serverMetadata struct {
	Issuer                 string   `json:"issuer"`
	AuthorizationEndpoint  string   `json:"authorization_endpoint"`
	TokenEndpoint          string   `json:"token_endpoint"`
	ResponseTypesSupported []string `json:"response_types_supported"`
	GrantTypesSupported    []string `json:"grant_types_supported"`
}

// DiscoveryHandler serves GET /.well-known/oauth-authorization-server.
func DiscoveryHandler(issuer string) http.HandlerFunc {
	doc := serverMetadata{
		Issuer:                 issuer,
		AuthorizationEndpoint:  issuer + "/v1/oauth2/authorize",
		TokenEndpoint:          issuer + "/v1/oauth2/token",
		ResponseTypesSupported: []string{"code", "token"},
		GrantTypesSupported:    []string{"authorization_code", "implicit"},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, doc)
	}
}
