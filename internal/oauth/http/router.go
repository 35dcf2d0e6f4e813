// Package http is the transport layer. It parses wire requests into domain
// requests, hands them to the grant components, and maps their outcomes onto
// HTTP status codes and redirects. The grant core itself never sees HTTP.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/grant"
	"github.com/stillwater-io/grantd/internal/oauth/store"
	"github.com/stillwater-io/grantd/pkg/httpx"
	"github.com/stillwater-io/grantd/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	CodeGrant     *grant.AuthorizationCodeGrant
	ImplicitGrant *grant.ImplicitGrant

	// BootstrapToken guards the client admin endpoints. Empty disables them.
	BootstrapToken string
}

func NewRouter(issuer, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerClients()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	authorizeHandler := &AuthorizeHandler{
		CodeGrant:     r.CodeGrant,
		ImplicitGrant: r.ImplicitGrant,
	}
	r.Mux.Handle("GET /v1/oauth2/authorize", http.HandlerFunc(authorizeHandler.HandleGet))
	r.Mux.Handle("POST /v1/oauth2/authorize", http.HandlerFunc(authorizeHandler.HandlePost))

	tokenHandler := &TokenHandler{
		CodeGrant: r.CodeGrant,
		Store:     r.store,
	}
	r.Mux.Handle("POST /v1/oauth2/token", tokenHandler)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{
		Store:          r.store,
		BootstrapToken: r.BootstrapToken,
	}
	r.Mux.Handle("POST /v1/clients", http.HandlerFunc(h.HandleCreate))
	r.Mux.Handle("GET /v1/clients", http.HandlerFunc(h.HandleList))
	r.Mux.Handle("DELETE /v1/clients/{id}", http.HandlerFunc(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/oauth-authorization-server", DiscoveryHandler(r.issuer))
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
