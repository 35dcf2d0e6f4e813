package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientsEndpoints(t *testing.T) {
	t.Parallel()

	createBody := `{
		"name": "dashboard",
		"scopes": ["profile:read"],
		"redirect_uris": ["https://dash.example/cb"],
		"grant_types": ["authorization_code"],
		"confidential": true
	}`

	t.Run("create returns the secret exactly once", func(t *testing.T) {
		env := newTestEnv(t)

		req := newJSONRequest(t, http.MethodPost, "/v1/clients", createBody)
		req.Header.Set("Authorization", "Bearer "+testBootstrapToken)
		rec := serve(env, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created clientResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.NotEmpty(t, created.ID)
		require.NotEmpty(t, created.Secret)
		require.True(t, created.Confidential)

		// The listing never echoes secrets.
		req = newJSONRequest(t, http.MethodGet, "/v1/clients", "")
		req.Header.Set("Authorization", "Bearer "+testBootstrapToken)
		rec = serve(env, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var listed []clientResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		require.Len(t, listed, 1)
		require.Equal(t, created.ID, listed[0].ID)
		require.Empty(t, listed[0].Secret)
	})

	t.Run("delete removes the client", func(t *testing.T) {
		env := newTestEnv(t)
		c := env.seedConfidentialClient(t)

		req := newJSONRequest(t, http.MethodDelete, "/v1/clients/"+c.ID, "")
		req.Header.Set("Authorization", "Bearer "+testBootstrapToken)
		rec := serve(env, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req = newJSONRequest(t, http.MethodGet, "/v1/clients", "")
		req.Header.Set("Authorization", "Bearer "+testBootstrapToken)
		rec = serve(env, req)

		var listed []clientResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		require.Empty(t, listed)
	})

	t.Run("wrong bootstrap token forbidden", func(t *testing.T) {
		env := newTestEnv(t)

		req := newJSONRequest(t, http.MethodPost, "/v1/clients", createBody)
		req.Header.Set("Authorization", "Bearer not-it")
		rec := serve(env, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("disabled when no bootstrap token configured", func(t *testing.T) {
		env := newTestEnv(t)
		env.router.BootstrapToken = ""
		env.router.Mux = http.NewServeMux()
		env.router.ApplyRoutes()

		req := newJSONRequest(t, http.MethodGet, "/v1/clients", "")
		rec := serve(env, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
