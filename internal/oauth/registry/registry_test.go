package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/internal/oauth/store/drivers/sqlite"
	"github.com/stillwater-io/grantd/pkg/cryptox"
	"github.com/stillwater-io/grantd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return New(s)
}

func seedClient(t *testing.T, r *Registry, mutate func(*domain.Client)) domain.Client {
	t.Helper()

	c := domain.Client{
		ID:           idx.New().String(),
		Name:         "webapp",
		Scopes:       []string{"profile:read", "admin:write"},
		RedirectURIs: []string{"https://app.example/cb"},
		GrantTypes:   []string{"authorization_code"},
	}
	if mutate != nil {
		mutate(&c)
	}
	require.NoError(t, r.Store.Clients().CreateClient(context.Background(), c))
	return c
}

func issueCode(t *testing.T, r *Registry, clientID string) string {
	t.Helper()

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)

	require.NoError(t, r.SaveAuthorizationGrant(context.Background(), clientID, domain.CodeGrant{
		Code:        code,
		RedirectURI: "https://app.example/cb",
		Scopes:      []string{"profile:read"},
	}, "xyz"))
	return code
}

func TestValidateClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRegistry(t)
	c := seedClient(t, r, nil)

	t.Run("known client passes identity check", func(t *testing.T) {
		require.True(t, r.ValidateClient(ctx, c.ID, ""))
	})

	t.Run("unknown client fails", func(t *testing.T) {
		require.False(t, r.ValidateClient(ctx, "missing", ""))
	})

	t.Run("grant type restriction enforced", func(t *testing.T) {
		require.True(t, r.ValidateClient(ctx, c.ID, "authorization_code"))
		require.False(t, r.ValidateClient(ctx, c.ID, "client_credentials"))
	})

	t.Run("no registered grant types means unrestricted", func(t *testing.T) {
		open := seedClient(t, r, func(c *domain.Client) { c.GrantTypes = nil })
		require.True(t, r.ValidateClient(ctx, open.ID, "authorization_code"))
	})
}

func TestScopePolicy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRegistry(t)
	c := seedClient(t, r, nil)

	t.Run("registered scopes accepted", func(t *testing.T) {
		require.True(t, r.ValidateScopes(ctx, c.ID, []string{"profile:read"}))
	})

	t.Run("unregistered scope rejected", func(t *testing.T) {
		require.False(t, r.ValidateScopes(ctx, c.ID, []string{"profile:read", "root:all"}))
	})

	t.Run("defaults are the full registered set", func(t *testing.T) {
		require.Equal(t, []string{"profile:read", "admin:write"}, r.DefaultScopes(ctx, c.ID))
	})
}

func TestRedirectPolicy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRegistry(t)

	t.Run("exact match only", func(t *testing.T) {
		c := seedClient(t, r, nil)
		require.True(t, r.ValidateRedirectURI(ctx, c.ID, "https://app.example/cb"))
		require.False(t, r.ValidateRedirectURI(ctx, c.ID, "https://app.example/cb/extra"))
	})

	t.Run("default only when a single URI is registered", func(t *testing.T) {
		single := seedClient(t, r, nil)
		uri, ok := r.DefaultRedirectURI(ctx, single.ID)
		require.True(t, ok)
		require.Equal(t, "https://app.example/cb", uri)

		multi := seedClient(t, r, func(c *domain.Client) {
			c.RedirectURIs = []string{"https://a.example/cb", "https://b.example/cb"}
		})
		_, ok = r.DefaultRedirectURI(ctx, multi.ID)
		require.False(t, ok)
	})
}

func TestCodeRedemption(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issued code redeems once", func(t *testing.T) {
		r := newTestRegistry(t)
		c := seedClient(t, r, nil)
		code := issueCode(t, r, c.ID)

		require.Equal(t, []string{"profile:read"}, r.CodeScopes(ctx, c.ID, code))
		require.True(t, r.ValidateCode(ctx, c.ID, code, "https://app.example/cb"))
		require.False(t, r.ValidateCode(ctx, c.ID, code, "https://app.example/cb"))
	})

	t.Run("replay revokes tokens issued from the grant", func(t *testing.T) {
		r := newTestRegistry(t)
		c := seedClient(t, r, nil)
		code := issueCode(t, r, c.ID)

		require.True(t, r.ValidateCode(ctx, c.ID, code, "https://app.example/cb"))

		token := domain.Token{AccessToken: "minted-access", ExpiresIn: 3600, Scope: "profile:read"}
		require.NoError(t, r.SaveIssuedToken(ctx, c.ID, code, token))

		// Replay the consumed code; the stored token must be burned.
		require.False(t, r.ValidateCode(ctx, c.ID, code, "https://app.example/cb"))

		rec, err := r.Store.Tokens().GetTokenByAccessHash(ctx, cryptox.FingerprintToken("minted-access"))
		require.NoError(t, err)
		require.True(t, rec.Revoked)
	})

	t.Run("wrong client or redirect binding fails", func(t *testing.T) {
		r := newTestRegistry(t)
		c := seedClient(t, r, nil)
		other := seedClient(t, r, nil)
		code := issueCode(t, r, c.ID)

		require.False(t, r.ValidateCode(ctx, other.ID, code, "https://app.example/cb"))
		require.False(t, r.ValidateCode(ctx, c.ID, code, "https://evil.example/cb"))

		// Binding failures must not consume the code.
		require.True(t, r.ValidateCode(ctx, c.ID, code, "https://app.example/cb"))
	})

	t.Run("expired code fails", func(t *testing.T) {
		r := newTestRegistry(t)
		c := seedClient(t, r, nil)

		code, err := cryptox.GenerateToken(cryptox.TokenSize128)
		require.NoError(t, err)
		require.NoError(t, r.Store.AuthorizationGrants().CreateAuthorizationGrant(ctx, domain.AuthorizationGrant{
			ID:          idx.New().String(),
			ClientID:    c.ID,
			CodeHash:    cryptox.FingerprintToken(code),
			RedirectURI: "https://app.example/cb",
			Scopes:      []string{"profile:read"},
			ExpiresAt:   time.Now().Add(-time.Minute),
		}))

		require.False(t, r.ValidateCode(ctx, c.ID, code, "https://app.example/cb"))
	})

	t.Run("unknown code fails", func(t *testing.T) {
		r := newTestRegistry(t)
		c := seedClient(t, r, nil)
		require.False(t, r.ValidateCode(ctx, c.ID, "not-a-code", "https://app.example/cb"))
	})
}

func TestTokenRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("redeemed tokens are linked to their grant", func(t *testing.T) {
		r := newTestRegistry(t)
		c := seedClient(t, r, nil)
		code := issueCode(t, r, c.ID)

		token := domain.Token{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600, Scope: "profile:read"}
		require.NoError(t, r.SaveIssuedToken(ctx, c.ID, code, token))

		rec, err := r.Store.Tokens().GetTokenByAccessHash(ctx, cryptox.FingerprintToken("access"))
		require.NoError(t, err)
		require.NotEmpty(t, rec.GrantID)
		require.Equal(t, cryptox.FingerprintToken("refresh"), rec.RefreshTokenHash)
		require.Equal(t, "profile:read", rec.Scope)
	})

	t.Run("implicit tokens have no grant linkage", func(t *testing.T) {
		r := newTestRegistry(t)
		c := seedClient(t, r, nil)

		token := domain.Token{AccessToken: "implicit-access", ExpiresIn: 3600, Scope: "profile:read"}
		require.NoError(t, r.SaveGrant(ctx, c.ID, token, "xyz"))

		rec, err := r.Store.Tokens().GetTokenByAccessHash(ctx, cryptox.FingerprintToken("implicit-access"))
		require.NoError(t, err)
		require.Empty(t, rec.GrantID)
		require.Empty(t, rec.RefreshTokenHash)
	})
}
