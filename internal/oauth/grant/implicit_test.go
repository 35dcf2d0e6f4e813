package grant

import (
	"context"
	"net/url"
	"testing"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stretchr/testify/require"
)

func newImplicitGrant(backend *fakeBackend, handler TokenHandler) *ImplicitGrant {
	return NewImplicitGrant(backend, handler, newTestValidator(backend))
}

func TestImplicitCreateAuthorizationResponse(t *testing.T) {
	t.Parallel()

	t.Run("success delivers the token in the fragment", func(t *testing.T) {
		backend := &fakeBackend{}
		g := newImplicitGrant(backend, nil)

		uri, perr, err := g.CreateAuthorizationResponse(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "token",
			RedirectURI:  "https://app.example/cb",
			Scopes:       []string{"profile:read"},
			State:        "xyz",
		})
		require.NoError(t, err)
		require.Nil(t, perr)

		u, err := url.Parse(uri)
		require.NoError(t, err)
		require.Empty(t, u.RawQuery)
		require.NotEmpty(t, u.Fragment)

		frag, err := url.ParseQuery(u.Fragment)
		require.NoError(t, err)
		require.NotEmpty(t, frag.Get("access_token"))
		require.Equal(t, "3600", frag.Get("expires_in"))
		require.Equal(t, "profile:read", frag.Get("scope"))
		require.Equal(t, "xyz", frag.Get("state"))

		require.Len(t, backend.savedImplicit, 1)
		require.Equal(t, frag.Get("access_token"), backend.savedImplicit[0].AccessToken)
	})

	t.Run("implicit tokens carry no refresh token", func(t *testing.T) {
		backend := &fakeBackend{}
		g := newImplicitGrant(backend, nil)

		uri, perr, err := g.CreateAuthorizationResponse(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "token",
			RedirectURI:  "https://app.example/cb",
			Scopes:       []string{"profile:read"},
		})
		require.NoError(t, err)
		require.Nil(t, perr)

		u, err := url.Parse(uri)
		require.NoError(t, err)
		frag, err := url.ParseQuery(u.Fragment)
		require.NoError(t, err)
		require.False(t, frag.Has("refresh_token"))
		require.Empty(t, backend.savedImplicit[0].RefreshToken)
	})

	t.Run("protocol errors land in the fragment, not the query", func(t *testing.T) {
		backend := &fakeBackend{
			validateClientFn: func(string, string) bool { return false },
		}
		g := newImplicitGrant(backend, nil)

		uri, perr, err := g.CreateAuthorizationResponse(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "token",
			RedirectURI:  "https://app.example/cb",
			State:        "xyz",
		})
		require.NoError(t, err)
		require.NotNil(t, perr)
		require.Equal(t, KindUnauthorizedClient, perr.Kind)
		require.Equal(t, "https://app.example/cb#error=unauthorized_client&state=xyz", uri)
		require.Empty(t, backend.savedImplicit)
	})

	t.Run("token handler transform applies before the redirect is built", func(t *testing.T) {
		backend := &fakeBackend{}
		handler := func(_ context.Context, _ string, token domain.Token) (domain.Token, error) {
			token.AccessToken = "signed." + token.AccessToken
			return token, nil
		}
		g := newImplicitGrant(backend, handler)

		uri, perr, err := g.CreateAuthorizationResponse(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "token",
			RedirectURI:  "https://app.example/cb",
			Scopes:       []string{"profile:read"},
		})
		require.NoError(t, err)
		require.Nil(t, perr)

		u, err := url.Parse(uri)
		require.NoError(t, err)
		frag, err := url.ParseQuery(u.Fragment)
		require.NoError(t, err)
		require.Contains(t, frag.Get("access_token"), "signed.")
	})

	t.Run("collaborator save failure is an infrastructure error", func(t *testing.T) {
		backend := &fakeBackend{saveGrantErr: errSaveFailed}
		g := newImplicitGrant(backend, nil)

		uri, perr, err := g.CreateAuthorizationResponse(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "token",
			RedirectURI:  "https://app.example/cb",
			Scopes:       []string{"profile:read"},
		})
		require.ErrorIs(t, err, errSaveFailed)
		require.Nil(t, perr)
		require.Empty(t, uri)
	})
}
