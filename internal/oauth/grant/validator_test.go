package grant

import (
	"context"
	"testing"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stretchr/testify/require"
)

func newTestValidator(backend *fakeBackend) *Validator {
	return NewValidator(backend, ResponseTypeCode, ResponseTypeToken)
}

func TestValidateStructuralChecksRunFirst(t *testing.T) {
	t.Parallel()

	t.Run("missing client_id fails before any hook", func(t *testing.T) {
		backend := &fakeBackend{}
		v := newTestValidator(backend)

		perr := v.Validate(context.Background(), &domain.Request{
			ResponseType: "code",
			State:        "xyz",
		})

		require.NotNil(t, perr)
		require.Equal(t, KindInvalidRequest, perr.Kind)
		require.Equal(t, "xyz", perr.State)
		require.Empty(t, backend.calls)
	})

	t.Run("missing response_type fails before any hook", func(t *testing.T) {
		backend := &fakeBackend{}
		v := newTestValidator(backend)

		perr := v.Validate(context.Background(), &domain.Request{ClientID: "abc"})

		require.NotNil(t, perr)
		require.Equal(t, KindInvalidRequest, perr.Kind)
		require.Empty(t, backend.calls)
	})
}

func TestValidateClientAndResponseType(t *testing.T) {
	t.Parallel()

	t.Run("rejected client", func(t *testing.T) {
		backend := &fakeBackend{
			validateClientFn: func(string, string) bool { return false },
		}
		v := newTestValidator(backend)

		perr := v.Validate(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "code",
			State:        "xyz",
		})

		require.NotNil(t, perr)
		require.Equal(t, KindUnauthorizedClient, perr.Kind)
		require.Equal(t, "xyz", perr.State)
	})

	t.Run("client check precedes response type support", func(t *testing.T) {
		backend := &fakeBackend{}
		v := NewValidator(backend, ResponseTypeCode)

		perr := v.Validate(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "token",
		})

		require.NotNil(t, perr)
		require.Equal(t, KindUnsupportedResponseType, perr.Kind)
		require.Equal(t, []string{"ValidateClient"}, backend.calls)
	})
}

func TestValidateScopeResolution(t *testing.T) {
	t.Parallel()

	t.Run("requested scopes rejected", func(t *testing.T) {
		backend := &fakeBackend{
			validateScopesFn: func(string, []string) bool { return false },
		}
		v := newTestValidator(backend)

		perr := v.Validate(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "code",
			RedirectURI:  "https://app.example/cb",
			Scopes:       []string{"admin:write"},
		})

		require.NotNil(t, perr)
		require.Equal(t, KindInvalidScope, perr.Kind)
	})

	t.Run("empty scopes populated from defaults", func(t *testing.T) {
		backend := &fakeBackend{
			defaultScopesFn: func(string) []string { return []string{"profile:read", "audit:read"} },
		}
		v := newTestValidator(backend)

		req := &domain.Request{
			ClientID:     "abc",
			ResponseType: "code",
			RedirectURI:  "https://app.example/cb",
		}
		require.Nil(t, v.Validate(context.Background(), req))
		require.Equal(t, []string{"profile:read", "audit:read"}, req.Scopes)
	})
}

func TestValidateRedirectResolution(t *testing.T) {
	t.Parallel()

	t.Run("non absolute redirect URI", func(t *testing.T) {
		backend := &fakeBackend{}
		v := newTestValidator(backend)

		perr := v.Validate(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "code",
			RedirectURI:  "/relative/cb",
			State:        "xyz",
		})

		require.NotNil(t, perr)
		require.Equal(t, KindInvalidRequest, perr.Kind)
		require.Equal(t, "xyz", perr.State)
	})

	t.Run("unregistered redirect URI", func(t *testing.T) {
		backend := &fakeBackend{
			validateRedirectFn: func(string, string) bool { return false },
		}
		v := newTestValidator(backend)

		perr := v.Validate(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "code",
			RedirectURI:  "https://evil.example/cb",
		})

		require.NotNil(t, perr)
		require.Equal(t, KindAccessDenied, perr.Kind)
	})

	t.Run("no redirect URI and no default", func(t *testing.T) {
		backend := &fakeBackend{}
		v := newTestValidator(backend)

		perr := v.Validate(context.Background(), &domain.Request{
			ClientID:     "abc",
			ResponseType: "code",
		})

		require.NotNil(t, perr)
		require.Equal(t, KindAccessDenied, perr.Kind)
	})

	t.Run("absent redirect URI populated from default", func(t *testing.T) {
		backend := &fakeBackend{
			defaultRedirectFn: func(string) (string, bool) { return "https://app.example/default", true },
		}
		v := newTestValidator(backend)

		req := &domain.Request{
			ClientID:     "abc",
			ResponseType: "code",
		}
		require.Nil(t, v.Validate(context.Background(), req))
		require.Equal(t, "https://app.example/default", req.RedirectURI)
	})
}

func TestValidateSuccessLeavesRequestReady(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	v := newTestValidator(backend)

	req := &domain.Request{
		ClientID:     "abc",
		ResponseType: "code",
		RedirectURI:  "https://app.example/cb",
		Scopes:       []string{"profile:read"},
		State:        "xyz",
	}
	require.Nil(t, v.Validate(context.Background(), req))
	require.NotEmpty(t, req.Scopes)
	require.True(t, IsAbsoluteURI(req.RedirectURI))
}
