package grant

import (
	"context"
	"errors"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
)

var errSaveFailed = errors.New("save failed")

// fakeBackend implements CodeBackend and TokenBackend for tests. Hook
// behaviour defaults to permissive and can be overridden per test; every
// hook invocation is recorded so ordering properties can be asserted.
type fakeBackend struct {
	calls []string

	validateClientFn   func(clientID, grantType string) bool
	validateScopesFn   func(clientID string, scopes []string) bool
	defaultScopesFn    func(clientID string) []string
	validateRedirectFn func(clientID, uri string) bool
	defaultRedirectFn  func(clientID string) (string, bool)
	validateCodeFn     func(clientID, code, redirectURI string) bool
	codeScopesFn       func(clientID, code string) []string

	saveGrantErr error

	savedCodeGrants []domain.CodeGrant
	savedTokens     []domain.Token
	savedImplicit   []domain.Token
}

func (f *fakeBackend) ValidateClient(_ context.Context, clientID, grantType string) bool {
	f.calls = append(f.calls, "ValidateClient")
	if f.validateClientFn != nil {
		return f.validateClientFn(clientID, grantType)
	}
	return true
}

func (f *fakeBackend) ValidateScopes(_ context.Context, clientID string, scopes []string) bool {
	f.calls = append(f.calls, "ValidateScopes")
	if f.validateScopesFn != nil {
		return f.validateScopesFn(clientID, scopes)
	}
	return true
}

func (f *fakeBackend) DefaultScopes(_ context.Context, clientID string) []string {
	f.calls = append(f.calls, "DefaultScopes")
	if f.defaultScopesFn != nil {
		return f.defaultScopesFn(clientID)
	}
	return []string{"profile:read"}
}

func (f *fakeBackend) ValidateRedirectURI(_ context.Context, clientID, uri string) bool {
	f.calls = append(f.calls, "ValidateRedirectURI")
	if f.validateRedirectFn != nil {
		return f.validateRedirectFn(clientID, uri)
	}
	return true
}

func (f *fakeBackend) DefaultRedirectURI(_ context.Context, clientID string) (string, bool) {
	f.calls = append(f.calls, "DefaultRedirectURI")
	if f.defaultRedirectFn != nil {
		return f.defaultRedirectFn(clientID)
	}
	return "", false
}

func (f *fakeBackend) ValidateCode(_ context.Context, clientID, code, redirectURI string) bool {
	f.calls = append(f.calls, "ValidateCode")
	if f.validateCodeFn != nil {
		return f.validateCodeFn(clientID, code, redirectURI)
	}
	return true
}

func (f *fakeBackend) CodeScopes(_ context.Context, clientID, code string) []string {
	f.calls = append(f.calls, "CodeScopes")
	if f.codeScopesFn != nil {
		return f.codeScopesFn(clientID, code)
	}
	return []string{"profile:read"}
}

func (f *fakeBackend) SaveAuthorizationGrant(_ context.Context, _ string, g domain.CodeGrant, _ string) error {
	f.calls = append(f.calls, "SaveAuthorizationGrant")
	if f.saveGrantErr != nil {
		return f.saveGrantErr
	}
	f.savedCodeGrants = append(f.savedCodeGrants, g)
	return nil
}

func (f *fakeBackend) SaveIssuedToken(_ context.Context, _ string, _ string, token domain.Token) error {
	f.calls = append(f.calls, "SaveIssuedToken")
	f.savedTokens = append(f.savedTokens, token)
	return nil
}

func (f *fakeBackend) SaveGrant(_ context.Context, _ string, token domain.Token, _ string) error {
	f.calls = append(f.calls, "SaveGrant")
	if f.saveGrantErr != nil {
		return f.saveGrantErr
	}
	f.savedImplicit = append(f.savedImplicit, token)
	return nil
}
