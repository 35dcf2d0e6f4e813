// Package registry adapts the persistence layer to the policy hooks the
// grant components depend on. It owns client lookup, scope and redirect
// policy, code issuance records, and the single-use redemption rule.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/internal/oauth/store"
	"github.com/stillwater-io/grantd/pkg/cryptox"
	"github.com/stillwater-io/grantd/pkg/idx"
	"github.com/stillwater-io/grantd/pkg/slogx"
)

// DefaultGrantTTL is the authorization code lifetime. Codes are meant to be
// redeemed immediately after issuance; ten minutes is the recommended cap.
const DefaultGrantTTL = 10 * time.Minute

var errGrantMismatch = errors.New("registry: grant does not match request")

// Registry implements grant.CodeBackend and grant.TokenBackend on top of a
// store.Store. The boolean hooks fail closed: an infrastructure error is
// logged and reported as a policy denial.
type Registry struct {
	Store    store.Store
	GrantTTL time.Duration
}

// New builds a Registry with the default grant TTL.
func New(s store.Store) *Registry {
	return &Registry{Store: s, GrantTTL: DefaultGrantTTL}
}

func (r *Registry) grantTTL() time.Duration {
	if r.GrantTTL <= 0 {
		return DefaultGrantTTL
	}
	return r.GrantTTL
}

// ValidateClient reports whether the client exists and, when grantType is
// non-empty, whether it is registered for that grant type. Clients with no
// registered grant types are not restricted.
func (r *Registry) ValidateClient(ctx context.Context, clientID, grantType string) bool {
	client, err := r.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("client lookup failed", slog.String("client_id", clientID), slog.Any("error", err))
		}
		return false
	}

	if grantType == "" || len(client.GrantTypes) == 0 {
		return true
	}
	for _, gt := range client.GrantTypes {
		if gt == grantType {
			return true
		}
	}
	return false
}

// ValidateScopes reports whether every requested scope is registered for the
// client.
func (r *Registry) ValidateScopes(ctx context.Context, clientID string, scopes []string) bool {
	client, err := r.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		return false
	}

	allowed := make(map[string]struct{}, len(client.Scopes))
	for _, s := range client.Scopes {
		allowed[s] = struct{}{}
	}
	for _, s := range scopes {
		if _, ok := allowed[s]; !ok {
			return false
		}
	}
	return true
}

// DefaultScopes returns the client's full registered scope set.
func (r *Registry) DefaultScopes(ctx context.Context, clientID string) []string {
	client, err := r.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		return nil
	}
	return client.Scopes
}

// ValidateRedirectURI reports whether the URI is registered for the client.
// Comparison is exact; no prefix or wildcard matching.
func (r *Registry) ValidateRedirectURI(ctx context.Context, clientID, redirectURI string) bool {
	client, err := r.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		return false
	}
	for _, uri := range client.RedirectURIs {
		if uri == redirectURI {
			return true
		}
	}
	return false
}

// DefaultRedirectURI returns the client's registered redirect URI, but only
// when exactly one is registered. With several on file the choice would be
// ambiguous, so the request must name one.
func (r *Registry) DefaultRedirectURI(ctx context.Context, clientID string) (string, bool) {
	client, err := r.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil || len(client.RedirectURIs) != 1 {
		return "", false
	}
	return client.RedirectURIs[0], true
}

// SaveAuthorizationGrant persists a freshly issued code. Only the code's
// fingerprint is stored.
func (r *Registry) SaveAuthorizationGrant(ctx context.Context, clientID string, g domain.CodeGrant, state string) error {
	now := time.Now().UTC()
	return r.Store.AuthorizationGrants().CreateAuthorizationGrant(ctx, domain.AuthorizationGrant{
		ID:          idx.New().String(),
		ClientID:    clientID,
		CodeHash:    cryptox.FingerprintToken(g.Code),
		RedirectURI: g.RedirectURI,
		Scopes:      g.Scopes,
		State:       state,
		ExpiresAt:   now.Add(r.grantTTL()),
		CreatedAt:   now,
	})
}

// ValidateCode redeems a code atomically. The lookup, binding checks and
// consumption run in one transaction so concurrent redemptions of the same
// code race on a single compare-and-set. A replayed code revokes every token
// previously minted from its grant.
func (r *Registry) ValidateCode(ctx context.Context, clientID, code, redirectURI string) bool {
	l := slogx.FromContext(ctx)
	now := time.Now()
	hash := cryptox.FingerprintToken(code)

	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		g, err := tx.AuthorizationGrants().GetAuthorizationGrantByCodeHash(ctx, hash)
		if err != nil {
			return err
		}
		if g.ClientID != clientID || g.RedirectURI != redirectURI {
			return errGrantMismatch
		}
		if now.After(g.ExpiresAt) {
			return errGrantMismatch
		}

		err = tx.AuthorizationGrants().MarkAuthorizationGrantUsed(ctx, g.ID)
		if errors.Is(err, store.ErrAlreadyUsed) {
			if rerr := tx.Tokens().RevokeTokensForGrant(ctx, g.ID); rerr != nil {
				return rerr
			}
			l.Warn("authorization code replayed, revoking issued tokens",
				slog.String("client_id", clientID))
			return store.ErrAlreadyUsed
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrAlreadyUsed) && !errors.Is(err, errGrantMismatch) {
			l.Error("code redemption failed", slog.Any("error", err))
		}
		return false
	}
	return true
}

// CodeScopes returns the scopes the code was issued with.
func (r *Registry) CodeScopes(ctx context.Context, clientID, code string) []string {
	g, err := r.Store.AuthorizationGrants().GetAuthorizationGrantByCodeHash(ctx, cryptox.FingerprintToken(code))
	if err != nil || g.ClientID != clientID {
		return nil
	}
	return g.Scopes
}

// SaveIssuedToken records a token minted at redemption, linked to the grant
// it came from so replay detection can revoke it later.
func (r *Registry) SaveIssuedToken(ctx context.Context, clientID, code string, token domain.Token) error {
	g, err := r.Store.AuthorizationGrants().GetAuthorizationGrantByCodeHash(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		return err
	}
	return r.Store.Tokens().CreateToken(ctx, r.tokenRecord(clientID, g.ID, token))
}

// SaveGrant records a token issued directly from the authorization endpoint
// (implicit grant). There is no backing code, so no grant linkage.
func (r *Registry) SaveGrant(ctx context.Context, clientID string, token domain.Token, _ string) error {
	return r.Store.Tokens().CreateToken(ctx, r.tokenRecord(clientID, "", token))
}

func (r *Registry) tokenRecord(clientID, grantID string, token domain.Token) domain.IssuedToken {
	var refreshHash string
	if token.RefreshToken != "" {
		refreshHash = cryptox.FingerprintToken(token.RefreshToken)
	}
	return domain.IssuedToken{
		ID:               idx.New().String(),
		ClientID:         clientID,
		GrantID:          grantID,
		AccessTokenHash:  cryptox.FingerprintToken(token.AccessToken),
		RefreshTokenHash: refreshHash,
		Scope:            token.Scope,
		ExpiresAt:        time.Now().UTC().Add(time.Duration(token.ExpiresIn) * time.Second),
	}
}
