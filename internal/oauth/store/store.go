package store

import (
	"context"
	"errors"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrAlreadyUsed   = errors.New("store: already used")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a Tx-scoped variant so multi-step operations like code
// redemption can be made atomic.
type Store interface {
	Clients() Clients
	AuthorizationGrants() AuthorizationGrants
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Prefer this
	// over Tx for anything that must be atomic (e.g. code redemption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// GetClientByID fetches a client for authorization and token decisions.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client (id is ULID; secret_hash may be empty
	// for public clients).
	CreateClient(ctx context.Context, c domain.Client) error

	UpdateClientSecretHash(ctx context.Context, clientID, secretHash string) error
	UpdateClientScopes(ctx context.Context, clientID string, scopes []string) error
	UpdateClientRedirectURIs(ctx context.Context, clientID string, uris []string) error

	// DeleteClient cascades to authorization_grants and tokens (per schema).
	DeleteClient(ctx context.Context, clientID string) error

	// IsEmpty returns true if there are no clients.
	IsEmpty(ctx context.Context) (bool, error)
}

type AuthorizationGrants interface {
	// CreateAuthorizationGrant stores a freshly minted authorization code
	// grant (code_hash is the fingerprint of the opaque code).
	CreateAuthorizationGrant(ctx context.Context, g domain.AuthorizationGrant) error

	// GetAuthorizationGrantByCodeHash fetches a grant by its hashed code
	// when redeeming.
	GetAuthorizationGrantByCodeHash(ctx context.Context, hash string) (domain.AuthorizationGrant, error)

	// MarkAuthorizationGrantUsed consumes a grant. It only succeeds if the
	// grant has not been consumed before; a second attempt returns
	// ErrAlreadyUsed so the caller can treat it as a replay.
	MarkAuthorizationGrantUsed(ctx context.Context, id string) error

	// DeleteExpiredAuthorizationGrants removes grants past their expiry
	// (housekeeping).
	DeleteExpiredAuthorizationGrants(ctx context.Context) error
}

type Tokens interface {
	// CreateToken stores an issued token record (hashes only, never the
	// token material itself).
	CreateToken(ctx context.Context, t domain.IssuedToken) error

	// GetTokenByAccessHash returns the token record by its hashed access
	// token value.
	GetTokenByAccessHash(ctx context.Context, hash string) (domain.IssuedToken, error)

	// RevokeTokensForGrant flips revoked=1 on every token minted from the
	// given grant. Used when a consumed code is presented again.
	RevokeTokensForGrant(ctx context.Context, grantID string) error

	// DeleteExpiredTokens is optional housekeeping.
	DeleteExpiredTokens(ctx context.Context) error
}
