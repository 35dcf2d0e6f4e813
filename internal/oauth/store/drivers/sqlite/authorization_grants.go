package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/internal/oauth/store"
)

type grantsRepo struct {
	db dbtx
}

func (r *grantsRepo) CreateAuthorizationGrant(ctx context.Context, g domain.AuthorizationGrant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO authorization_grants (id, client_id, code_hash, redirect_uri, scopes, state, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.ClientID, g.CodeHash, g.RedirectURI,
		joinFields(g.Scopes), g.State, g.ExpiresAt.UTC(), time.Now().UTC())
	return err
}

func (r *grantsRepo) GetAuthorizationGrantByCodeHash(ctx context.Context, hash string) (domain.AuthorizationGrant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, code_hash, redirect_uri, scopes, state, expires_at, used_at, created_at
		 FROM authorization_grants WHERE code_hash = ?`, hash)

	var (
		g      domain.AuthorizationGrant
		scopes string
		usedAt sql.NullTime
	)
	err := row.Scan(&g.ID, &g.ClientID, &g.CodeHash, &g.RedirectURI, &scopes, &g.State, &g.ExpiresAt, &usedAt, &g.CreatedAt)
	if err != nil {
		return domain.AuthorizationGrant{}, mapNotFound(err)
	}
	g.Scopes = splitFields(scopes)
	g.UsedAt = mapNullTimePtr(usedAt)
	return g, nil
}

// MarkAuthorizationGrantUsed consumes the grant. The used_at guard makes the
// update a compare-and-set: a grant already consumed affects zero rows and
// surfaces as ErrAlreadyUsed.
func (r *grantsRepo) MarkAuthorizationGrantUsed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE authorization_grants SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrAlreadyUsed
	}
	return nil
}

func (r *grantsRepo) DeleteExpiredAuthorizationGrants(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_grants WHERE expires_at < ?`, time.Now().UTC())
	return err
}
