package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
)

type tokensRepo struct {
	db dbtx
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.IssuedToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (id, client_id, grant_id, access_token_hash, refresh_token_hash, scope, revoked, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientID, mapStringNull(t.GrantID), t.AccessTokenHash,
		mapStringNull(t.RefreshTokenHash), t.Scope, t.Revoked,
		t.ExpiresAt.UTC(), time.Now().UTC())
	return err
}

func (r *tokensRepo) GetTokenByAccessHash(ctx context.Context, hash string) (domain.IssuedToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, grant_id, access_token_hash, refresh_token_hash, scope, revoked, expires_at, created_at
		 FROM tokens WHERE access_token_hash = ?`, hash)

	var (
		t           domain.IssuedToken
		grantID     sql.NullString
		refreshHash sql.NullString
	)
	err := row.Scan(&t.ID, &t.ClientID, &grantID, &t.AccessTokenHash, &refreshHash, &t.Scope, &t.Revoked, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.IssuedToken{}, mapNotFound(err)
	}
	t.GrantID = mapNullString(grantID)
	t.RefreshTokenHash = mapNullString(refreshHash)
	return t, nil
}

func (r *tokensRepo) RevokeTokensForGrant(ctx context.Context, grantID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET revoked = 1 WHERE grant_id = ?`, grantID)
	return err
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
