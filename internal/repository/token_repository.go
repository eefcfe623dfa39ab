package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh-token sessions.  Only the SHA-256 hash of
// a token is ever stored; possession of the raw value is the session
// credential.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// StoreRefresh records a new session for the user.  Expiry is stored
// in UTC alongside the hash; the raw token never reaches the database.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, userID, tokenHash, exp.UTC())
	return err
}

// ValidateRefresh resolves a token hash to its owning user.  Revocation
// and expiry are checked inside the query against the database clock,
// so a revoked or stale session is indistinguishable from one that
// never existed: both surface as sql.ErrNoRows.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	const q = `SELECT user_id FROM refresh_tokens
	           WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()
	           LIMIT 1`
	var userID uint64
	if err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// RevokeByHash ends the single session identified by the hash.  Already
// revoked rows are left untouched so the original revocation time
// survives.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
	           WHERE token_hash = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}

// RevokeAllForUser ends every active session of a user at once, backing
// the logout-everywhere endpoint.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
	           WHERE user_id = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
