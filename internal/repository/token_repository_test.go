package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRepoMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestValidateRefreshResolvesActiveSession(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs("hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))

	userID, err := repo.ValidateRefresh(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefreshRejectsRevokedOrExpired(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	// Revoked and expired sessions fall outside the query predicate,
	// so the lookup behaves as if the token never existed.
	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs("hash-dead").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ValidateRefresh(context.Background(), "hash-dead")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeAllForUserEndsEverySession(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP\(\)`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.RevokeAllForUser(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}
