package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{
		Host:     "db",
		Port:     5434,
		Username: "custom_user",
		Password: "custom_pass",
		Database: "custom_db",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://custom_user:custom_pass@db:5434/custom_db?sslmode=disable", cfg.DSN())
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE files").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	tr := NewTransactor(mock)
	err = tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		_, err := Conn(ctx, mock).Exec(ctx, "UPDATE files SET active = false")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewTransactor(mock).WithinTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_WithoutTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	assert.False(t, InTransaction(context.Background()))
	assert.Equal(t, DB(mock), Conn(context.Background(), mock))
}
