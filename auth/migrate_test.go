package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubGooseUp(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestMigrate_RunsEmbeddedMigrations(t *testing.T) {
	var gotDir string
	stubGooseUp(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	})

	require.NoError(t, Migrate(context.Background(), nil, "sqlite3"))
	assert.Equal(t, ".", gotDir)
}

func TestMigrate_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	stubGooseUp(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	})

	assert.ErrorIs(t, Migrate(context.Background(), nil, "postgres"), boom)
}

func TestMigrate_UnknownDialect(t *testing.T) {
	called := false
	stubGooseUp(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		return nil
	})

	assert.Error(t, Migrate(context.Background(), nil, "oracle"))
	assert.False(t, called)
}

func TestOpen_MigrationFailureClosesStore(t *testing.T) {
	var migrated *sql.DB
	stubGooseUp(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		migrated = db
		return errors.New("bad migration")
	})

	s, err := Open(context.Background(), "sqlite3", t.TempDir()+"/authsite.db", 0)
	assert.Nil(t, s)
	assert.ErrorContains(t, err, "bad migration")

	require.NotNil(t, migrated)
	assert.ErrorContains(t, migrated.PingContext(context.Background()), "database is closed")
}
