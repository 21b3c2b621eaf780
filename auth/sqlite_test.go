package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cameronmore/go-authsite/sessions"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "authsite.db")
	s, err := Open(context.Background(), "sqlite3", dsn, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn", time.Second)
	assert.Error(t, err)
}

func TestOpen_IsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "authsite.db")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), "sqlite3", dsn, time.Second)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}
}

func TestSQLiteStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Insert(ctx, "alice", "$2a$04$digest")
	require.NoError(t, err)
	assert.NotEmpty(t, created.UserId)
	assert.Equal(t, "alice", created.Username)

	found, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.UserId, found.UserId)
	assert.Equal(t, "alice", found.Username)
	assert.Equal(t, "$2a$04$digest", found.HashedPassword)
	assert.WithinDuration(t, created.CreatedAt, found.CreatedAt, time.Second)
}

func TestSQLiteStore_FindMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Find(context.Background(), "ghost")
	assert.ErrorIs(t, err, sessions.ErrUserNotFound)
}

func TestSQLiteStore_DuplicateInsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Insert(ctx, "alice", "h1")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "alice", "h2")
	assert.ErrorIs(t, err, sessions.ErrAlreadyExists)

	found, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", found.HashedPassword)
}

func TestSQLiteStore_ConcurrentInsertOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Insert(ctx, "alice", "hash")
		}(i)
	}
	wg.Wait()

	var ok, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, sessions.ErrAlreadyExists):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, taken)
}

func TestSQLiteStore_Profile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Insert(ctx, "alice", "hash")
	require.NoError(t, err)

	p, err := s.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, p.Complete())

	want := sessions.Profile{Description: "likes go", Age: 33, Occupation: "engineer"}
	require.NoError(t, s.SaveProfile(ctx, "alice", want))

	p, err = s.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, want, p)
	assert.True(t, p.Complete())
}

func TestSQLiteStore_ProfileMissingUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, sessions.ErrUserNotFound)

	err = s.SaveProfile(ctx, "ghost", sessions.Profile{Description: "x"})
	assert.ErrorIs(t, err, sessions.ErrUserNotFound)
}

func TestSQLiteStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Find(ctx, "alice")
	assert.ErrorIs(t, err, sessions.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, sessions.ErrUserNotFound)

	_, err = s.Insert(ctx, "alice", "hash")
	assert.ErrorIs(t, err, sessions.ErrStoreUnavailable)

	assert.ErrorIs(t, s.Ping(ctx), sessions.ErrStoreUnavailable)
}

func TestSQLiteStore_DriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewSQLiteStore(db, time.Second)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})

	_, err = s.Insert(context.Background(), "alice", "hash")
	assert.ErrorIs(t, err, sessions.ErrAlreadyExists)
	_, err = s.Insert(context.Background(), "alice", "hash")
	assert.ErrorIs(t, err, sessions.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
