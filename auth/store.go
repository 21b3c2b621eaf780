package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cameronmore/go-authsite/sessions"
	"github.com/oklog/ulid/v2"
)

// DefaultStoreTimeout bounds every store call.
const DefaultStoreTimeout = 5 * time.Second

// dialect holds what differs between the SQL backends.
type dialect struct {
	driver            string
	goose             string
	findUser          string
	insertUser        string
	loadProfile       string
	updateProfile     string
	isUniqueViolation func(error) bool
}

// SQLStore is a CredentialStore and ProfileStore on top of database/sql.
type SQLStore struct {
	DB      *sql.DB
	Timeout time.Duration

	dialect dialect
	newID   func() string
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect, timeout time.Duration) *SQLStore {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &SQLStore{
		DB:      db,
		Timeout: timeout,
		dialect: d,
		newID:   func() string { return ulid.Make().String() },
		now:     time.Now,
	}
}

// Open connects to the database behind driver and dsn, checks that it answers and applies
// pending migrations. Supported drivers are "sqlite3" and "pgx".
func Open(ctx context.Context, driver, dsn string, timeout time.Duration) (*SQLStore, error) {
	var d dialect
	switch driver {
	case sqliteDialect.driver:
		d = sqliteDialect
	case postgresDialect.driver:
		d = postgresDialect
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if d.driver == sqliteDialect.driver {
		// SQLite allows a single writer; one connection keeps writers queued instead of busy.
		db.SetMaxOpenConns(1)
	}

	s := newSQLStore(db, d, timeout)
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := Migrate(ctx, db, d.goose); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *SQLStore) Find(ctx context.Context, username string) (sessions.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var c sessions.Credential
	err := s.DB.QueryRowContext(ctx, s.dialect.findUser, username).
		Scan(&c.UserId, &c.Username, &c.HashedPassword, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sessions.Credential{}, sessions.ErrUserNotFound
	}
	if err != nil {
		return sessions.Credential{}, unavailable(err)
	}
	return c, nil
}

// Insert adds a credential in a single statement. The UNIQUE constraint on username
// decides between concurrent registrations of the same name.
func (s *SQLStore) Insert(ctx context.Context, username, hashedPassword string) (sessions.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	c := sessions.Credential{
		UserId:         s.newID(),
		Username:       username,
		HashedPassword: hashedPassword,
		CreatedAt:      s.now().UTC(),
	}
	_, err := s.DB.ExecContext(ctx, s.dialect.insertUser, c.UserId, c.Username, c.HashedPassword, c.CreatedAt)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return sessions.Credential{}, sessions.ErrAlreadyExists
		}
		return sessions.Credential{}, unavailable(err)
	}
	return c, nil
}

func (s *SQLStore) Profile(ctx context.Context, username string) (sessions.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		description, occupation sql.NullString
		age                     sql.NullInt64
	)
	err := s.DB.QueryRowContext(ctx, s.dialect.loadProfile, username).Scan(&description, &age, &occupation)
	if errors.Is(err, sql.ErrNoRows) {
		return sessions.Profile{}, sessions.ErrUserNotFound
	}
	if err != nil {
		return sessions.Profile{}, unavailable(err)
	}
	return sessions.Profile{
		Description: description.String,
		Age:         int(age.Int64),
		Occupation:  occupation.String,
	}, nil
}

func (s *SQLStore) SaveProfile(ctx context.Context, username string, p sessions.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	result, err := s.DB.ExecContext(ctx, s.dialect.updateProfile, p.Description, p.Age, p.Occupation, username)
	if err != nil {
		return unavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return unavailable(err)
	}
	if affected == 0 {
		return sessions.ErrUserNotFound
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", sessions.ErrStoreUnavailable, err)
}
