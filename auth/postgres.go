package auth

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// SQLSTATE unique_violation
const pgUniqueViolation = "23505"

var postgresDialect = dialect{
	driver: "pgx",
	goose:  "postgres",
	findUser: `
	SELECT user_id, username, hashed_password, created_at
	FROM users
	WHERE username = $1
	`,
	insertUser: `
	INSERT INTO users (user_id, username, hashed_password, created_at)
	VALUES ($1, $2, $3, $4)
	`,
	loadProfile: `
	SELECT description, age, occupation
	FROM users
	WHERE username = $1
	`,
	updateProfile: `
	UPDATE users
	SET description = $1, age = $2, occupation = $3
	WHERE username = $4
	`,
	isUniqueViolation: isPostgresUniqueViolation,
}

// NewPostgresStore wraps an already migrated PostgreSQL database opened with the pgx
// stdlib driver.
func NewPostgresStore(db *sql.DB, timeout time.Duration) *SQLStore {
	return newSQLStore(db, postgresDialect, timeout)
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
