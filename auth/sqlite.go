package auth

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
)

var sqliteDialect = dialect{
	driver: "sqlite3",
	goose:  "sqlite3",
	findUser: `
	SELECT user_id, username, hashed_password, created_at
	FROM users
	WHERE username = ?
	`,
	insertUser: `
	INSERT INTO users (user_id, username, hashed_password, created_at)
	VALUES (?, ?, ?, ?)
	`,
	loadProfile: `
	SELECT description, age, occupation
	FROM users
	WHERE username = ?
	`,
	updateProfile: `
	UPDATE users
	SET description = ?, age = ?, occupation = ?
	WHERE username = ?
	`,
	isUniqueViolation: isSQLiteUniqueViolation,
}

// NewSQLiteStore wraps an already migrated SQLite database.
func NewSQLiteStore(db *sql.DB, timeout time.Duration) *SQLStore {
	return newSQLStore(db, sqliteDialect, timeout)
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
