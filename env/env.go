// Package env holds the process configuration: what the server listens on, where the
// credential store lives and the secret that signs session tokens.
package env

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cameronmore/go-authsite/sessions"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	AddrVar          = "AUTHSITE_ADDR"
	DBDriverVar      = "AUTHSITE_DB_DRIVER"
	DBDSNVar         = "AUTHSITE_DB_DSN"
	SecretKeyVar     = "SECRET_KEY"
	SessionMaxAgeVar = "AUTHSITE_SESSION_MAX_AGE"
	BcryptCostVar    = "AUTHSITE_BCRYPT_COST"
	HashWorkersVar   = "AUTHSITE_HASH_WORKERS"
	StoreTimeoutVar  = "AUTHSITE_STORE_TIMEOUT"
	SecureCookiesVar = "AUTHSITE_SECURE_COOKIES"
	LogLevelVar      = "AUTHSITE_LOG_LEVEL"
)

type Config struct {
	Addr          string
	DBDriver      string
	DBDSN         string
	SecretKey     string
	SessionMaxAge time.Duration
	BcryptCost    int
	HashWorkers   int
	StoreTimeout  time.Duration
	SecureCookies bool
	LogLevel      string
}

// Validate rejects configurations the server cannot start with. A missing secret key is
// always fatal.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("%w: set %s", sessions.ErrMissingSecret, SecretKeyVar)
	}
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("database DSN must not be empty")
	}
	if c.SessionMaxAge < 0 {
		return errors.New("session max age must not be negative")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("store timeout must be positive")
	}
	return nil
}

// LoadDotenv copies the variables in filename into the process environment. Variables
// already set win over the file, and a missing file is not an error.
func LoadDotenv(filename string) error {
	if filename == "" {
		return nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("loading %s: %w", filename, err)
	}
	return nil
}
