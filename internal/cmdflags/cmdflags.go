package cmdflags

import (
	"os"
	"runtime"

	"github.com/cameronmore/go-authsite/auth"
	"github.com/cameronmore/go-authsite/env"
	"github.com/cameronmore/go-authsite/sessions"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

func EnvFile(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "env-file",
		Usage:       "Optional dotenv file loaded before any other flag is read",
		Value:       ".env",
		Destination: out,
	}
}

// Store declares the flags needed to reach the credential store.
func Store(cfg *env.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-driver",
			Usage:       "Database driver, sqlite3 or pgx",
			EnvVars:     []string{env.DBDriverVar},
			Value:       "sqlite3",
			Destination: &cfg.DBDriver,
		},
		&cli.StringFlag{
			Name:        "db-dsn",
			Usage:       "Database DSN (a file path for sqlite3)",
			EnvVars:     []string{env.DBDSNVar},
			Value:       "authsite.db",
			Destination: &cfg.DBDSN,
		},
		&cli.DurationFlag{
			Name:        "store-timeout",
			Usage:       "Upper bound for every store call",
			EnvVars:     []string{env.StoreTimeoutVar},
			Value:       auth.DefaultStoreTimeout,
			Destination: &cfg.StoreTimeout,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "zerolog level (debug, info, warn, error)",
			EnvVars:     []string{env.LogLevelVar},
			Value:       "info",
			Destination: &cfg.LogLevel,
		},
	}
}

// Hashing declares the password hashing flags.
func Hashing(cfg *env.Config) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "bcrypt-cost",
			Usage:       "bcrypt work factor for new password hashes",
			EnvVars:     []string{env.BcryptCostVar},
			Value:       bcrypt.DefaultCost,
			Destination: &cfg.BcryptCost,
		},
		&cli.IntFlag{
			Name:        "hash-workers",
			Usage:       "Maximum number of concurrent password hashes",
			EnvVars:     []string{env.HashWorkersVar},
			Value:       runtime.NumCPU(),
			Destination: &cfg.HashWorkers,
		},
	}
}

// Server declares the flags only the HTTP server uses.
func Server(cfg *env.Config, secretVar *string) []cli.Flag {
	if len(*secretVar) == 0 {
		*secretVar = env.SecretKeyVar
	}
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Address to bind the HTTP server",
			EnvVars:     []string{env.AddrVar},
			Value:       ":8000",
			Destination: &cfg.Addr,
		},
		&cli.DurationFlag{
			Name:        "session-max-age",
			Usage:       "Lifetime of a session token, 0 disables expiry",
			EnvVars:     []string{env.SessionMaxAgeVar},
			Value:       sessions.DefaultMaxAge,
			Destination: &cfg.SessionMaxAge,
		},
		&cli.BoolFlag{
			Name:        "secure-cookies",
			Usage:       "Mark the session cookie Secure (requires HTTPS)",
			EnvVars:     []string{env.SecureCookiesVar},
			Destination: &cfg.SecureCookies,
		},
		&cli.StringFlag{
			Name:        "secret-key-envvar-name",
			Usage:       "Name of the environment variable that holds the session secret. The secret itself should not be passed as an argument",
			Value:       *secretVar,
			Destination: secretVar,
		},
	}
}

// ReadSecret takes the secret out of the environment so child processes do not inherit it.
func ReadSecret(varname string) string {
	val := os.Getenv(varname)
	os.Unsetenv(varname)
	return val
}
