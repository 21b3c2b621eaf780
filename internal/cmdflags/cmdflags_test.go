package cmdflags

import (
	"os"
	"testing"
	"time"

	"github.com/cameronmore/go-authsite/env"
	"github.com/cameronmore/go-authsite/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, flags []cli.Flag, args ...string) {
	t.Helper()
	app := &cli.App{
		Name:   "test",
		Flags:  flags,
		Action: func(*cli.Context) error { return nil },
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
}

func TestServerFlags_Defaults(t *testing.T) {
	var cfg env.Config
	var secretVar string
	flags := append(Store(&cfg), Hashing(&cfg)...)
	flags = append(flags, Server(&cfg, &secretVar)...)
	run(t, flags)

	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, sessions.DefaultMaxAge, cfg.SessionMaxAge)
	assert.Equal(t, env.SecretKeyVar, secretVar)
	assert.False(t, cfg.SecureCookies)
}

func TestServerFlags_FromEnvironment(t *testing.T) {
	t.Setenv(env.DBDriverVar, "pgx")
	t.Setenv(env.SessionMaxAgeVar, "30m")
	t.Setenv(env.BcryptCostVar, "11")

	var cfg env.Config
	var secretVar string
	flags := append(Store(&cfg), Hashing(&cfg)...)
	flags = append(flags, Server(&cfg, &secretVar)...)
	run(t, flags, "--addr", "127.0.0.1:9000", "--secret-key-envvar-name", "MY_SECRET")

	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "MY_SECRET", secretVar)
}

func TestReadSecret_UnsetsVariable(t *testing.T) {
	t.Setenv("AUTHSITE_TEST_SECRET", "s3cret")

	assert.Equal(t, "s3cret", ReadSecret("AUTHSITE_TEST_SECRET"))
	_, ok := os.LookupEnv("AUTHSITE_TEST_SECRET")
	assert.False(t, ok)
}
