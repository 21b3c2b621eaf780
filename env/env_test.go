package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cameronmore/go-authsite/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:          ":8000",
		DBDriver:      "sqlite3",
		DBDSN:         "authsite.db",
		SecretKey:     "secret",
		SessionMaxAge: 12 * time.Hour,
		StoreTimeout:  5 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.SecretKey = "" }},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"empty dsn", func(c *Config) { c.DBDSN = "" }},
		{"negative max age", func(c *Config) { c.SessionMaxAge = -time.Second }},
		{"zero timeout", func(c *Config) { c.StoreTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_MissingSecretIsConfigurationError(t *testing.T) {
	c := validConfig()
	c.SecretKey = ""
	assert.ErrorIs(t, c.Validate(), sessions.ErrMissingSecret)
}

func TestLoadDotenv_SetsVariables(t *testing.T) {
	for _, name := range []string{"AUTHSITE_TEST_ADDR", "AUTHSITE_TEST_DRIVER"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nAUTHSITE_TEST_ADDR=:9000\n\nAUTHSITE_TEST_DRIVER=pgx\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, LoadDotenv(path))
	assert.Equal(t, ":9000", os.Getenv("AUTHSITE_TEST_ADDR"))
	assert.Equal(t, "pgx", os.Getenv("AUTHSITE_TEST_DRIVER"))
}

func TestLoadDotenv_DoesNotOverrideExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AUTHSITE_TEST_A=file\nAUTHSITE_TEST_B=file\n"), 0o600))

	t.Setenv("AUTHSITE_TEST_A", "process")
	os.Unsetenv("AUTHSITE_TEST_B")
	t.Cleanup(func() { os.Unsetenv("AUTHSITE_TEST_B") })

	require.NoError(t, LoadDotenv(path))
	assert.Equal(t, "process", os.Getenv("AUTHSITE_TEST_A"))
	assert.Equal(t, "file", os.Getenv("AUTHSITE_TEST_B"))
}

func TestLoadDotenv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), "nope.env")))
	assert.NoError(t, LoadDotenv(""))
}
