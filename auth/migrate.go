package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cameronmore/go-authsite/auth/migrations"
	"github.com/cameronmore/go-authsite/internal/logutil"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations using the given goose dialect.
func Migrate(ctx context.Context, db *sql.DB, gooseDialect string) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{log: logutil.GetOrDefault(ctx)})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// gooseLogger sends goose output to zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
