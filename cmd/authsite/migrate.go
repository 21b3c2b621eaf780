package main

import (
	"os"

	"github.com/cameronmore/go-authsite/auth"
	"github.com/cameronmore/go-authsite/env"
	"github.com/cameronmore/go-authsite/internal/cmdflags"
	"github.com/cameronmore/go-authsite/internal/logutil"
	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	var cfg env.Config
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations and exit",
		Flags: cmdflags.Store(&cfg),
		Action: func(ctx *cli.Context) error {
			logger := logutil.New(os.Stderr, cfg.LogLevel, false)
			store, err := auth.Open(logutil.WithLogger(ctx.Context, logger), cfg.DBDriver, cfg.DBDSN, cfg.StoreTimeout)
			if err != nil {
				return err
			}
			logger.Info().Str("db.driver", cfg.DBDriver).Msg("Migrations applied")
			return store.Close()
		},
	}
}
