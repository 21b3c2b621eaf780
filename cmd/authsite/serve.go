package main

import (
	"os"

	"github.com/cameronmore/go-authsite/auth"
	"github.com/cameronmore/go-authsite/env"
	"github.com/cameronmore/go-authsite/internal/cmdflags"
	"github.com/cameronmore/go-authsite/internal/httpserver"
	"github.com/cameronmore/go-authsite/internal/logutil"
	"github.com/cameronmore/go-authsite/sessions"
	"github.com/cameronmore/go-authsite/web"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	var cfg env.Config
	var secretVar string
	var pretty bool
	flags := append(cmdflags.Store(&cfg), cmdflags.Hashing(&cfg)...)
	flags = append(flags, cmdflags.Server(&cfg, &secretVar)...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "pretty-log",
		Usage:       "Human readable log output instead of JSON",
		Destination: &pretty,
	})
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: flags,
		Action: func(ctx *cli.Context) error {
			cfg.SecretKey = cmdflags.ReadSecret(secretVar)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logutil.New(os.Stderr, cfg.LogLevel, pretty)
			runCtx := logutil.WithLogger(ctx.Context, logger)

			codec, err := sessions.NewCodec([]byte(cfg.SecretKey), sessions.WithMaxAge(cfg.SessionMaxAge))
			if err != nil {
				return err
			}
			store, err := auth.Open(runCtx, cfg.DBDriver, cfg.DBDSN, cfg.StoreTimeout)
			if err != nil {
				return err
			}
			defer store.Close()

			pages, err := web.NewRenderer()
			if err != nil {
				return err
			}

			cookies := sessions.DefaultCookieOptions()
			cookies.MaxAge = codec.MaxAge()
			cookies.Secure = cfg.SecureCookies

			hasher := auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers)
			gw := auth.NewGateway(store, hasher, codec)
			ac := auth.NewAuthContext(gw, store, pages, cookies)
			ac.Health = store

			logger.Info().
				Str("db.driver", cfg.DBDriver).
				Dur("session.max_age", codec.MaxAge()).
				Int("bcrypt.cost", hasher.Cost()).
				Msg("Configuration loaded")
			return httpserver.Serve(runCtx, cfg.Addr, auth.NewRouter(ac, logger))
		},
	}
}
