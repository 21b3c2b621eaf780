package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cameronmore/go-authsite/env"
	"github.com/cameronmore/go-authsite/internal/cmdflags"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	var envFile string
	app := &cli.App{
		Name:  "authsite",
		Usage: "Username/password registration, login and cookie sessions",
		Flags: []cli.Flag{
			cmdflags.EnvFile(&envFile),
		},
		Before: func(ctx *cli.Context) error {
			return env.LoadDotenv(envFile)
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			userCmd(),
			secretCmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
