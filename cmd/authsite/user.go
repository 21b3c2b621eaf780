package main

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/cameronmore/go-authsite/auth"
	"github.com/cameronmore/go-authsite/env"
	"github.com/cameronmore/go-authsite/internal/cmdflags"
	"github.com/cameronmore/go-authsite/internal/logutil"
	"github.com/urfave/cli/v2"
)

func userCmd() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users",
		Subcommands: []*cli.Command{
			userAddCmd(),
		},
	}
}

func userAddCmd() *cli.Command {
	var cfg env.Config
	var username string
	flags := append(cmdflags.Store(&cfg), cmdflags.Hashing(&cfg)...)
	flags = append(flags, &cli.StringFlag{
		Name:        "username",
		Aliases:     []string{"u", "user"},
		Usage:       "Name of the user to register",
		Destination: &username,
		Required:    true,
	})
	return &cli.Command{
		Name:  "add",
		Usage: "Register a new user (password is read from stdin)",
		Flags: flags,
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}

			logger := logutil.New(os.Stderr, cfg.LogLevel, false)
			runCtx := logutil.WithLogger(ctx.Context, logger)
			store, err := auth.Open(runCtx, cfg.DBDriver, cfg.DBDSN, cfg.StoreTimeout)
			if err != nil {
				return err
			}
			defer store.Close()

			// registering never touches sessions, so no codec is needed
			gw := auth.NewGateway(store, auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers), nil)
			c, err := gw.Register(runCtx, username, password)
			if err != nil {
				return err
			}
			logger.Info().Str("user_id", c.UserId).Str("username", c.Username).Msg("User registered")
			return nil
		},
	}
}

// readPassword returns the first line of r. Only the line ending is removed, so the
// password matches what the login form would submit.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	password := sc.Text()
	if len(password) == 0 {
		return "", errors.New("missing password from stdin")
	}
	return password, nil
}
