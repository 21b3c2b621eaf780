package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/urfave/cli/v2"
)

func secretCmd() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Print a new random value suitable for SECRET_KEY",
		Action: func(ctx *cli.Context) error {
			var key [32]byte
			if _, err := rand.Read(key[:]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(ctx.App.Writer, base64.RawURLEncoding.EncodeToString(key[:]))
			return err
		},
	}
}
