package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/jackin-rest/jackin/cmd/jackin/auth"
	"github.com/jackin-rest/jackin/cmd/jackin/serve"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "jackin",
		Usage: "Control pin boards over REST",
		Commands: []*cli.Command{
			serve.Cmd(),
			auth.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
