package auth

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/jackin-rest/jackin/auth"
	"github.com/jackin-rest/jackin/docstore"
	"github.com/jackin-rest/jackin/internal/cmdflags"
	"github.com/jackin-rest/jackin/internal/config"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var cfgPath string
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the credentials the server authenticates against",
		Flags: []cli.Flag{
			cmdflags.Config(&cfgPath),
		},
		Subcommands: []*cli.Command{
			registerCmd(&cfgPath),
		},
	}
}

func registerCmd(cfgPath *string) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the user to register",
				Destination: &email,
				Required:    true,
			},
		},
		Action: func(c *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				return sc.Err()
			}
			password := strings.TrimSpace(sc.Text())
			if len(password) == 0 {
				return errors.New("missing password from stdin")
			}
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			store, err := docstore.Open(c.Context, cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()
			creds := auth.NewCredentials(store)
			if err := creds.Setup(c.Context); err != nil {
				return err
			}
			tokens := auth.NewTokens(store)
			if err := tokens.Setup(c.Context); err != nil {
				return err
			}
			encoder, err := auth.EncoderFromConfig(cfg.Auth.Encoder.Method, cfg.Auth.Encoder.MethodArgs)
			if err != nil {
				return err
			}
			sessions := auth.NewSessions(creds, tokens, encoder, cfg.TokenTimeout())
			return sessions.Register(c.Context, email, password)
		},
	}
}
