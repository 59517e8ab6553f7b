package serve

import (
	"fmt"
	"net/http"
	"os"

	"github.com/jackin-rest/jackin/auth"
	authapi "github.com/jackin-rest/jackin/auth/api"
	"github.com/jackin-rest/jackin/device"
	deviceapi "github.com/jackin-rest/jackin/device/api"
	"github.com/jackin-rest/jackin/docstore"
	"github.com/jackin-rest/jackin/internal/cmdflags"
	"github.com/jackin-rest/jackin/internal/config"
	"github.com/jackin-rest/jackin/internal/httpserver"
	"github.com/jackin-rest/jackin/internal/logutil"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// allowList is the full set of routes reachable without a token. Keep it
// small, every entry is an exact method/path pair and adding one should
// survive a code review.
var allowList = []string{
	"POST /auth",
	"GET /",
}

func Cmd() *cli.Command {
	var cfgPath string
	var port int
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the REST server",
		Flags: []cli.Flag{
			cmdflags.Config(&cfgPath),
			cmdflags.Port(&port),
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Port = port
			}
			logger, closeLog, err := openLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()
			ctx := logutil.WithLogger(c.Context, logger)

			store, err := docstore.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			creds := auth.NewCredentials(store)
			if err := creds.Setup(ctx); err != nil {
				return err
			}
			tokens := auth.NewTokens(store)
			if err := tokens.Setup(ctx); err != nil {
				return err
			}
			encoder, err := auth.EncoderFromConfig(cfg.Auth.Encoder.Method, cfg.Auth.Encoder.MethodArgs)
			if err != nil {
				return err
			}
			sessions := auth.NewSessions(creds,
				auth.CachedTokens(tokens, cfg.TokenTimeout()),
				encoder, cfg.TokenTimeout())

			hub := device.NewHub()
			hub.Load(1, device.MockBoard())

			router := httprouter.New()
			router.HandlerFunc("GET", "/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			authapi.Routes(router, sessions)
			deviceapi.Routes(router, hub)

			gate := authapi.NewGatekeeper(sessions, allowList)
			handler := logutil.RequestLogger(logger)(gate.Protect(router))
			return httpserver.Serve(ctx, fmt.Sprintf(":%v", cfg.Port), handler)
		},
	}
}

func openLogger(cfg config.Config) (zerolog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger(), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("unable to open log file %v, cause %w", cfg.LogFile, err)
	}
	return zerolog.New(f).With().Timestamp().Logger(), func() { f.Close() }, nil
}
