// Package api exposes the authentication subsystem over HTTP: the login
// and token-probe handlers plus the gatekeeper filter that fronts every
// protected route.
package api

import (
	"context"
	"net/http"
	"regexp"

	"github.com/jackin-rest/jackin/internal/logutil"
)

type (
	// TokenValidator is the slice of auth.Sessions the gatekeeper needs.
	TokenValidator interface {
		ValidateToken(ctx context.Context, value string) (bool, error)
	}

	// Gatekeeper decides, per request, whether it may reach its handler.
	// Routes on the allow-list pass untouched, everything else must
	// carry a valid bearer token.
	Gatekeeper struct {
		sessions TokenValidator
		allow    map[string]struct{}
	}
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)
)

// NewGatekeeper builds the filter. Each allow entry is an exact
// "METHOD /path" pair, there is no pattern matching on purpose: making a
// route public should be a single greppable line.
func NewGatekeeper(sessions TokenValidator, allow []string) *Gatekeeper {
	set := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		set[a] = struct{}{}
	}
	return &Gatekeeper{
		sessions: sessions,
		allow:    set,
	}
}

func (g *Gatekeeper) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, open := g.allow[r.Method+" "+r.URL.Path]; open {
			sensitive.ServeHTTP(w, r)
			return
		}
		log := logutil.GetOrDefault(r.Context())
		groups := bearerTokenRE.FindStringSubmatch(r.Header.Get("Authorization"))
		if len(groups) == 0 {
			// missing header, wrong scheme or malformed value, all
			// rejected before the token store is ever consulted
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		valid, err := g.sessions.ValidateToken(r.Context(), groups[1])
		if err != nil {
			log.Error().Err(err).Msg("Unexpected error while validating bearer token")
			http.Error(w, "Unable to validate credentials", http.StatusInternalServerError)
			return
		}
		if !valid {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		sensitive.ServeHTTP(w, r)
	})
}
