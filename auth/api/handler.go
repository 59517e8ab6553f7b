package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackin-rest/jackin/auth"
	"github.com/jackin-rest/jackin/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

// Routes registers the auth endpoints. POST /auth must be on the
// gatekeeper allow-list, GET /auth must not: an authenticated 200 from
// it is how clients probe whether their token is still good.
func Routes(router *httprouter.Router, sessions *auth.Sessions) {
	router.HandlerFunc("POST", "/auth", loginHandler(sessions))
	router.HandlerFunc("GET", "/auth", probeHandler())
}

func loginHandler(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logutil.GetOrDefault(r.Context())
		email, password, ok := r.BasicAuth()
		if !ok {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		token, err := sessions.Login(r.Context(), email, password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		} else if err != nil {
			log.Error().Err(err).Msg("Unexpected error during login")
			http.Error(w, "Unable to process login", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}

func probeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// the gatekeeper already validated the token, reaching this
		// handler is the whole point
		w.WriteHeader(http.StatusOK)
	}
}
