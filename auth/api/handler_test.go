package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackin-rest/jackin/auth"
	"github.com/jackin-rest/jackin/internal/testutil"
	"github.com/julienschmidt/httprouter"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestSigninFlow(t *testing.T) {
	ctx := context.Background()
	handler, sessions, cleanup := acquireHandler(ctx, t, 2*time.Second)
	defer cleanup()

	if err := sessions.Register(ctx, "alice@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}

	result := apitest.Handler(handler).Post("/auth").
		BasicAuth("alice@example.com", "secret123").
		Expect(t).
		Status(http.StatusOK).
		Header("Content-Type", "application/json; charset=utf-8").
		Assert(jsonpath.Present(`$.token`)).
		End()
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(result.Response.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Token == "" {
		t.Fatal("login should return a token")
	}

	apitest.Handler(handler).Get("/auth").
		Header("Authorization", fmt.Sprintf("Bearer %v", body.Token)).
		Expect(t).Status(http.StatusOK).End()

	// once the configured timeout passes the same token stops working
	time.Sleep(2*time.Second + 100*time.Millisecond)
	apitest.Handler(handler).Get("/auth").
		Header("Authorization", fmt.Sprintf("Bearer %v", body.Token)).
		Expect(t).Status(http.StatusUnauthorized).End()
}

func TestSigninRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	handler, sessions, cleanup := acquireHandler(ctx, t, time.Hour)
	defer cleanup()

	if err := sessions.Register(ctx, "alice@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}

	apitest.Handler(handler).Post("/auth").
		BasicAuth("alice@example.com", "letmein").
		Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(handler).Post("/auth").
		BasicAuth("nobody@example.com", "secret123").
		Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(handler).Post("/auth").
		Expect(t).Status(http.StatusUnauthorized).End()
}

func TestProbeRequiresToken(t *testing.T) {
	ctx := context.Background()
	handler, _, cleanup := acquireHandler(ctx, t, time.Hour)
	defer cleanup()

	apitest.Handler(handler).Get("/auth").
		Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(handler).Get("/auth").
		Header("Authorization", "Basic abc").
		Expect(t).Status(http.StatusUnauthorized).End()
}

func acquireHandler(ctx context.Context, t *testing.T, timeout time.Duration) (http.Handler, *auth.Sessions, func()) {
	t.Helper()
	store, cleanup := testutil.AcquireStore(ctx, t, "credentials", "tokens")
	creds := auth.NewCredentials(store)
	tokens := auth.NewTokens(store)
	sessions := auth.NewSessions(creds, tokens, auth.Plaintext{}, timeout)

	router := httprouter.New()
	Routes(router, sessions)
	gate := NewGatekeeper(sessions, []string{"POST /auth"})
	return gate.Protect(router), sessions, cleanup
}
