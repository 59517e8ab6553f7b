package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackin-rest/jackin/docstore"
	"github.com/jackin-rest/jackin/internal/testutil"
)

func TestNewTokenValue(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		value, err := NewTokenValue()
		if err != nil {
			t.Fatal(err)
		}
		if len(value) != 43 { // 32 bytes, raw url base64
			t.Fatalf("token value %q has length %v", value, len(value))
		}
		if seen[value] {
			t.Fatalf("token value %q repeated", value)
		}
		seen[value] = true
	}
}

func TestTokenRoundtrip(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStore(ctx, t, "tokens")
	defer cleanup()
	tokens := NewTokens(store)

	value, err := NewTokenValue()
	if err != nil {
		t.Fatal(err)
	}
	issued := time.Now().UTC().Truncate(time.Millisecond)
	inserted, err := tokens.Insert(ctx, Token{Value: value, IssuedAt: issued})
	if err != nil {
		t.Fatal(err)
	}
	if inserted.ID == "" || inserted.Rev == "" {
		t.Fatal("insert should populate id and revision")
	}

	got, err := tokens.FindByValue(ctx, value)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IssuedAt.Equal(issued) {
		t.Fatalf("issued at %v, got %v", issued, got.IssuedAt)
	}

	_, err = tokens.FindByValue(ctx, "no-such-token")
	var notFound docstore.NotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCachedTokens(t *testing.T) {
	ctx := context.Background()
	spy := &spyTokenStore{tokens: map[string]Token{}}
	cached := CachedTokens(spy, time.Minute)

	issued := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := cached.Insert(ctx, Token{Value: "tok-1", IssuedAt: issued}); err != nil {
		t.Fatal(err)
	}
	// insert wrote through and populated the cache, lookups should not
	// touch the wrapped store
	for i := 0; i < 3; i++ {
		got, err := cached.FindByValue(ctx, "tok-1")
		if err != nil {
			t.Fatal(err)
		}
		if !got.IssuedAt.Equal(issued) {
			t.Fatalf("issued at %v, got %v", issued, got.IssuedAt)
		}
	}
	if spy.lookups != 0 {
		t.Fatalf("expected 0 store lookups, got %v", spy.lookups)
	}

	// cold entries fall back to the store and are cached afterwards
	spy.tokens["tok-2"] = Token{Value: "tok-2", IssuedAt: issued}
	if _, err := cached.FindByValue(ctx, "tok-2"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.FindByValue(ctx, "tok-2"); err != nil {
		t.Fatal(err)
	}
	if spy.lookups != 1 {
		t.Fatalf("expected 1 store lookup, got %v", spy.lookups)
	}

	// misses are not cached and keep reporting NotFound
	if _, err := cached.FindByValue(ctx, "ghost"); err == nil {
		t.Fatal("expected an error for an unknown token")
	}
}

func TestCachedTokensSurvivesUnusableCacheSettings(t *testing.T) {
	ctx := context.Background()
	issued := time.Now().UTC().Truncate(time.Millisecond)
	spy := &spyTokenStore{tokens: map[string]Token{
		"tok-1": {Value: "tok-1", IssuedAt: issued},
	}}
	// whatever bigcache makes of a nonsense retention window, the
	// returned store must keep serving lookups from the wrapped store
	// instead of panicking on a half-built cache
	for _, keepFor := range []time.Duration{0, -time.Minute} {
		cached := CachedTokens(spy, keepFor)
		got, err := cached.FindByValue(ctx, "tok-1")
		if err != nil {
			t.Fatal(err)
		}
		if !got.IssuedAt.Equal(issued) {
			t.Fatalf("issued at %v, got %v", issued, got.IssuedAt)
		}
		if _, err := cached.Insert(ctx, Token{Value: "tok-2", IssuedAt: issued}); err != nil {
			t.Fatal(err)
		}
	}
}

type spyTokenStore struct {
	tokens  map[string]Token
	lookups int
	inserts int
}

func (s *spyTokenStore) FindByValue(ctx context.Context, value string) (Token, error) {
	s.lookups++
	token, ok := s.tokens[value]
	if !ok {
		return Token{}, docstore.NotFound{Collection: "tokens", Key: value}
	}
	return token, nil
}

func (s *spyTokenStore) Insert(ctx context.Context, token Token) (Token, error) {
	s.inserts++
	s.tokens[token.Value] = token
	return token, nil
}
