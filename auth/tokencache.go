package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	cachedTokens struct {
		next  TokenStore
		cache *bigcache.BigCache
	}
)

// CachedTokens wraps a TokenStore with an in-memory read-through cache,
// so the hot validation path usually skips the database. Inserts write
// through, evicted entries simply fall back to the wrapped store. If the
// cache cannot be built the wrapped store is returned as-is, losing the
// cache only costs lookups.
func CachedTokens(next TokenStore, keepFor time.Duration) TokenStore {
	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(keepFor))
	if err != nil {
		return next
	}
	return &cachedTokens{
		next:  next,
		cache: cache,
	}
}

func (c *cachedTokens) FindByValue(ctx context.Context, value string) (Token, error) {
	if buf, err := c.cache.Get(value); err == nil {
		var token Token
		if err := json.Unmarshal(buf, &token); err == nil {
			return token, nil
		}
	}
	token, err := c.next.FindByValue(ctx, value)
	if err != nil {
		return Token{}, err
	}
	c.remember(token)
	return token, nil
}

func (c *cachedTokens) Insert(ctx context.Context, token Token) (Token, error) {
	token, err := c.next.Insert(ctx, token)
	if err != nil {
		return Token{}, err
	}
	c.remember(token)
	return token, nil
}

func (c *cachedTokens) remember(token Token) {
	// cache failures only cost a store lookup later
	buf, err := json.Marshal(token)
	if err != nil {
		return
	}
	c.cache.Set(token.Value, buf)
}
