package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackin-rest/jackin/docstore"
)

const (
	tokenCollection = "tokens"
	tokenValueBytes = 32 // 256 bits of entropy
)

type (
	// Token is one active login session. Tokens are immutable once
	// issued, expiry is computed from IssuedAt at validation time and
	// never stored.
	Token struct {
		ID       string    `json:"-"`
		Rev      string    `json:"-"`
		Value    string    `json:"value"`
		IssuedAt time.Time `json:"issued_at"`
	}

	// TokenStore persists issued tokens and finds them back by value.
	TokenStore interface {
		FindByValue(ctx context.Context, value string) (Token, error)
		Insert(ctx context.Context, token Token) (Token, error)
	}

	// Tokens is the docstore-backed TokenStore, keyed by token value.
	Tokens struct {
		store *docstore.Store
	}
)

func NewTokens(store *docstore.Store) *Tokens {
	return &Tokens{store: store}
}

// Setup creates the token collection and its value index. Idempotent.
func (t *Tokens) Setup(ctx context.Context) error {
	return t.store.EnsureCollection(ctx, tokenCollection)
}

func (t *Tokens) FindByValue(ctx context.Context, value string) (Token, error) {
	doc, err := t.store.FindByKey(ctx, tokenCollection, value)
	if err != nil {
		return Token{}, err
	}
	return tokenFromDoc(doc)
}

func (t *Tokens) Insert(ctx context.Context, token Token) (Token, error) {
	body, err := json.Marshal(token)
	if err != nil {
		return Token{}, fmt.Errorf("unable to serialize token, cause %w", err)
	}
	doc, err := t.store.Insert(ctx, tokenCollection, token.Value, body)
	if err != nil {
		return Token{}, err
	}
	token.ID, token.Rev = doc.ID, doc.Rev
	return token, nil
}

// NewTokenValue mints an opaque bearer value from the system entropy
// source, rendered at a fixed length. If entropy is unavailable the
// error aborts the login attempt, there is no silent retry.
func NewTokenValue() (string, error) {
	var buf [tokenValueBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("unable to generate token value, cause %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}

func tokenFromDoc(doc docstore.Document) (Token, error) {
	var token Token
	if err := json.Unmarshal(doc.Body, &token); err != nil {
		return Token{}, fmt.Errorf("unable to decode token %v, cause %w", doc.ID, err)
	}
	token.ID, token.Rev = doc.ID, doc.Rev
	return token, nil
}
