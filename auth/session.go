package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackin-rest/jackin/docstore"
)

// ErrInvalidCredentials is the only failure a caller sees for a bad
// login, whether the email was unknown or the password wrong. Keeping
// the two indistinguishable prevents user enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

type (
	// Sessions orchestrates login and token validation on top of the
	// credential store, the token store and the configured encoder. It
	// holds no mutable state of its own.
	Sessions struct {
		creds   *Credentials
		tokens  TokenStore
		encoder Encoder
		timeout time.Duration
		now     func() time.Time
	}
)

// NewSessions wires the authenticator. timeout applies to every token
// issued by this process, there is no per-token override.
func NewSessions(creds *Credentials, tokens TokenStore, encoder Encoder, timeout time.Duration) *Sessions {
	return &Sessions{
		creds:   creds,
		tokens:  tokens,
		encoder: encoder,
		timeout: timeout,
		now:     time.Now,
	}
}

// Login verifies the email/password pair and, on success, mints and
// persists a fresh bearer token, returning its value. Store failures
// other than a lookup miss surface as-is, they are infrastructure
// problems and must not masquerade as bad credentials.
func (s *Sessions) Login(ctx context.Context, email, password string) (string, error) {
	cred, err := s.creds.FindByEmail(ctx, email)
	var notFound docstore.NotFound
	if errors.As(err, &notFound) {
		return "", ErrInvalidCredentials
	} else if err != nil {
		return "", err
	}
	ok, err := s.encoder.Matches(ctx, password, cred.Secret)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	value, err := NewTokenValue()
	if err != nil {
		return "", err
	}
	_, err = s.tokens.Insert(ctx, Token{
		Value:    value,
		IssuedAt: s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// ValidateToken reports whether the token exists and is still inside
// its lifetime. An unknown token is simply invalid, not an error.
// Expired tokens are left in place, validation never writes.
func (s *Sessions) ValidateToken(ctx context.Context, value string) (bool, error) {
	token, err := s.tokens.FindByValue(ctx, value)
	var notFound docstore.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	expiry := token.IssuedAt.Add(s.timeout)
	return s.now().Before(expiry), nil
}

// Register encodes the password and inserts a credential for the email.
// Uniqueness relies on a lookup before the insert, which leaves a window
// where two concurrent registrations of the same email both succeed.
func (s *Sessions) Register(ctx context.Context, email, password string) error {
	_, err := s.creds.FindByEmail(ctx, email)
	var notFound docstore.NotFound
	if err == nil {
		return fmt.Errorf("email %v is already registered", email)
	} else if !errors.As(err, &notFound) {
		return err
	}
	secret, err := s.encoder.Encode(ctx, password)
	if err != nil {
		return err
	}
	_, err = s.creds.Insert(ctx, Credential{Email: email, Secret: secret})
	return err
}

// ChangePassword verifies the current password and swaps the stored
// secret, advancing the credential revision. A concurrent change loses
// the compare-and-swap and surfaces docstore.RevisionMismatch, callers
// decide whether to reread and retry.
func (s *Sessions) ChangePassword(ctx context.Context, email, current, next string) error {
	cred, err := s.creds.FindByEmail(ctx, email)
	var notFound docstore.NotFound
	if errors.As(err, &notFound) {
		return ErrInvalidCredentials
	} else if err != nil {
		return err
	}
	ok, err := s.encoder.Matches(ctx, current, cred.Secret)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	cred.Secret, err = s.encoder.Encode(ctx, next)
	if err != nil {
		return err
	}
	_, err = s.creds.Update(ctx, cred)
	return err
}
