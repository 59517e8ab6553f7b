package auth

import (
	"context"
	"crypto/subtle"
)

const plaintextPrefix = "plain:"

type (
	// Plaintext stores the password as-is behind a marker prefix. It
	// exists so tests can assert on stored secrets deterministically,
	// it has no place in production.
	Plaintext struct{}
)

func (Plaintext) Encode(_ context.Context, plaintext string) (string, error) {
	return plaintextPrefix + plaintext, nil
}

func (Plaintext) Matches(_ context.Context, plaintext, secret string) (bool, error) {
	candidate := plaintextPrefix + plaintext
	return subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) == 1, nil
}
