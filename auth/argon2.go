package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonDefaultTime = 3
	argonMemory      = 64 * 1024
	argonThreads     = 1
	argonKeyLen      = 32
	argonSaltLen     = 16
)

type (
	// Argon2 encodes passwords with argon2id and stores them in PHC
	// string format: $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>.
	//
	// Hashing is memory and CPU heavy, so all work passes through a
	// semaphore sized to the machine. Requests queue there instead of
	// stampeding the hasher.
	Argon2 struct {
		time uint32
		sem  chan struct{}
	}
)

// NewArgon2 builds the production encoder. cost scales the iteration
// count, zero or negative picks the default.
func NewArgon2(cost int) *Argon2 {
	if cost <= 0 {
		cost = argonDefaultTime
	}
	return &Argon2{
		time: uint32(cost),
		sem:  make(chan struct{}, runtime.NumCPU()),
	}
}

func (a *Argon2) Encode(ctx context.Context, plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("unable to generate salt, cause %w", err)
	}
	hash, err := a.derive(ctx, []byte(plaintext), salt, a.time, argonMemory, argonThreads, argonKeyLen)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("$argon2id$v=%v$m=%v,t=%v,p=%v$%v$%v",
		argon2.Version,
		argonMemory, a.time, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Matches re-derives the hash with the parameters embedded in the stored
// secret, so secrets written under older cost settings keep verifying.
func (a *Argon2) Matches(ctx context.Context, plaintext, secret string) (bool, error) {
	salt, hash, time, memory, threads, err := decodePHC(secret)
	if err != nil {
		return false, err
	}
	candidate, err := a.derive(ctx, []byte(plaintext), salt, time, memory, threads, uint32(len(hash)))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

func (a *Argon2) derive(ctx context.Context, plaintext, salt []byte, time, memory uint32, threads uint8, keyLen uint32) ([]byte, error) {
	select {
	case a.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-a.sem }()
	return argon2.IDKey(plaintext, salt, time, memory, threads, keyLen), nil
}

func decodePHC(secret string) (salt, hash []byte, time, memory uint32, threads uint8, err error) {
	parts := strings.Split(secret, "$")
	if len(parts) != 6 {
		err = fmt.Errorf("malformed secret, expected a PHC string")
		return
	}
	if parts[1] != "argon2id" {
		err = fmt.Errorf("unsupported secret algorithm %q", parts[1])
		return
	}
	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		err = fmt.Errorf("unable to parse secret version, cause %w", err)
		return
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		err = fmt.Errorf("unable to parse secret parameters, cause %w", err)
		return
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		err = fmt.Errorf("unable to decode secret salt, cause %w", err)
		return
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		err = fmt.Errorf("unable to decode secret hash, cause %w", err)
		return
	}
	return
}
