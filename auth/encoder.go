package auth

import (
	"context"
	"fmt"
)

type (
	// Encoder turns a plaintext password into its stored representation
	// and verifies candidates against it. Implementations are free to
	// salt, so encoding the same plaintext twice need not produce the
	// same secret.
	Encoder interface {
		Encode(ctx context.Context, plaintext string) (string, error)
		Matches(ctx context.Context, plaintext, secret string) (bool, error)
	}
)

// EncoderFromConfig selects the encoder variant for this process. The
// method name is a closed set, anything unknown is a configuration error
// and should abort startup.
func EncoderFromConfig(method string, methodArgs int) (Encoder, error) {
	switch method {
	case "argon2id":
		return NewArgon2(methodArgs), nil
	case "plaintext":
		return Plaintext{}, nil
	default:
		return nil, fmt.Errorf("unknown encoder method %q", method)
	}
}
