// Package keygen produces the random public keys and secret keys of short links.
package keygen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	DefaultKeyLength   = 5
	DefaultMaxAttempts = 10
	SecretSuffixLength = 8

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var ErrGenerationExhausted = errors.New("failed to generate unique key")

// KeyChecker reports whether a key is already taken by any stored link.
type KeyChecker interface {
	KeyExists(ctx context.Context, key string) (bool, error)
}

type Generator struct {
	length      int
	maxAttempts int
	source      io.Reader
}

func NewGenerator(length, maxAttempts int) *Generator {
	if length < 1 {
		length = DefaultKeyLength
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{
		length:      length,
		maxAttempts: maxAttempts,
		source:      rand.Reader,
	}
}

// RandomKey returns n characters drawn uniformly from the alphanumeric alphabet.
func (g *Generator) RandomKey(n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	key := make([]byte, n)
	for i := range key {
		idx, err := rand.Int(g.source, max)
		if err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		key[i] = alphabet[idx.Int64()]
	}
	return string(key), nil
}

// UniqueKey draws keys until checker reports one as free, querying it once per attempt.
func (g *Generator) UniqueKey(ctx context.Context, checker KeyChecker) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		key, err := g.RandomKey(g.length)
		if err != nil {
			return "", err
		}

		exists, err := checker.KeyExists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check key %q: %w", key, err)
		}
		if !exists {
			return key, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrGenerationExhausted, g.maxAttempts)
}

// SecretKey derives the owner capability token for key.
func (g *Generator) SecretKey(key string) (string, error) {
	suffix, err := g.RandomKey(SecretSuffixLength)
	if err != nil {
		return "", err
	}
	return key + "_" + suffix, nil
}

func (g *Generator) KeyLength() int {
	return g.length
}
