package client

import (
	"context"
	"fmt"
	"os"
)

// Credentials resolves the API key attached to outgoing requests.
// Providers return an empty key when they have nothing to offer, which
// leaves the request unauthenticated (useful for local servers).
type Credentials interface {
	APIKey(ctx context.Context) (string, error)
}

// CredentialsFunc is an adapter to allow ordinary functions as
// credential providers.
type CredentialsFunc func(ctx context.Context) (string, error)

// APIKey calls f(ctx).
func (f CredentialsFunc) APIKey(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticCredentials returns the same key for every request.
func StaticCredentials(key string) Credentials {
	return CredentialsFunc(func(ctx context.Context) (string, error) {
		return key, nil
	})
}

// EnvCredentials reads the key from an environment variable at call
// time, so rotated keys are picked up without restarting.
func EnvCredentials(name string) Credentials {
	return CredentialsFunc(func(ctx context.Context) (string, error) {
		return os.Getenv(name), nil
	})
}

// ChainCredentials tries providers in order and returns the first
// non-empty key. A provider error stops the chain.
func ChainCredentials(providers ...Credentials) Credentials {
	return CredentialsFunc(func(ctx context.Context) (string, error) {
		for _, p := range providers {
			key, err := p.APIKey(ctx)
			if err != nil {
				return "", fmt.Errorf("resolve api key: %w", err)
			}
			if key != "" {
				return key, nil
			}
		}
		return "", nil
	})
}
