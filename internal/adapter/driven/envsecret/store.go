// Package envsecret is a local-development SecretStore: the secret
// identifier names an environment variable that holds the secret JSON.
package envsecret

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// ErrSecretNotFound is returned when the named variable is unset.
var ErrSecretNotFound = errors.New("secret environment variable not set")

// Compile-time interface satisfaction check.
var _ driven.SecretStore = (*Store)(nil)

// Store looks secrets up through lookup, which defaults to os.LookupEnv.
type Store struct {
	lookup func(string) (string, bool)
}

// New creates a Store reading the process environment.
func New() *Store {
	return &Store{lookup: os.LookupEnv}
}

// GetSecretString returns the value of the environment variable named id.
func (s *Store) GetSecretString(_ context.Context, id string) (string, error) {
	if id == "" {
		return "", driven.ErrSecretIDNotSet
	}

	v, ok := s.lookup(id)
	if !ok {
		return "", fmt.Errorf("%s: %w", id, ErrSecretNotFound)
	}
	return v, nil
}
