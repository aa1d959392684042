package driven

import (
	"context"
	"errors"
)

// ErrSecretIDNotSet is returned by SecretStore implementations when no secret
// identifier was configured (HITCOUNTER_SECRET_ID).
var ErrSecretIDNotSet = errors.New("secret identifier not configured: set HITCOUNTER_SECRET_ID")

// SecretStore defines the driven port for fetching secrets by identifier.
// The returned string is the raw secret payload, normally JSON.
type SecretStore interface {
	GetSecretString(ctx context.Context, id string) (string, error)
}
