// Package secretsmanager implements the SecretStore port on AWS Secrets Manager.
package secretsmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// ErrNoSecretString is returned for secrets stored only as SecretBinary.
var ErrNoSecretString = errors.New("secret has no string value")

// API is the subset of the Secrets Manager client used by Store.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Compile-time interface satisfaction check.
var _ driven.SecretStore = (*Store)(nil)

// Store reads secret strings from Secrets Manager. It does not cache.
type Store struct {
	api API
}

// New creates a Store around an existing client.
func New(api API) *Store {
	return &Store{api: api}
}

// NewFromEnv loads the default AWS configuration chain (env vars, shared
// config, the Lambda execution role) and builds a Store on it.
func NewFromEnv(ctx context.Context) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(secretsmanager.NewFromConfig(cfg)), nil
}

// GetSecretString returns the current SecretString for id, which may be a
// secret name or full ARN.
func (s *Store) GetSecretString(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", driven.ErrSecretIDNotSet
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("get secret value %q: %w", id, err)
	}

	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q: %w", id, ErrNoSecretString)
	}
	return aws.ToString(out.SecretString), nil
}
