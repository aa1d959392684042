package secretsmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

type mockAPI struct {
	out   *secretsmanager.GetSecretValueOutput
	err   error
	gotID string
	calls int
}

func (m *mockAPI) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.calls++
	m.gotID = aws.ToString(params.SecretId)
	return m.out, m.err
}

func TestStore_GetSecretString(t *testing.T) {
	api := &mockAPI{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"host":"db"}`)}}
	store := New(api)

	got, err := store.GetSecretString(context.Background(), "arn:aws:secretsmanager:us-east-1:123456789012:secret:db-AbCdEf")

	require.NoError(t, err)
	assert.Equal(t, `{"host":"db"}`, got)
	assert.Equal(t, "arn:aws:secretsmanager:us-east-1:123456789012:secret:db-AbCdEf", api.gotID)
}

func TestStore_GetSecretStringErrors(t *testing.T) {
	errAPI := errors.New("ResourceNotFoundException")

	tests := []struct {
		name      string
		id        string
		api       *mockAPI
		wantIs    error
		wantCalls int
	}{
		{
			name:      "empty id",
			id:        "",
			api:       &mockAPI{},
			wantIs:    driven.ErrSecretIDNotSet,
			wantCalls: 0,
		},
		{
			name:      "api error",
			id:        "db",
			api:       &mockAPI{err: errAPI},
			wantIs:    errAPI,
			wantCalls: 1,
		},
		{
			name:      "binary secret",
			id:        "db",
			api:       &mockAPI{out: &secretsmanager.GetSecretValueOutput{SecretBinary: []byte{0x01}}},
			wantIs:    ErrNoSecretString,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.api).GetSecretString(context.Background(), tt.id)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Equal(t, tt.wantCalls, tt.api.calls)
		})
	}
}
