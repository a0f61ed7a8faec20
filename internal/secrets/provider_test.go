package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapFetcher map[string]string

func (m mapFetcher) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", ErrSecretNotFound
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceVault, "development"))
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("QUOTE_TEST_SECRET", "value")
	p, err := NewProvider(&ProviderConfig{Source: SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)

	v, err := p.GetSecret(context.Background(), "QUOTE_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	_, err = p.GetSecret(context.Background(), "QUOTE_TEST_MISSING")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceVault}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvider_GetSecretOrEnvPrefersEnvironment(t *testing.T) {
	p := NewProviderWithFetcher(mapFetcher{"db-password": "from-vault"}, zap.NewNop())

	v, err := p.GetSecretOrEnv(context.Background(), "db-password", "QUOTE_TEST_DB_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	t.Setenv("QUOTE_TEST_DB_PASSWORD", "from-env")
	v, err = p.GetSecretOrEnv(context.Background(), "db-password", "QUOTE_TEST_DB_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
	assert.True(t, p.IsVaultEnabled())
}
