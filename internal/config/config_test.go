package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSecrets map[string]string

func (s stubSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := s[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, "/uploads", cfg.Storage.PublicPrefix)
	assert.Equal(t, int64(20*1024*1024), cfg.Storage.MaxUploadBytes())
	assert.Contains(t, cfg.Google.Issuers, "https://accounts.google.com")
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("GOOGLE_CLIENT_ID", "client-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "client-123", cfg.Google.ClientId)
}

func TestApplySecrets_OverridesOnlyResolvedValues(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "localhost", User: "u", Password: "old"},
		ApiKey:   ApiKeyConfig{Value: "keep"},
	}

	applySecrets(context.Background(), cfg, stubSecrets{
		"POSTGRES-PASSWORD": "s3cret",
		"google-client-id":  "vault-client",
	})

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "vault-client", cfg.Google.ClientId)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "keep", cfg.ApiKey.Value)
}

func TestDatabaseConfig_URL(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.URL())
}
