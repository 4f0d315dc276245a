package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_DISABLED", "")
	t.Setenv("PORT", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("RECONCILE_TENANT_IDS", "")
	t.Setenv("RECONCILE_TENANT_ID", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.PostgresDSN)
	assert.False(t, cfg.AuthDisabled)
	assert.Empty(t, cfg.ReconcileTenants)
}

func TestLoadConfig_RequiresSecretUnlessDisabled(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_DISABLED", "")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("AUTH_DISABLED", "true")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.AuthDisabled)
}

func TestLoadConfig_ReconcileTenants(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	t.Setenv("AUTH_DISABLED", "1")
	t.Setenv("RECONCILE_TENANT_IDS", a.String()+", "+b.String())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, cfg.ReconcileTenants)

	t.Setenv("RECONCILE_TENANT_IDS", "nope")
	_, err = LoadConfig()
	assert.Error(t, err)
}
