package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/facture_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 20, cfg.DBMaxConns)
	assert.Equal(t, "documents", cfg.DocumentDir)
	assert.False(t, cfg.AllowOverpayment)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "5")
	t.Setenv("DOCUMENT_DIR", "/var/lib/facture/documents")
	t.Setenv("ALLOW_OVERPAYMENT", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.DBMaxConns)
	assert.Equal(t, "/var/lib/facture/documents", cfg.DocumentDir)
	assert.True(t, cfg.AllowOverpayment)
}

func TestLoadRejectsBadDBMaxConns(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_MAX_CONNS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_CONNS")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRejectsBadPort(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}
