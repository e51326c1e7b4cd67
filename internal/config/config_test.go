package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9998", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/srv/odoo", cfg.BaseDir)
	assert.Equal(t, "/srv/odoo/backups", cfg.DataDir)
	assert.Equal(t, 30, cfg.SubprocessTimeoutMin)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BASE_DIR", "/opt/deploy")
	t.Setenv("DATA_DIR", "/var/backups/opsdash")
	t.Setenv("SUBPROCESS_TIMEOUT_MIN", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/deploy", cfg.BaseDir)
	assert.Equal(t, "/var/backups/opsdash", cfg.DataDir)
	assert.Equal(t, "/opt/deploy/docker-compose.yml", cfg.ComposeFile())
	assert.Equal(t, 5, cfg.SubprocessTimeoutMin)
}

func TestLoad_DataDirDefaultsUnderBaseDir(t *testing.T) {
	t.Setenv("BASE_DIR", "/opt/deploy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/deploy/backups", cfg.DataDir)
}

func TestValidate_RejectsNonPositiveTimeout(t *testing.T) {
	cfg := &Config{BaseDir: "/srv/odoo", DataDir: "/srv/odoo/backups", SubprocessTimeoutMin: 0}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBPROCESS_TIMEOUT_MIN")
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("SUBPROCESS_TIMEOUT_MIN", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.SubprocessTimeoutMin)
}
