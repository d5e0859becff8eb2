package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "findoc.db", cfg.DatabaseURL)
	assert.Equal(t, "outputs", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 10, cfg.RetryDelaySecs)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{"port": 9090, "workers": 4, "provider": "gemini"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "gemini", cfg.Provider)
	// Untouched fields keep defaults.
	assert.Equal(t, "findoc.db", cfg.DatabaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("FINDOC_PORT", "7001")
	t.Setenv("OUTPUTS_DIR", "/var/findoc/outputs")

	path := writeConfig(t, `{"port": 9090}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
	assert.Equal(t, "/var/findoc/outputs", cfg.OutputDir)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{port: }`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadProvider(t *testing.T) {
	path := writeConfig(t, `{"provider": "carrier-pigeon"}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestValidate_RejectsBadPort(t *testing.T) {
	path := writeConfig(t, `{"port": 70000}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_MissingManifest(t *testing.T) {
	path := writeConfig(t, `{"manifest": "/nonexistent/pipeline.yaml"}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest file not found")
}
