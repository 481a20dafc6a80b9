package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 120, cfg.AIService.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Dispatch.SkillTxTimeoutSeconds)
	assert.Equal(t, 4000, cfg.Context.MaxChars)
	assert.Equal(t, "mysql", cfg.Database.Driver)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: \"9090\"\nai_service:\n  base_url: \"http://file:1\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("AI_SERVICE_URL", "http://env:2")
	t.Setenv("STUDYLIFE_DATABASE_DRIVER", "sqlite")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://env:2", cfg.AIService.BaseURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
