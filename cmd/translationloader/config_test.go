package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), false, "")
	require.NoError(t, err)
	require.Equal(t, &Config{DefaultLocale: "en"}, cfg)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), true, "")
	require.Error(t, err)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "translationloader.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir = "translations"
defaults_dir = "defaults"
version = "1.0.0"
default_locale = "nl"
`), 0o644))

	t.Setenv("TRANSLATIONLOADER_VERSION", "2.0.0")

	cfg, err := loadConfig(path, true, "")
	require.NoError(t, err)
	require.Equal(t, &Config{
		Dir:           "translations",
		DefaultsDir:   "defaults",
		Version:       "2.0.0",
		DefaultLocale: "nl",
	}, cfg)
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRANSLATIONLOADER_DIR=from-env-file\nTRANSLATIONLOADER_VERBOSE=true\n"), 0o644))

	// godotenv does not override variables that are already set.
	t.Setenv("TRANSLATIONLOADER_DIR", "")
	os.Unsetenv("TRANSLATIONLOADER_DIR")
	t.Setenv("TRANSLATIONLOADER_VERBOSE", "")
	os.Unsetenv("TRANSLATIONLOADER_VERBOSE")

	cfg, err := loadConfig("", false, envFile)
	require.NoError(t, err)
	require.Equal(t, "from-env-file", cfg.Dir)
	require.True(t, cfg.Verbose)

	_, err = loadConfig("", false, filepath.Join(dir, "missing.env"))
	require.Error(t, err)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("dir = "), 0o644))

	_, err := loadConfig(path, false, "")
	require.Error(t, err)
}
