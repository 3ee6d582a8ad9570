package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/loom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "loom version "+strings.TrimSpace(loom.Version)+"\n", out.String())
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\nstorage:\n  driver: memory\n"), 0o644))

	require.NoError(t, serveCmd.ParseFlags([]string{"--config", path, "--log-level", "debug", "--storage", "sqlite"}))
	cfg, logger, err := loadConfig(serveCmd)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, ".loom/loom.db", cfg.Storage.Path)
}

func TestLoadConfig_ExplicitFileMustExist(t *testing.T) {
	require.NoError(t, versionCmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))
	_, _, err := loadConfig(versionCmd)
	assert.Error(t, err)
}
