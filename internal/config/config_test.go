package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbadata/fz10/internal/fetch"
)

// chdir mirrors t.Chdir, which is unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./cache", cfg.CacheDir)
	assert.Equal(t, "./fz10.db", cfg.DatabasePath)
	assert.Equal(t, "./export", cfg.ExportDir)
	assert.Equal(t, fetch.DefaultURLTemplate, cfg.SourceURLTemplate)
	assert.Equal(t, 60, cfg.HTTPTimeoutSeconds)
	assert.Equal(t, "info", cfg.LogLevel)

	// Loading creates the working directories.
	assert.DirExists(t, filepath.Join(dir, "cache"))
	assert.DirExists(t, filepath.Join(dir, "export"))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")

	content := `
cache_dir: ` + filepath.Join(dir, "my-cache") + `
database_path: ` + filepath.Join(dir, "my.db") + `
export_dir: ` + filepath.Join(dir, "out") + `
http_timeout_seconds: 10
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "my-cache"), cfg.CacheDir)
	assert.Equal(t, filepath.Join(dir, "my.db"), cfg.DatabasePath)
	assert.Equal(t, 10, cfg.HTTPTimeoutSeconds)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Unset options still get their defaults.
	assert.Equal(t, fetch.DefaultURLTemplate, cfg.SourceURLTemplate)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: "+filepath.Join(dir, "c")+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./fz10.db", cfg.DatabasePath)
	assert.Equal(t, 60, cfg.HTTPTimeoutSeconds)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	tests := []struct {
		name    string
		content string
	}{
		{"unknown log level", "log_level: loud\n"},
		{"negative timeout", "http_timeout_seconds: -5\n"},
		{"malformed yaml", "cache_dir: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}
