package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/rayscan/internal/config"
	"github.com/pthm/rayscan/internal/search"
)

func newFlags() (*pflag.FlagSet, map[string]string) {
	fs := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	fs.BoolP("summary", "s", false, "")
	fs.BoolP("compact", "c", false, "")
	fs.StringP("format", "f", config.DefaultFormat, "")
	fs.Bool("no-color", false, "")
	fs.StringSlice("ignore", nil, "")
	fs.Int("workers", 0, "")

	return fs, map[string]string{
		config.KeySummary: "summary",
		config.KeyCompact: "compact",
		config.KeyFormat:  "format",
		config.KeyNoColor: "no-color",
		config.KeyIgnore:  "ignore",
		config.KeyWorkers: "workers",
	}
}

func TestLoad_Defaults(t *testing.T) {
	fs, keys := newFlags()

	cfg, err := config.Load("", t.TempDir(), fs, keys)
	require.NoError(t, err)

	assert.False(t, cfg.ShowSummary)
	assert.False(t, cfg.CompactMode)
	assert.Equal(t, config.DefaultFormat, cfg.Format)
	assert.Equal(t, config.DefaultTarget, cfg.Target)
	assert.Empty(t, cfg.Ignore)
	assert.Empty(t, cfg.File)
	assert.Equal(t, search.DefaultMaxFileSize, cfg.MaxFileSizeBytes())
}

func TestLoad_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	content := `summary: true
compact: true
ignore:
  - tests/**
max_file_size: 256KB
workers: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rayscan.yaml"), []byte(content), 0o600))

	fs, keys := newFlags()
	require.NoError(t, fs.Parse([]string{"--compact=false", "--format", "json"}))

	cfg, err := config.Load("", dir, fs, keys)
	require.NoError(t, err)

	assert.True(t, cfg.ShowSummary, "from file")
	assert.False(t, cfg.CompactMode, "flag overrides file")
	assert.Equal(t, "json", cfg.Format, "flag")
	assert.Equal(t, []string{"tests/**"}, cfg.Ignore)
	assert.Equal(t, 3, cfg.Workers)
	assert.EqualValues(t, 256000, cfg.MaxFileSizeBytes())
	assert.Equal(t, filepath.Join(dir, ".rayscan.yaml"), cfg.File)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("RAYSCAN_SUMMARY", "true")
	t.Setenv("RAYSCAN_TARGET", "dump")

	cfg, err := config.Load("", t.TempDir(), nil, nil)
	require.NoError(t, err)

	assert.True(t, cfg.ShowSummary)
	assert.Equal(t, "dump", cfg.Target)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), "", nil, nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"format", "format: xml\n", config.ErrInvalidFormat},
		{"max file size", "max_file_size: lots\n", config.ErrInvalidMaxFileSize},
		{"workers", "workers: -1\n", config.ErrInvalidWorkers},
		{"ignore", "ignore: ['[oops']\n", config.ErrInvalidIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := config.Load(path, "", nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
