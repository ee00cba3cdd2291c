package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "30s", want: 30 * time.Second},
		{raw: "5m", want: 5 * time.Minute},
		{raw: "2h", want: 2 * time.Hour},
		{raw: "1d", want: 24 * time.Hour},
		{raw: "45", want: 45 * time.Second},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "m", wantErr: true},
		{raw: "-5m", wantErr: true},
		{raw: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseFrequency(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFrequency_RoundTrips(t *testing.T) {
	for _, raw := range []string{"30s", "5m", "2h", "1d", "90m"} {
		d, err := ParseFrequency(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, FormatFrequency(d))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	assert.ErrorIs(t, err, ErrConfigMissing)
}

func TestLoad_MalformedConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing server",
			content: "[config]\nfrequency = 5m\nmax-uploads = 10\nbatch-size = 1\n",
		},
		{
			name:    "missing frequency",
			content: "[config]\nserver = http://localhost:42110\nmax-uploads = 10\nbatch-size = 1\n",
		},
		{
			name:    "bad frequency",
			content: "[config]\nserver = http://localhost:42110\nfrequency = soon\nmax-uploads = 10\nbatch-size = 1\n",
		},
		{
			name:    "bad max-uploads",
			content: "[config]\nserver = http://localhost:42110\nfrequency = 5m\nmax-uploads = lots\nbatch-size = 1\n",
		},
		{
			name:    "missing batch-size",
			content: "[config]\nserver = http://localhost:42110\nfrequency = 5m\nmax-uploads = 10\n",
		},
		{
			name:    "bad server url",
			content: "[config]\nserver = not a url\nfrequency = 5m\nmax-uploads = 10\nbatch-size = 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrConfigMalformed)
		})
	}
}

func TestLoad_CompleteConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `[config]
server = https://app.khoj.dev
frequency = 5m
max-uploads = 10
batch-size = 2
api-key = kk-secret

[sync]
last_sync = 2026-08-29T10:00:00Z
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://app.khoj.dev", cfg.Server)
	assert.Equal(t, "kk-secret", cfg.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.Frequency)
	assert.Equal(t, 10, cfg.MaxUploads)
	assert.Equal(t, 2, cfg.BatchSize)
	assert.Equal(t, "2026-08-29T10:00:00Z", cfg.LastSync)
}

func TestLoad_DefaultsLastSyncToNever(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `[config]
server = http://localhost:42110
frequency = 5m
max-uploads = 10
batch-size = 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, NeverSynced, cfg.LastSync)
	assert.Empty(t, cfg.APIKey)
}

func TestSaveAndLoad_Roundtrip(t *testing.T) {
	tmp := t.TempDir()
	cfg := &Config{
		Path:       filepath.Join(tmp, ConfigFileName),
		Server:     "http://localhost:42110",
		APIKey:     "kk-secret",
		Frequency:  5 * time.Minute,
		MaxUploads: 10,
		BatchSize:  1,
		LastSync:   NeverSynced,
	}

	require.NoError(t, cfg.Save())

	loaded, err := Load(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, cfg.APIKey, loaded.APIKey)
	assert.Equal(t, cfg.Frequency, loaded.Frequency)
	assert.Equal(t, cfg.MaxUploads, loaded.MaxUploads)
	assert.Equal(t, cfg.BatchSize, loaded.BatchSize)
	assert.Equal(t, NeverSynced, loaded.LastSync)
}

func TestSyncRoot_Precedence(t *testing.T) {
	tmp := t.TempDir()
	other := t.TempDir()
	cfg := &Config{Path: filepath.Join(tmp, ConfigFileName)}

	// falls back to the config artifact's directory
	root, err := cfg.SyncRoot("")
	require.NoError(t, err)
	assert.Equal(t, tmp, root)

	// configured sync-dir wins over the fallback
	cfg.SyncDir = other
	root, err = cfg.SyncRoot("")
	require.NoError(t, err)
	assert.Equal(t, other, root)

	// the CLI override wins over everything
	override := t.TempDir()
	root, err = cfg.SyncRoot(override)
	require.NoError(t, err)
	assert.Equal(t, override, root)
}

func TestLoad_WrappedErrorsAreInspectable(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigMissing))
	assert.False(t, errors.Is(err, ErrConfigMalformed))
}
