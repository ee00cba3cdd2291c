package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/khoj-ai/khoj-sync/internal/utils"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the per-directory config artifact.
	ConfigFileName = "khoj-sync.ini"
	// StateFileName is the per-directory sync state artifact. The name is
	// kept from the original client for wire/disk compatibility even though
	// it holds JSON, not log lines.
	StateFileName = "khoj-sync.log"
	// ClientLogFileName is where the client writes its own logs.
	ClientLogFileName = "khoj-sync.client.log"

	// NeverSynced is the timestamp value recorded for files that were never
	// confirmed on the server.
	NeverSynced = "never"
)

var (
	ErrConfigMissing   = errors.New("config file missing")
	ErrConfigMalformed = errors.New("config file malformed")
)

// Config holds the connection and tuning parameters for one sync directory.
// It is immutable for the duration of a process invocation except for
// LastSync, which the engine advances as cycles complete.
type Config struct {
	Path       string        // config artifact location, not persisted
	Server     string        // Khoj server base URL
	APIKey     string        // optional bearer credential
	Frequency  time.Duration // continuous-mode poll interval
	MaxUploads int           // per-cycle upload cap
	BatchSize  int           // files per wire exchange
	SyncDir    string        // optional sync root override from the file
	LastSync   string        // RFC3339 or "never"
}

// Load reads and validates the config artifact at path.
func Load(path string) (*Config, error) {
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigMalformed, err)
	}

	cfg := &Config{
		Path:     path,
		Server:   v.GetString("config.server"),
		APIKey:   v.GetString("config.api-key"),
		SyncDir:  v.GetString("config.sync-dir"),
		LastSync: v.GetString("sync.last_sync"),
	}
	if cfg.LastSync == "" {
		cfg.LastSync = NeverSynced
	}

	if cfg.Server == "" {
		return nil, fmt.Errorf("%w: missing `server` in [config]", ErrConfigMalformed)
	}

	freq, err := ParseFrequency(v.GetString("config.frequency"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigMalformed, err)
	}
	cfg.Frequency = freq

	cfg.MaxUploads, err = parsePositiveInt("max-uploads", v.GetString("config.max-uploads"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigMalformed, err)
	}

	cfg.BatchSize, err = parsePositiveInt("batch-size", v.GetString("config.batch-size"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigMalformed, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigMalformed, err)
	}

	return cfg, nil
}

// Save writes the config artifact back to c.Path, both the [config] and
// [sync] sections. The engine calls this after every batch exchange so the
// last-sync marker survives a crash.
func (c *Config) Save() error {
	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("ini")
	v.Set("config.server", c.Server)
	v.Set("config.frequency", FormatFrequency(c.Frequency))
	v.Set("config.max-uploads", strconv.Itoa(c.MaxUploads))
	v.Set("config.batch-size", strconv.Itoa(c.BatchSize))
	if c.APIKey != "" {
		v.Set("config.api-key", c.APIKey)
	}
	if c.SyncDir != "" {
		v.Set("config.sync-dir", c.SyncDir)
	}
	v.Set("sync.last_sync", c.LastSync)

	return v.WriteConfigAs(c.Path)
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.Server)
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive")
	}
	if c.MaxUploads <= 0 {
		return fmt.Errorf("max-uploads must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be positive")
	}
	return nil
}

// SyncRoot resolves the directory to sync: the CLI override wins, then the
// configured sync-dir, then the directory holding the config artifact.
func (c *Config) SyncRoot(override string) (string, error) {
	for _, dir := range []string{override, c.SyncDir} {
		if dir != "" {
			return utils.ResolvePath(dir)
		}
	}
	return filepath.Dir(c.Path), nil
}

// StatePath returns the location of the sync state artifact, which always
// lives next to the config artifact.
func (c *Config) StatePath() string {
	return filepath.Join(filepath.Dir(c.Path), StateFileName)
}

// ParseFrequency parses a poll interval: an integer with a d/h/m/s suffix,
// or a bare integer meaning seconds.
func ParseFrequency(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing `frequency` in [config]")
	}

	unit := time.Second
	digits := raw
	switch raw[len(raw)-1] {
	case 'd':
		unit, digits = 24*time.Hour, raw[:len(raw)-1]
	case 'h':
		unit, digits = time.Hour, raw[:len(raw)-1]
	case 'm':
		unit, digits = time.Minute, raw[:len(raw)-1]
	case 's':
		unit, digits = time.Second, raw[:len(raw)-1]
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("failed to parse frequency of %q", raw)
	}
	return time.Duration(n) * unit, nil
}

// FormatFrequency renders a duration in the coarsest suffix that divides it
// evenly, so a round-tripped config stays readable.
func FormatFrequency(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

func parsePositiveInt(key, raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing `%s` in [config]", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("failed to parse %s of %q", key, raw)
	}
	return n, nil
}
