package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen       = "127.0.0.1:8080"
	DefaultCalendarURL  = "https://calendar.google.com/calendar/ical/7598c28c20e04ce699489a251aeb81b0d85d884d35e1ebbecd3c4ddbe125abe4%40group.calendar.google.com/public/basic.ics"
	DefaultRefreshCron  = "*/15 * * * *"
	DefaultFetchTimeout = 15 * time.Second
	DefaultCacheDir     = "./var/ics-cache"
	DefaultPreviewPath  = "./var/preview.png"
	DefaultLogLevel     = "info"
)

// Environment variables that override file values.
const (
	EnvListen      = "SAFARIFAME_LISTEN"
	EnvCalendarURL = "SAFARIFAME_CALENDAR_URL"
	EnvRefresh     = "SAFARIFAME_REFRESH"
	EnvLogLevel    = "SAFARIFAME_LOG_LEVEL"
)

// Config is the on-disk server configuration.
type Config struct {
	// Listen is the HTTP listen address for the site and API.
	Listen string `yaml:"listen" json:"listen"`

	// CalendarURL is the public ICS feed listing upcoming fights.
	CalendarURL string `yaml:"calendar_url" json:"calendar_url"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// for re-fetching the calendar feed.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// FetchTimeout bounds a single feed request.
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	// CacheDir holds the on-disk copy of the last good feed.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// PreviewPath is where snapshot captures are written and served from.
	PreviewPath string `yaml:"preview_path" json:"preview_path"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns the settings written on first run.
func DefaultConfig() *Config {
	return &Config{
		Listen:       DefaultListen,
		CalendarURL:  DefaultCalendarURL,
		RefreshCron:  DefaultRefreshCron,
		FetchTimeout: DefaultFetchTimeout,
		CacheDir:     DefaultCacheDir,
		PreviewPath:  DefaultPreviewPath,
		LogLevel:     DefaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.CalendarURL == "" {
		c.CalendarURL = DefaultCalendarURL
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.PreviewPath == "" {
		c.PreviewPath = DefaultPreviewPath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// ApplyEnv overrides fields from SAFARIFAME_* environment variables.
// If envFile exists it is loaded first; variables already present in
// the process environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvCalendarURL); v != "" {
		c.CalendarURL = v
	}
	if v := os.Getenv(EnvRefresh); v != "" {
		c.RefreshCron = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Load reads path, creating it with defaults if it does not exist.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read, unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Defaults are still usable when the file cannot be written.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".safarifame-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
