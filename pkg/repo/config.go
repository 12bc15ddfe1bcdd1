package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/gitlet/pkg/logging"
)

const defaultCommitCacheSize = 1024

// Config stores repository-local settings, persisted as .gitlet/config.toml.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
	Log  LogConfig  `toml:"log"`
}

// CoreConfig holds storage settings.
type CoreConfig struct {
	// ID is a random identifier assigned at init, attached to log records.
	ID              string `toml:"id"`
	Compress        bool   `toml:"compress"`
	CommitCacheSize int    `toml:"commit_cache_size"`
}

// UserConfig identifies the commit author.
type UserConfig struct {
	Name string `toml:"name"`
}

// LogConfig controls the rotated debug log.
type LogConfig struct {
	Level      string `toml:"level"`
	File       bool   `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Compress:        true,
			CommitCacheSize: defaultCommitCacheSize,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 30,
		},
	}
}

// Author returns the configured user name, falling back to $USER and then
// "unknown".
func (c *Config) Author() string {
	if name := strings.TrimSpace(c.User.Name); name != "" {
		return name
	}
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		return name
	}
	return "unknown"
}

// LoggingOptions maps the [log] section onto logging.Options for a
// repository whose metadata lives in metaDir.
func (c *Config) LoggingOptions(metaDir string) logging.Options {
	opts := logging.Options{
		Level:      c.Log.Level,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
	if c.Log.File {
		opts.File = filepath.Join(metaDir, "gitlet.log")
	}
	return opts
}

func configPath(metaDir string) string {
	return filepath.Join(metaDir, "config.toml")
}

// ReadConfig reads .gitlet/config.toml. A missing file yields DefaultConfig;
// keys absent from the file keep their defaults.
func ReadConfig(metaDir string) (*Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(configPath(metaDir), cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w: %w", errCorruptMetadata, err)
	}
	if cfg.Core.CommitCacheSize <= 0 {
		cfg.Core.CommitCacheSize = defaultCommitCacheSize
	}
	return cfg, nil
}

// WriteConfig atomically writes .gitlet/config.toml.
func WriteConfig(metaDir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(configPath(metaDir), buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
