// Package config loads and saves the YAML settings file. The file is created
// with defaults on first run and is only ever written with 0600 permissions.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
)

type Config struct {
	// Timezone is the IANA zone that decides where days begin and end.
	// "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Database is a SQLite file path or a PostgreSQL connection string
	// without a password.
	Database string `yaml:"database" json:"-"`

	// Listen is the address `daybook serve` binds to.
	Listen string `yaml:"listen" json:"listen"`

	// BackupSchedule is a cron spec for automatic backups while serving.
	// An empty value disables them.
	BackupSchedule string `yaml:"backup_schedule" json:"backup_schedule"`

	MaxBackups int  `yaml:"max_backups" json:"max_backups"`
	Debug      bool `yaml:"debug" json:"debug"`

	// TouchMode asks clients to render larger controls.
	TouchMode bool `yaml:"touch_mode" json:"touch_mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Timezone:       constants.DefaultTimezone,
		Database:       constants.DefaultDBPath,
		Listen:         constants.DefaultListen,
		BackupSchedule: constants.DefaultBackupSchedule,
		MaxBackups:     constants.MaxBackups,
	}
}

// Normalize fills zero values with defaults so older or partial files keep
// working.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = constants.DefaultTimezone
	}
	if c.Database == "" {
		c.Database = constants.DefaultDBPath
	}
	if c.Listen == "" {
		c.Listen = constants.DefaultListen
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = constants.MaxBackups
	}
}

// Validate checks the values that would otherwise fail late: the time zone
// and the backup schedule.
func (c *Config) Validate() error {
	if _, err := calendar.LoadLocation(c.Timezone); err != nil {
		return err
	}
	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			return fmt.Errorf("invalid backup_schedule %q: %w", c.BackupSchedule, err)
		}
	}
	return nil
}

// Load reads the config at path. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg atomically via a temp file in the same directory.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	path = ExpandPath(path)
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".daybook-config-*.tmp")
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

func (c *Config) Save(path string) error {
	return Save(path, c)
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
