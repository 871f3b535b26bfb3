// Package config provides configuration file and environment variable support for timeago.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Config file (~/.timeago/config.toml)
//  4. Built-in defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/locale"
	"github.com/spetersoncode/timeago/internal/settings"
)

// Config represents the timeago configuration.
type Config struct {
	// DB is the path to the database file.
	// Default: ~/.timeago/timeago.db
	DB string `toml:"db"`

	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`

	// Locale names a built-in locale.
	// Default: en
	Locale string `toml:"locale"`

	// LocaleFile is a user locale file. It replaces Locale when set.
	LocaleFile string `toml:"locale_file"`

	// RefreshMillis is the refresh interval. Zero disables auto refresh.
	// Default: 60000
	RefreshMillis int64 `toml:"refresh_millis"`

	// AllowFuture renders future instants with "from now" wording.
	AllowFuture bool `toml:"allow_future"`

	// CutoffMillis stops refreshing once an entry is this old. Zero means never.
	CutoffMillis int64 `toml:"cutoff_millis"`

	// LocaleTitle sets each entry's title to its instant as a date string.
	LocaleTitle bool `toml:"locale_title"`

	// Strings overrides individual words of the selected locale.
	Strings locale.File `toml:"strings"`

	Server ServerConfig `toml:"server"`

	Backup BackupConfig `toml:"backup"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BackupConfig controls the snapshots taken before a database is replaced.
type BackupConfig struct {
	// Dir holds the snapshots. Empty means next to the database.
	Dir string `toml:"dir"`

	// MaxCount is how many snapshots to keep. Zero disables them.
	// Default: 3
	MaxCount int `toml:"max_count"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DB:            "", // Empty means use db.DefaultDBPath
		Locale:        "en",
		RefreshMillis: settings.DefaultRefreshInterval.Milliseconds(),
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 18765,
		},
		Backup: BackupConfig{
			MaxCount: 3,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".timeago", "config.toml")
}

// Load loads configuration from the default config file and the environment.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, errors.Wrap(err, errors.KindInvalidArgs, "invalid config file %s", configPath)
			}
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv applies TIMEAGO_* environment variable overrides. Values that
// fail to parse are ignored.
func (c *Config) applyEnv() {
	if db := os.Getenv("TIMEAGO_DB"); db != "" {
		c.DB = db
	}

	// TIMEAGO_NO_COLOR - any value means true
	if _, ok := os.LookupEnv("TIMEAGO_NO_COLOR"); ok {
		c.NoColor = true
	}

	if l := os.Getenv("TIMEAGO_LOCALE"); l != "" {
		c.Locale = l
	}
	if f := os.Getenv("TIMEAGO_LOCALE_FILE"); f != "" {
		c.LocaleFile = f
	}

	if v := os.Getenv("TIMEAGO_REFRESH_MILLIS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms >= 0 {
			c.RefreshMillis = ms
		}
	}
	if v := os.Getenv("TIMEAGO_CUTOFF_MILLIS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms >= 0 {
			c.CutoffMillis = ms
		}
	}

	envBool("TIMEAGO_ALLOW_FUTURE", &c.AllowFuture)
	envBool("TIMEAGO_LOCALE_TITLE", &c.LocaleTitle)

	if host := os.Getenv("TIMEAGO_HOST"); host != "" {
		c.Server.Host = host
	}
	if v := os.Getenv("TIMEAGO_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			c.Server.Port = p
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// GetDB returns the database path, empty meaning db.DefaultDBPath.
func (c *Config) GetDB() string {
	return c.DB
}

// LocaleStrings resolves the configured locale: the locale file or named
// built-in, with the [strings] overrides layered on top.
func (c *Config) LocaleStrings() (*locale.Strings, error) {
	var (
		s   *locale.Strings
		err error
	)
	if c.LocaleFile != "" {
		s, err = locale.LoadFile(c.LocaleFile)
	} else {
		name := c.Locale
		if name == "" {
			name = "en"
		}
		s, err = locale.Lookup(name)
	}
	if err != nil {
		return nil, err
	}

	if c.Strings.IsZero() {
		return s, nil
	}
	return c.Strings.Apply(s)
}

// Settings converts the configuration into rendering settings.
func (c *Config) Settings() (settings.Settings, error) {
	strs, err := c.LocaleStrings()
	if err != nil {
		return settings.Settings{}, err
	}

	s := settings.Settings{
		RefreshInterval: time.Duration(c.RefreshMillis) * time.Millisecond,
		AllowFuture:     c.AllowFuture,
		Cutoff:          time.Duration(c.CutoffMillis) * time.Millisecond,
		LocaleTitle:     c.LocaleTitle,
		Strings:         strs,
	}
	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# timeago configuration file
# Location: ~/.timeago/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (TIMEAGO_*)
#   3. This config file
#   4. Built-in defaults

# Path to the database file
# Default: ~/.timeago/timeago.db
# Environment: TIMEAGO_DB
# db = "/path/to/timeago.db"

# Disable colored output
# Environment: TIMEAGO_NO_COLOR (any value = true)
# no_color = false

# Built-in locale (see "timeago locales")
# Environment: TIMEAGO_LOCALE
# locale = "en"

# User locale file, replaces locale when set
# Environment: TIMEAGO_LOCALE_FILE
# locale_file = "~/.timeago/locale.toml"

# Refresh interval in milliseconds, 0 disables auto refresh
# Environment: TIMEAGO_REFRESH_MILLIS
# refresh_millis = 60000

# Render future instants as "... from now"
# Environment: TIMEAGO_ALLOW_FUTURE
# allow_future = false

# Stop refreshing entries older than this many milliseconds, 0 means never
# Environment: TIMEAGO_CUTOFF_MILLIS
# cutoff_millis = 0

# Set each entry's title to its instant as a date string
# Environment: TIMEAGO_LOCALE_TITLE
# locale_title = false

# Override individual words of the selected locale
# [strings]
# suffix_ago = "back"
# numeral_style = "grouped"
# [strings.templates]
# minutes = "%d mins"

# HTTP API
# Environment: TIMEAGO_HOST, TIMEAGO_PORT
# [server]
# host = "127.0.0.1"
# port = 18765

# Snapshots taken before "timeago init --force" replaces the database
# [backup]
# dir = ""        # empty keeps them next to the database
# max_count = 3   # 0 disables snapshots
`
}

// WriteConfigFile writes the sample config file to the specified path.
// Creates parent directories if needed.
func WriteConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0644)
}
