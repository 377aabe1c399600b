package divreminder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "DIVREMINDER"
	envFile    = ".env"

	// DefaultSyncURL is the blog page dividends are imported from.
	DefaultSyncURL = "https://www.maximilienzakowski.org/2026/01/02/dividends-2026-2/"
)

// SyncConfig configures the dividend import.
type SyncConfig struct {
	URL string `mapstructure:"url"` // Page scraped by SyncDividends when no URL is given
}

// QuoteConfig configures stock quote lookups.
type QuoteConfig struct {
	BaseURL  string        `mapstructure:"base_url"`  // Chart API base URL
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // How long quotes are cached, 0 disables caching
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // Per request timeout
	Rate    float64       `mapstructure:"rate"`    // Requests per second, 0 disables limiting
}

// ReminderConfig configures the dividend reminder.
type ReminderConfig struct {
	WindowDays int    `mapstructure:"window_days"` // Days ahead included in a reminder
	Schedule   string `mapstructure:"schedule"`    // Cron expression of the daily check
	Currency   string `mapstructure:"currency"`    // ISO code amounts are shown in
	Notifier   string `mapstructure:"notifier"`    // "log" or "mailgun"
	TimeZone   string `mapstructure:"time_zone"`   // IANA zone of the schedule, empty for local time
}

// MailgunConfig holds the credentials of the email notifier.
type MailgunConfig struct {
	Domain    string `mapstructure:"domain"`
	APIKey    string `mapstructure:"api_key"`
	Sender    string `mapstructure:"sender"`
	Recipient string `mapstructure:"recipient"`
}

// Config is the divreminder configuration, read from config.yaml in the config
// directory and overridden by DIVREMINDER_* environment variables.
type Config struct {
	viper     *viper.Viper
	ConfigDir string         `mapstructure:"-"`
	Database  string         `mapstructure:"database"`  // SQLite file, relative paths are resolved against ConfigDir
	LogLevel  string         `mapstructure:"log_level"` // zap level name
	Sync      SyncConfig     `mapstructure:"sync"`
	Quote     QuoteConfig    `mapstructure:"quote"`
	HTTP      HTTPConfig     `mapstructure:"http"`
	Reminder  ReminderConfig `mapstructure:"reminder"`
	Mailgun   MailgunConfig  `mapstructure:"mailgun"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", "divreminder.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("sync.url", DefaultSyncURL)
	v.SetDefault("quote.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quote.cache_ttl", "15m")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.rate", 2.0)
	v.SetDefault("reminder.window_days", 7)
	v.SetDefault("reminder.schedule", "0 9 * * *")
	v.SetDefault("reminder.currency", "EUR")
	v.SetDefault("reminder.notifier", "log")
	v.SetDefault("reminder.time_zone", "")
	v.SetDefault("mailgun.domain", "")
	v.SetDefault("mailgun.api_key", "")
	v.SetDefault("mailgun.sender", "")
	v.SetDefault("mailgun.recipient", "")
}

// LoadConfig reads the configuration of configDir, creating the directory and a
// config.yaml holding the defaults on first use. A .env file in the directory is
// loaded into the environment first; variables already set take precedence.
func LoadConfig(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config dir %s: %w", configDir, err)
	}

	if err := godotenv.Load(filepath.Join(configDir, envFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing config file : %w", err)
		}
	}

	cfg := &Config{viper: v, ConfigDir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return cfg, nil
}

// DefaultConfigDir is the divreminder folder under the user configuration directory.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir : %w", err)
	}
	return filepath.Join(dir, "divreminder"), nil
}

// DatabasePath resolves Database against the config directory.
func (cfg *Config) DatabasePath() string {
	if filepath.IsAbs(cfg.Database) || cfg.ConfigDir == "" {
		return cfg.Database
	}
	return filepath.Join(cfg.ConfigDir, cfg.Database)
}

// Location returns the time zone of the reminder schedule.
func (cfg *Config) Location() (*time.Location, error) {
	if cfg.Reminder.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Reminder.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", cfg.Reminder.TimeZone, err)
	}
	return loc, nil
}

// Set stores a single key in config.yaml and reloads the struct.
func (cfg *Config) Set(key, value string) error {
	if cfg.viper == nil {
		return errors.New("config was not loaded from a config dir")
	}
	if !cfg.viper.IsSet(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	cfg.viper.Set(key, value)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// Settings returns every key with its effective value.
func (cfg *Config) Settings() map[string]any {
	if cfg.viper == nil {
		return map[string]any{}
	}
	return cfg.viper.AllSettings()
}
