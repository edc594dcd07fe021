package config

import (
	"strings"

	"github.com/spf13/viper"

	"xlinventory/internal/errors"
)

// DefaultSettingsFile is the settings document the entry point reads
const DefaultSettingsFile = "common_val.yml"

// Config represents the process configuration taken from the environment.
// The inventory content itself comes from the settings document.
type Config struct {
	Log      LogConfig
	Database DatabaseConfig
	Output   OutputConfig
	Settings SettingsConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// DatabaseConfig holds the connection used by the postgres sheet source
type DatabaseConfig struct {
	URL string
}

// OutputConfig controls document serialization
type OutputConfig struct {
	Indent bool
}

// SettingsConfig locates the settings document
type SettingsConfig struct {
	File string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	return LoadFrom(newViper())
}

// LoadFrom reads configuration from an existing viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := &Config{
		Log: LogConfig{
			Level: strings.ToUpper(v.GetString("LOG_LEVEL")),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		Output: OutputConfig{
			Indent: v.GetBool("OUTPUT_INDENT"),
		},
		Settings: SettingsConfig{
			File: v.GetString("INVENTORY_SETTINGS"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("OUTPUT_INDENT", false)
	v.SetDefault("INVENTORY_SETTINGS", DefaultSettingsFile)
	v.AutomaticEnv()
	return v
}

// validateConfig leaves LOG_LEVEL alone: names the logger does not know
// fall back to INFO rather than failing the run.
func validateConfig(config *Config) error {
	if config.Settings.File == "" {
		return errors.ConfigInvalid("INVENTORY_SETTINGS must not be empty")
	}
	return nil
}

// RequireDatabase fails when a database-backed source is selected without a URL
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required when inventory_tables is set")
	}
	return nil
}
