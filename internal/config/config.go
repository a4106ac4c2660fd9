package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// XDG helpers
func getConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

func getConfigPath(filename string) string {
	return filepath.Join(getConfigBaseDir(), filename)
}

// Config represents the application configuration
type Config struct {
	Account AccountConfig
	API     APIConfig
	Logging LoggingConfig

	// Internal viper instance
	v *viper.Viper
}

// AccountConfig holds the VeSync account credentials and locale settings
type AccountConfig struct {
	Username string
	Password string
	TimeZone string `mapstructure:"time_zone"`
	Region   string
}

// APIConfig holds cloud API tunables
type APIConfig struct {
	BaseURL              string `mapstructure:"base_url"`              // override for testing, empty = production
	UpdateInterval       int    `mapstructure:"update_interval"`       // seconds between device list refreshes
	EnergyUpdateInterval int    `mapstructure:"energy_update_interval"` // seconds between energy refreshes
	Redact               bool   // redact sensitive values in debug logs
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from a file and environment variables
func Load(configName, configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	// Set default values
	v.SetDefault("account.time_zone", DefaultTimeZone)
	v.SetDefault("account.region", DefaultRegion)
	v.SetDefault("api.update_interval", int(DefaultUpdateInterval.Seconds()))
	v.SetDefault("api.energy_update_interval", int(DefaultEnergyUpdateInterval.Seconds()))
	v.SetDefault("api.redact", true)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)

	// Add config paths
	if configFile != "" {
		v.SetConfigFile(configFile)
		slog.Info("Using config file from command line", "path", configFile)
	} else {
		configPath := getConfigPath(configName)
		v.SetConfigFile(configPath)

		// Create config directory if it doesn't exist
		configDir := getConfigBaseDir()
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("error creating config directory: %w", err)
		}

		// Only log if config file exists
		if _, err := os.Stat(configPath); err == nil {
			slog.Info("Using default config file", "path", configPath)
		}
	}

	// Read config file - Viper will use defaults if file not found
	v.ReadInConfig()

	// Bind environment variables
	v.SetEnvPrefix("VESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to file
func (c *Config) Save(filename string) error {
	logger := slog.Default()
	configDir := getConfigBaseDir()
	configPath := getConfigPath(filename)

	logger.Info("Saving configuration", "path", configPath)

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Set config file path
	c.v.SetConfigFile(configPath)

	// Update viper with current values
	c.v.Set("account", c.Account)
	c.v.Set("api", c.API)
	c.v.Set("logging", c.Logging)

	// Write config - Viper will create the file if it doesn't exist
	if err := c.v.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	logger.Info("Configuration saved successfully", "path", configPath)
	return nil
}

// Watch registers a callback invoked whenever the config file changes on disk.
func (c *Config) Watch(logger *slog.Logger, onChange func(*Config)) {
	if c.v == nil {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Debug("config file changed", "path", e.Name, "op", e.Op.String())
		updated := &Config{v: c.v}
		if err := c.v.Unmarshal(updated); err != nil {
			logger.Error("failed to reload config", "error", err)
			return
		}
		onChange(updated)
	})
	c.v.WatchConfig()
}

// Get retrieves a value from the configuration
func (c *Config) Get(key string) interface{} {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}

// Set sets a value in the configuration
func (c *Config) Set(key string, value interface{}) {
	if c.v == nil {
		return
	}
	c.v.Set(key, value)
}
