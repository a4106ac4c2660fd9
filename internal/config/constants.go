package config

import "time"

// Common constants shared between the library and the CLI
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "vesync"

	// ClientConfigFilename is the base filename for CLI config
	ClientConfigFilename = "vesyncctl.yaml"

	// DefaultTimeZone is used when no time zone is configured
	DefaultTimeZone = "America/New_York"

	// DefaultRegion is the default device region
	DefaultRegion = "US"
)

// Default timeouts and intervals
const (
	// DefaultUpdateInterval is the minimum time between device list refreshes
	DefaultUpdateInterval = 30 * time.Second

	// DefaultEnergyUpdateInterval is the minimum time between energy history refreshes
	DefaultEnergyUpdateInterval = 6 * time.Hour
)

// Logging constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)
