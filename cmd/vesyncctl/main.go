package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/vesync-go/vesync/cmd/vesyncctl/commands"
	"github.com/vesync-go/vesync/internal/config"
	"github.com/vesync-go/vesync/internal/utils"
	"github.com/vesync-go/vesync/pkg/vesync"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Load configuration first
	cfg, err := config.Load(config.ClientConfigFilename, "")
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger := utils.SetupErrorLogger()
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		// If file not found, use defaults
		cfg = &config.Config{
			Logging: config.LoggingConfig{
				Level:  config.LogLevelInfo,
				Format: config.LogFormatText,
			},
		}
	}

	// Set up logging with the configured level and format
	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	rootCmd := commands.NewRootCommand(logger, version, commit, buildDate)

	// Credentials come from the config file here; command line flags
	// override them once parsed, in the root command's pre-run hook.
	client := vesync.New(cfg.Account.Username, cfg.Account.Password, logger)
	client.SetTimeZone(cfg.Account.TimeZone)
	client.SetRegion(cfg.Account.Region)
	client.SetBaseURL(cfg.API.BaseURL)
	client.SetRedact(cfg.API.Redact)
	client.SetUpdateInterval(time.Duration(cfg.API.UpdateInterval) * time.Second)
	client.SetEnergyUpdateInterval(time.Duration(cfg.API.EnergyUpdateInterval) * time.Second)

	// Get the context initialized by NewRootCommand (which includes the
	// logger) and add the client to it.
	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, commands.ClientContextKey, client)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
