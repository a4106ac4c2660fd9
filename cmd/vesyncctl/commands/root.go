package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vesync-go/vesync/internal/utils"
	"github.com/vesync-go/vesync/pkg/vesync"
)

// Define a custom type for context keys to avoid collisions
type loggerContextKey struct{}

// NewRootCommand creates the root command
func NewRootCommand(logger *slog.Logger, version, commit, buildDate string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vesyncctl",
		Short: "Control VeSync outlets, switches and purifiers",
		// Flags are only parsed once Execute runs, so overrides from the
		// command line are applied here rather than in main.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyRootFlags(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("username", "", "VeSync account email")
	cmd.PersistentFlags().String("password", "", "VeSync account password")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	// Add commands
	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(NewDevicesCommand())
	cmd.AddCommand(NewOutletCommand())
	cmd.AddCommand(NewSwitchCommand())
	cmd.AddCommand(NewPurifierCommand())
	cmd.AddCommand(NewTimerCommand())

	if logger != nil {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		cmd.SetContext(context.WithValue(parent, loggerContextKey{}, logger))
	}

	return cmd
}

// applyRootFlags overrides the configured logger and client credentials with
// the values of the global flags. cmd is the command being executed, whose
// flag set carries the parsed persistent flags.
func applyRootFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("log-level") || flags.Changed("log-format") {
		level, _ := flags.GetString("log-level")
		format, _ := flags.GetString("log-format")
		logger := utils.SetupLogger(utils.ValidateLogLevel(level), utils.ValidateLogFormat(format))
		utils.SetAsDefaultLogger(logger)
		cmd.SetContext(context.WithValue(cmd.Context(), loggerContextKey{}, logger))
	}

	username, _ := flags.GetString("username")
	password, _ := flags.GetString("password")
	if username == "" && password == "" {
		return nil
	}
	client, ok := cmd.Context().Value(ClientContextKey).(*vesync.Client)
	if !ok || client == nil {
		return fmt.Errorf("no client configured")
	}
	client.SetCredentials(username, password)
	return nil
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	}
}
