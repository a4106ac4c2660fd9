package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vesync-go/vesync/pkg/vesync"
)

// getLoggerFromCmd returns the slog.Logger from the command context
func getLoggerFromCmd(cmd *cobra.Command) *slog.Logger {
	if logger, ok := cmd.Context().Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// getClient returns the VeSync client stored in the command context.
func getClient(cmd *cobra.Command) (*vesync.Client, error) {
	c, ok := cmd.Context().Value(ClientContextKey).(*vesync.Client)
	if !ok || c == nil {
		return nil, fmt.Errorf("no client configured")
	}
	return c, nil
}

// getSession returns a client with a valid session and a fresh device list.
func getSession(cmd *cobra.Command) (*vesync.Client, error) {
	c, err := getClient(cmd)
	if err != nil {
		return nil, err
	}
	logger := getLoggerFromCmd(cmd)
	ctx := cmd.Context()
	if !c.Enabled() {
		if err := c.Login(ctx); err != nil {
			logger.Error("login failed", "error", err)
			return nil, fmt.Errorf("login failed: %w", err)
		}
	}
	if err := c.Update(ctx); err != nil {
		logger.Error("device update failed", "error", err)
		return nil, fmt.Errorf("failed to update devices: %w", err)
	}
	return c, nil
}

// findDevice looks a device up by name, case-insensitively.
func findDevice(devices []vesync.Device, name string) (vesync.Device, error) {
	for _, dev := range devices {
		if strings.EqualFold(dev.Base().Details.DeviceName, name) {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("no device named %q", name)
}
