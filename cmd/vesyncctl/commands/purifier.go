package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vesync-go/vesync/pkg/vesync"
)

// NewPurifierCommand creates the purifier command
func NewPurifierCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purifier",
		Short: "Manage air purifiers",
	}

	cmd.AddCommand(
		newPurifierTurnCommand("on"),
		newPurifierTurnCommand("off"),
		newPurifierDetailsCommand(),
		newPurifierModeCommand(),
		newPurifierSpeedCommand(),
		newPurifierTimerCommand(),
	)

	return cmd
}

// findPurifier looks up a fan by name and requires it to be an air purifier.
func findPurifier(cmd *cobra.Command, name string) (*vesync.AirPurifier, error) {
	c, err := getSession(cmd)
	if err != nil {
		return nil, err
	}
	dev, err := findDevice(c.Fans, name)
	if err != nil {
		return nil, err
	}
	purifier, ok := dev.(*vesync.AirPurifier)
	if !ok {
		return nil, fmt.Errorf("%s is not an air purifier", dev.Base().Details.DeviceName)
	}
	return purifier, nil
}

// newPurifierTurnCommand creates the purifier on/off command
func newPurifierTurnCommand(status string) *cobra.Command {
	return &cobra.Command{
		Use:   status + " [name]",
		Short: "Turn a purifier " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purifier, err := findPurifier(cmd, args[0])
			if err != nil {
				return err
			}
			if err := purifier.Turn(cmd.Context(), status); err != nil {
				return fmt.Errorf("failed to turn purifier %s: %w", status, err)
			}
			pterm.Success.Printf("%s turned %s\n", purifier.Base().Details.DeviceName, status)
			return nil
		},
	}
}

// newPurifierDetailsCommand creates the purifier details command
func newPurifierDetailsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "details [name]",
		Short: "Show purifier details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purifier, err := findPurifier(cmd, args[0])
			if err != nil {
				return err
			}
			if err := purifier.Update(cmd.Context()); err != nil {
				return fmt.Errorf("failed to update purifier: %w", err)
			}

			table := DeviceTableData(purifier)
			table = append(table,
				[]string{"Mode", purifier.Mode},
				[]string{"Fan Level", strconv.Itoa(purifier.FanLevel)},
				[]string{"Filter Life", fmt.Sprintf("%d%%", purifier.FilterLife)},
				[]string{"Display", strconv.FormatBool(purifier.Display)},
				[]string{"Child Lock", strconv.FormatBool(purifier.ChildLock)},
			)
			if purifier.Supports(vesync.FeatureAirQuality) {
				table = append(table,
					[]string{"Air Quality", strconv.Itoa(purifier.AirQuality)},
					[]string{"PM2.5", strconv.Itoa(purifier.AirQualityValue)},
				)
			}
			pterm.DefaultTable.WithData(table).Render()
			return nil
		},
	}
}

// newPurifierModeCommand creates the purifier mode command
func newPurifierModeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mode [name] [manual|auto|sleep|off]",
		Short: "Set the purifier operating mode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			purifier, err := findPurifier(cmd, args[0])
			if err != nil {
				return err
			}
			mode := strings.ToLower(args[1])
			if err := purifier.SetMode(cmd.Context(), mode); err != nil {
				return fmt.Errorf("failed to set mode: %w", err)
			}
			pterm.Success.Printf("mode set to %s\n", mode)
			return nil
		},
	}
}

// newPurifierSpeedCommand creates the purifier speed command
func newPurifierSpeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "speed [name] [level]",
		Short: "Set the fan speed, 0 cycles to the next level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			purifier, err := findPurifier(cmd, args[0])
			if err != nil {
				return err
			}
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid fan level: %w", err)
			}
			if err := purifier.SetFanSpeed(cmd.Context(), level); err != nil {
				return fmt.Errorf("failed to set fan speed: %w", err)
			}
			pterm.Success.Printf("fan speed set to %d\n", purifier.FanLevel)
			return nil
		},
	}
}

// newPurifierTimerCommand creates the purifier timer command group, driving
// the countdown the device itself runs.
func newPurifierTimerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Manage the purifier auto-off timer",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [name] [seconds]",
			Short: "Start an auto-off countdown",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				purifier, err := findPurifier(cmd, args[0])
				if err != nil {
					return err
				}
				seconds, err := strconv.Atoi(args[1])
				if err != nil || seconds <= 0 {
					return fmt.Errorf("invalid timer duration %q", args[1])
				}
				timer, err := purifier.SetTimer(cmd.Context(), seconds)
				if err != nil {
					return fmt.Errorf("failed to set timer: %w", err)
				}
				pterm.Success.Printf("%s turns %s in %ds\n",
					purifier.Base().Details.DeviceName, timer.Action, timer.Remaining())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show [name]",
			Short: "Show the running countdown",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				purifier, err := findPurifier(cmd, args[0])
				if err != nil {
					return err
				}
				timer, err := purifier.GetTimer(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get timer: %w", err)
				}
				if timer == nil {
					pterm.Info.Println("No timer running")
					return nil
				}
				pterm.DefaultTable.WithData(pterm.TableData{
					{"Action", timer.Action},
					{"Duration", fmt.Sprintf("%ds", timer.Duration)},
					{"Remaining", fmt.Sprintf("%ds", timer.Remaining())},
					{"Status", string(timer.Status())},
				}).Render()
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear [name]",
			Short: "Cancel the running countdown",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				purifier, err := findPurifier(cmd, args[0])
				if err != nil {
					return err
				}
				if err := purifier.ClearTimer(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear timer: %w", err)
				}
				pterm.Success.Println("timer cleared")
				return nil
			},
		},
	)

	return cmd
}
