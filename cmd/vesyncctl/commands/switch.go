package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vesync-go/vesync/pkg/vesync"
)

// NewSwitchCommand creates the switch command
func NewSwitchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Manage wall switches and dimmers",
	}

	cmd.AddCommand(
		newSwitchTurnCommand("on"),
		newSwitchTurnCommand("off"),
		newSwitchBrightnessCommand(),
		newSwitchIndicatorCommand(),
		newSwitchColorCommand(),
	)

	return cmd
}

func findSwitch(cmd *cobra.Command, name string) (vesync.Device, error) {
	c, err := getSession(cmd)
	if err != nil {
		return nil, err
	}
	return findDevice(c.Switches, name)
}

// findDimmer looks up a switch by name and requires it to be a dimmer.
func findDimmer(cmd *cobra.Command, name string) (*vesync.DimmerSwitch, error) {
	dev, err := findSwitch(cmd, name)
	if err != nil {
		return nil, err
	}
	dimmer, ok := dev.(*vesync.DimmerSwitch)
	if !ok {
		return nil, fmt.Errorf("%s is not a dimmer", dev.Base().Details.DeviceName)
	}
	return dimmer, nil
}

// newSwitchTurnCommand creates the switch on/off command
func newSwitchTurnCommand(status string) *cobra.Command {
	return &cobra.Command{
		Use:   status + " [name]",
		Short: "Turn a switch " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := findSwitch(cmd, args[0])
			if err != nil {
				return err
			}
			if err := dev.Turn(cmd.Context(), status); err != nil {
				return fmt.Errorf("failed to turn switch %s: %w", status, err)
			}
			pterm.Success.Printf("%s turned %s\n", dev.Base().Details.DeviceName, status)
			return nil
		},
	}
}

// newSwitchBrightnessCommand creates the switch brightness command
func newSwitchBrightnessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "brightness [name] [value]",
		Short: "Set dimmer brightness (1-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dimmer, err := findDimmer(cmd, args[0])
			if err != nil {
				return err
			}
			brightness, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid brightness value: %w", err)
			}
			if err := dimmer.SetBrightness(cmd.Context(), brightness); err != nil {
				return fmt.Errorf("failed to set brightness: %w", err)
			}
			pterm.Success.Printf("brightness set to %d\n", brightness)
			return nil
		},
	}
}

// newSwitchIndicatorCommand creates the switch indicator command
func newSwitchIndicatorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "indicator [name] [on|off]",
		Short: "Turn the dimmer indicator light on or off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dimmer, err := findDimmer(cmd, args[0])
			if err != nil {
				return err
			}
			status := args[1]
			if status != vesync.StatusOn && status != vesync.StatusOff {
				return fmt.Errorf("invalid status: %s. Must be one of: on, off", status)
			}
			if err := dimmer.TurnIndicator(cmd.Context(), status); err != nil {
				return fmt.Errorf("failed to set indicator light: %w", err)
			}
			pterm.Success.Printf("indicator light turned %s\n", status)
			return nil
		},
	}
}

// newSwitchColorCommand creates the switch color command
func newSwitchColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "color [name] [red] [green] [blue]",
		Short: "Set the dimmer faceplate color (components 0-255)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dimmer, err := findDimmer(cmd, args[0])
			if err != nil {
				return err
			}
			rgb := make([]float64, 3)
			for i, arg := range args[1:] {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid color component %q: %w", arg, err)
				}
				rgb[i] = v
			}
			if err := dimmer.SetRGBColor(cmd.Context(), rgb[0], rgb[1], rgb[2]); err != nil {
				return fmt.Errorf("failed to set color: %w", err)
			}
			pterm.Success.Printf("faceplate color set to %.0f,%.0f,%.0f\n", rgb[0], rgb[1], rgb[2])
			return nil
		},
	}
}
