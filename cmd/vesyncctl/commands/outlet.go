package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vesync-go/vesync/pkg/vesync"
)

// NewOutletCommand creates the outlet command
func NewOutletCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outlet",
		Short: "Manage smart outlets",
	}

	cmd.AddCommand(
		newOutletTurnCommand("on"),
		newOutletTurnCommand("off"),
		newOutletDetailsCommand(),
		newOutletEnergyCommand(),
		newOutletNightlightCommand(),
	)

	return cmd
}

func findOutlet(cmd *cobra.Command, name string) (vesync.Device, error) {
	c, err := getSession(cmd)
	if err != nil {
		return nil, err
	}
	return findDevice(c.Outlets, name)
}

// newOutletTurnCommand creates the outlet on/off command
func newOutletTurnCommand(status string) *cobra.Command {
	return &cobra.Command{
		Use:   status + " [name]",
		Short: "Turn an outlet " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := findOutlet(cmd, args[0])
			if err != nil {
				return err
			}
			if err := dev.Turn(cmd.Context(), status); err != nil {
				return fmt.Errorf("failed to turn outlet %s: %w", status, err)
			}
			pterm.Success.Printf("%s turned %s\n", dev.Base().Details.DeviceName, status)
			return nil
		},
	}
}

// newOutletDetailsCommand creates the outlet details command
func newOutletDetailsCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "details [name]",
		Short: "Show outlet details and readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := findOutlet(cmd, args[0])
			if err != nil {
				return err
			}
			if err := dev.Update(cmd.Context()); err != nil {
				return fmt.Errorf("failed to update outlet: %w", err)
			}

			if parseable {
				fmt.Println(DeviceParseable(dev))
				return nil
			}

			table := DeviceTableData(dev)
			if o, ok := dev.(interface {
				ActiveTime() int
				EnergyToday() float64
				Power() float64
				Voltage() float64
				Current() float64
			}); ok {
				table = append(table,
					[]string{"Active Time", fmt.Sprintf("%d min", o.ActiveTime())},
					[]string{"Energy Today", fmt.Sprintf("%.3f kWh", o.EnergyToday())},
					[]string{"Power", fmt.Sprintf("%.1f W", o.Power())},
					[]string{"Voltage", fmt.Sprintf("%.1f V", o.Voltage())},
					[]string{"Current", fmt.Sprintf("%.2f A", o.Current())},
				)
			}
			pterm.DefaultTable.WithData(table).Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newOutletEnergyCommand creates the outlet energy command
func newOutletEnergyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "energy [name] [week|month|year]",
		Short: "Show outlet energy history",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := findOutlet(cmd, args[0])
			if err != nil {
				return err
			}
			reporter, ok := dev.(vesync.EnergyReporter)
			if !ok || !dev.Base().Supports(vesync.FeatureEnergyHistory) {
				return fmt.Errorf("%s does not report energy history", dev.Base().Details.DeviceName)
			}

			period := vesync.EnergyWeek
			if len(args) > 1 {
				period = strings.ToLower(args[1])
			}

			ctx := cmd.Context()
			hist, ok := reporter.(energyHistorian)
			if !ok {
				return fmt.Errorf("%s does not report energy history", dev.Base().Details.DeviceName)
			}

			var detail *vesync.EnergyDetail
			switch period {
			case vesync.EnergyWeek:
				detail, err = hist.GetWeeklyEnergy(ctx)
			case vesync.EnergyMonth:
				detail, err = hist.GetMonthlyEnergy(ctx)
			case vesync.EnergyYear:
				detail, err = hist.GetYearlyEnergy(ctx)
			default:
				return fmt.Errorf("invalid period: %s. Must be one of: week, month, year", period)
			}
			if err != nil {
				return fmt.Errorf("failed to get energy history: %w", err)
			}
			if detail == nil {
				pterm.Info.Println("No energy data available")
				return nil
			}

			pterm.DefaultTable.WithData(EnergyTableData(period, detail)).Render()
			return nil
		},
	}
	return cmd
}

// newOutletNightlightCommand creates the outlet nightlight command
func newOutletNightlightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nightlight [name] [auto|manual]",
		Short: "Set the nightlight mode of a 15A outlet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := findOutlet(cmd, args[0])
			if err != nil {
				return err
			}
			outlet, ok := dev.(*vesync.Outlet15A)
			if !ok {
				return fmt.Errorf("%s has no nightlight", dev.Base().Details.DeviceName)
			}

			mode := strings.ToLower(args[1])
			switch mode {
			case vesync.NightlightAuto, vesync.NightlightManual:
				// Valid mode
			default:
				return fmt.Errorf("invalid mode: %s. Must be one of: auto, manual", mode)
			}
			if err := outlet.TurnNightlight(cmd.Context(), mode); err != nil {
				return fmt.Errorf("failed to set nightlight: %w", err)
			}
			pterm.Success.Printf("nightlight set to %s\n", mode)
			return nil
		},
	}
}

// energyHistorian is the per-period fetch surface shared by energy outlets
type energyHistorian interface {
	GetWeeklyEnergy(ctx context.Context) (*vesync.EnergyDetail, error)
	GetMonthlyEnergy(ctx context.Context) (*vesync.EnergyDetail, error)
	GetYearlyEnergy(ctx context.Context) (*vesync.EnergyDetail, error)
}
