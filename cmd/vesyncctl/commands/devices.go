package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewDevicesCommand creates the devices command
func NewDevicesCommand() *cobra.Command {
	var parseable bool
	var yamlOut bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List account devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getSession(cmd)
			if err != nil {
				return err
			}
			devices := c.Devices()

			if len(devices) == 0 {
				if parseable || yamlOut {
					return nil
				}
				pterm.Info.Println("No devices found")
				return nil
			}

			if yamlOut {
				out, err := DevicesYAML(devices)
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}

			if parseable {
				for _, dev := range devices {
					fmt.Println(DeviceParseable(dev))
				}
				return nil
			}

			for _, dev := range devices {
				pterm.DefaultTable.WithData(DeviceTableData(dev)).Render()
				pterm.Println() // Add a blank line between devices
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	cmd.Flags().BoolVar(&yamlOut, "yaml", false, "Output as YAML")
	return cmd
}
