package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/vesync-go/vesync/pkg/vesync"
)

// DeviceTableData returns the table data for a device, with bold name
func DeviceTableData(dev vesync.Device) pterm.TableData {
	b := dev.Base()
	return pterm.TableData{
		[]string{pterm.Bold.Sprint("Name"), pterm.Bold.Sprint(b.Details.DeviceName)},
		[]string{"Model", b.Details.DeviceType},
		[]string{"Family", string(b.Family)},
		[]string{"CID", b.Details.CID},
		[]string{"Status", b.Details.DeviceStatus},
		[]string{"Connection", b.Details.ConnectionStatus},
		[]string{"Firmware", b.Details.CurrentFirmVersion},
	}
}

// DeviceParseable returns the parseable key=value string for a device
func DeviceParseable(dev vesync.Device) string {
	b := dev.Base()
	return fmt.Sprintf(
		"name=%q model=%q family=%q cid=%q status=%q connection=%q subdevice=%d",
		b.Details.DeviceName,
		b.Details.DeviceType,
		b.Family,
		b.Details.CID,
		b.Details.DeviceStatus,
		b.Details.ConnectionStatus,
		b.Details.SubDeviceNo,
	)
}

// deviceYAMLEntry is the structured form used by --yaml output
type deviceYAMLEntry struct {
	Name       string `yaml:"name"`
	Model      string `yaml:"model"`
	Family     string `yaml:"family"`
	CID        string `yaml:"cid"`
	Status     string `yaml:"status"`
	Connection string `yaml:"connection"`
	SubDevice  int    `yaml:"subdevice,omitempty"`
	Firmware   string `yaml:"firmware,omitempty"`
}

// DevicesYAML renders the device list as a YAML document
func DevicesYAML(devices []vesync.Device) (string, error) {
	entries := make([]deviceYAMLEntry, 0, len(devices))
	for _, dev := range devices {
		b := dev.Base()
		entries = append(entries, deviceYAMLEntry{
			Name:       b.Details.DeviceName,
			Model:      b.Details.DeviceType,
			Family:     string(b.Family),
			CID:        b.Details.CID,
			Status:     b.Details.DeviceStatus,
			Connection: b.Details.ConnectionStatus,
			SubDevice:  b.Details.SubDeviceNo,
			Firmware:   b.Details.CurrentFirmVersion,
		})
	}
	out, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to render yaml: %w", err)
	}
	return string(out), nil
}

// EnergyTableData returns the table data for one energy history period
func EnergyTableData(period string, detail *vesync.EnergyDetail) pterm.TableData {
	return pterm.TableData{
		[]string{pterm.Bold.Sprint("Period"), pterm.Bold.Sprint(period)},
		[]string{"Today", fmt.Sprintf("%.3f kWh", detail.EnergyConsumptionOfToday)},
		[]string{"Total", fmt.Sprintf("%.3f kWh", detail.TotalEnergy)},
		[]string{"Max", fmt.Sprintf("%.3f kWh", detail.MaxEnergy)},
		[]string{"Cost per kWh", fmt.Sprintf("%.2f %s", detail.CostPerKWH, detail.Currency)},
	}
}
