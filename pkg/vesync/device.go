package vesync

import (
	"context"
	"fmt"
	"log/slog"
)

// DeviceDetails is one entry of the cloud device list response.
type DeviceDetails struct {
	DeviceName         string `json:"deviceName"`
	DeviceImg          string `json:"deviceImg"`
	CID                string `json:"cid"`
	ConnectionStatus   string `json:"connectionStatus"`
	ConnectionType     string `json:"connectionType"`
	DeviceType         string `json:"deviceType"`
	Type               string `json:"type"`
	UUID               string `json:"uuid"`
	ConfigModule       string `json:"configModule"`
	MacID              string `json:"macID"`
	Mode               string `json:"mode"`
	Speed              any    `json:"speed"`
	CurrentFirmVersion string `json:"currentFirmVersion"`
	DeviceRegion       string `json:"deviceRegion"`
	SubDeviceNo        int    `json:"subDeviceNo"`
	DeviceStatus       string `json:"deviceStatus"`
}

// DeviceConfig holds firmware and protection settings pulled by GetConfig.
type DeviceConfig struct {
	CurrentFirmVersion string  `json:"currentFirmVersion"`
	LatestFirmVersion  string  `json:"latestFirmVersion"`
	MaxPower           float64 `json:"maxPower"`
	Threshold          float64 `json:"threshold"`
	PowerProtection    string  `json:"powerProtectionStatus"`
	EnergySavingStatus string  `json:"energySavingStatus"`
}

// Device is the interface every supported device implements. Family-specific
// capabilities (energy history, brightness) live on the concrete types.
type Device interface {
	// Base exposes the fields shared by all devices.
	Base() *BaseDevice
	// Update refreshes the device details from the cloud.
	Update(ctx context.Context) error
	// Turn switches the device to StatusOn or StatusOff.
	Turn(ctx context.Context, status string) error
}

// TurnOn switches dev on.
func TurnOn(ctx context.Context, dev Device) error { return dev.Turn(ctx, StatusOn) }

// TurnOff switches dev off.
func TurnOff(ctx context.Context, dev Device) error { return dev.Turn(ctx, StatusOff) }

// BaseDevice carries the properties shared across all device families.
type BaseDevice struct {
	Details  DeviceDetails
	Config   DeviceConfig
	Family   DeviceFamily
	Features []string
	PID      string

	client *Client
	logger *slog.Logger
}

func newBaseDevice(details DeviceDetails, client *Client, family DeviceFamily, features []string) BaseDevice {
	// Offline devices report a stale status; treat them as off
	if details.ConnectionStatus != ConnectionOnline {
		details.DeviceStatus = StatusOff
	}
	return BaseDevice{
		Details:  details,
		Family:   family,
		Features: features,
		client:   client,
		logger:   client.logger.With("device", details.DeviceName, "model", details.DeviceType),
	}
}

// Base returns the device itself; concrete types embed BaseDevice.
func (d *BaseDevice) Base() *BaseDevice { return d }

// IsOn reports whether the device is switched on.
func (d *BaseDevice) IsOn() bool {
	return d.Details.DeviceStatus == StatusOn
}

// Supports reports whether the device advertises the given feature.
func (d *BaseDevice) Supports(feature string) bool {
	for _, f := range d.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Equal reports whether other refers to the same physical device, matching on
// cid and sub-device number.
func (d *BaseDevice) Equal(other *BaseDevice) bool {
	return other != nil &&
		d.Details.CID == other.Details.CID &&
		d.Details.SubDeviceNo == other.Details.SubDeviceNo
}

// FirmwareUpdateAvailable reports whether GetConfig found a newer firmware.
func (d *BaseDevice) FirmwareUpdateAvailable() bool {
	cur, latest := d.Config.CurrentFirmVersion, d.Config.LatestFirmVersion
	if cur == "" || latest == "" {
		d.logger.Debug("call GetConfig first to fetch firmware versions")
		return false
	}
	return cur != latest
}

func (d *BaseDevice) String() string {
	return fmt.Sprintf("Device Name: %s, Device Type: %s, SubDevice No.: %d, Status: %s",
		d.Details.DeviceName, d.Details.DeviceType, d.Details.SubDeviceNo, d.Details.DeviceStatus)
}

// callAPIV1 posts a managed-device request for this device.
func (d *BaseDevice) callAPIV1(ctx context.Context, api string, body RequestBody) (map[string]any, error) {
	raw, err := d.client.call(ctx, "POST", "/cloud/v1/deviceManaged/"+api, d.client.ReqHeaderBypass(), body)
	if err != nil {
		return nil, err
	}
	return decodeMap(raw)
}

// FetchPID retrieves the managed device product id.
func (d *BaseDevice) FetchPID(ctx context.Context) error {
	body := d.client.ReqBodyDeviceDetail()
	body["configModule"] = d.Details.ConfigModule
	body["region"] = d.Details.DeviceRegion
	body["method"] = "configInfo"

	r, err := d.callAPIV1(ctx, "configInfo", body)
	if err != nil {
		return err
	}
	result, ok := r["result"].(map[string]any)
	if !ok || !NestedCodeCheck(r) {
		d.logger.Error("error getting config info")
		return fmt.Errorf("configInfo for %s: unexpected response", d.Details.DeviceName)
	}
	if pid, ok := result["pid"].(string); ok {
		d.PID = pid
	}
	return nil
}
