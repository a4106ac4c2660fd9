package vesync

import (
	"context"
	"encoding/json"
	"math"
	"net/http"

	"github.com/vesync-go/vesync/internal/errors"
)

// switchBase carries the state shared by in-wall switches.
type switchBase struct {
	BaseDevice

	prefix     string
	activeTime int
}

func newSwitchBase(details DeviceDetails, client *Client, prefix string, features []string) switchBase {
	return switchBase{
		BaseDevice: newBaseDevice(details, client, FamilySwitch, features),
		prefix:     prefix,
	}
}

// ActiveTime returns the switch active time in minutes.
func (s *switchBase) ActiveTime() int { return s.activeTime }

func (s *switchBase) callDevice(ctx context.Context, method, api string, body RequestBody) (json.RawMessage, error) {
	raw, err := s.client.call(ctx, method, s.prefix+api, s.client.ReqHeaders(), body)
	if err != nil {
		return nil, err
	}
	if !CodeCheck(raw) {
		return nil, errors.APIErrorf("%s returned non-zero code", api)
	}
	return raw, nil
}

// Turn switches the switch to StatusOn or StatusOff.
func (s *switchBase) Turn(ctx context.Context, status string) error {
	body := s.client.ReqBodyStatus()
	body["uuid"] = s.Details.UUID
	body["status"] = status

	if _, err := s.callDevice(ctx, http.MethodPut, "devicestatus", body); err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to turn switch", "status", status)
	}
	s.Details.DeviceStatus = status
	return nil
}

// GetConfig fetches firmware settings.
func (s *switchBase) GetConfig(ctx context.Context) error {
	body := s.client.ReqBodyDeviceDetail()
	body["method"] = "configurations"
	body["uuid"] = s.Details.UUID

	raw, err := s.callDevice(ctx, http.MethodPost, "configurations", body)
	if err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to get configuration")
	}
	return s.decodeConfig(raw)
}

// WallSwitch is the Etekcity in-wall light switch (ESWL01, ESWL03).
type WallSwitch struct {
	switchBase
}

// NewWallSwitch creates an in-wall switch device.
func NewWallSwitch(details DeviceDetails, client *Client) *WallSwitch {
	s := &WallSwitch{switchBase: newSwitchBase(details, client, "/inwallswitch/v1/device/", nil)}
	return s
}

// Update refreshes the switch details.
func (s *WallSwitch) Update(ctx context.Context) error {
	body := s.client.ReqBodyDeviceDetail()
	body["uuid"] = s.Details.UUID

	raw, err := s.callDevice(ctx, http.MethodPost, "devicedetail", body)
	if err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to get switch details")
	}
	var resp struct {
		DeviceStatus     string `json:"deviceStatus"`
		ConnectionStatus string `json:"connectionStatus"`
		ActiveTime       int    `json:"activeTime"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to decode switch details")
	}
	if resp.DeviceStatus != "" {
		s.Details.DeviceStatus = resp.DeviceStatus
	}
	if resp.ConnectionStatus != "" {
		s.Details.ConnectionStatus = resp.ConnectionStatus
	}
	s.activeTime = resp.ActiveTime
	return nil
}

// DimmerSwitch is the Etekcity in-wall dimmer (ESWD16) with an RGB
// faceplate indicator.
type DimmerSwitch struct {
	switchBase

	brightness      int
	rgbStatus       string
	rgbValue        RGB
	indicatorStatus string
}

// NewDimmerSwitch creates an in-wall dimmer device.
func NewDimmerSwitch(details DeviceDetails, client *Client) *DimmerSwitch {
	s := &DimmerSwitch{switchBase: newSwitchBase(details, client, "/dimmer/v1/device/", []string{FeatureDimmable})}
	return s
}

// Update refreshes the dimmer details including brightness and RGB state.
func (s *DimmerSwitch) Update(ctx context.Context) error {
	body := s.client.ReqBodyDeviceDetail()
	body["uuid"] = s.Details.UUID

	raw, err := s.callDevice(ctx, http.MethodPost, "devicedetail", body)
	if err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to get dimmer details")
	}
	var resp struct {
		DeviceStatus         string `json:"deviceStatus"`
		ConnectionStatus     string `json:"connectionStatus"`
		ActiveTime           int    `json:"activeTime"`
		Brightness           int    `json:"brightness"`
		RGBStatus            string `json:"rgbStatus"`
		RGBValue             RGB    `json:"rgbValue"`
		IndicatorlightStatus string `json:"indicatorlightStatus"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to decode dimmer details")
	}
	if resp.DeviceStatus != "" {
		s.Details.DeviceStatus = resp.DeviceStatus
	}
	if resp.ConnectionStatus != "" {
		s.Details.ConnectionStatus = resp.ConnectionStatus
	}
	s.activeTime = resp.ActiveTime
	s.brightness = resp.Brightness
	s.rgbStatus = resp.RGBStatus
	s.rgbValue = resp.RGBValue
	s.indicatorStatus = resp.IndicatorlightStatus
	return nil
}

// Brightness returns the dimmer brightness between 1 and 100.
func (s *DimmerSwitch) Brightness() int { return s.brightness }

// RGBStatus reports whether the RGB faceplate light is on.
func (s *DimmerSwitch) RGBStatus() string { return s.rgbStatus }

// RGBValue returns the faceplate light color.
func (s *DimmerSwitch) RGBValue() RGB { return s.rgbValue }

// IndicatorStatus reports whether the indicator light is on.
func (s *DimmerSwitch) IndicatorStatus() string { return s.indicatorStatus }

// SetBrightness sets the dimmer brightness, between 1 and 100.
func (s *DimmerSwitch) SetBrightness(ctx context.Context, brightness int) error {
	if brightness < 1 || brightness > 100 {
		return errors.InvalidInputf("brightness %d out of range 1-100", brightness)
	}

	body := s.client.ReqBodyStatus()
	body["uuid"] = s.Details.UUID
	body["brightness"] = brightness

	if _, err := s.callDevice(ctx, http.MethodPut, "updatebrightness", body); err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to set brightness", "brightness", brightness)
	}
	s.brightness = brightness
	s.Details.DeviceStatus = StatusOn
	return nil
}

// TurnIndicator switches the faceplate indicator light to StatusOn or
// StatusOff.
func (s *DimmerSwitch) TurnIndicator(ctx context.Context, status string) error {
	body := s.client.ReqBodyStatus()
	body["uuid"] = s.Details.UUID
	body["status"] = status

	if _, err := s.callDevice(ctx, http.MethodPut, "indicatorlightstatus", body); err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to set indicator light", "status", status)
	}
	s.indicatorStatus = status
	return nil
}

// TurnRGBLight switches the RGB faceplate light, optionally changing its
// color. A nil color keeps the current one.
func (s *DimmerSwitch) TurnRGBLight(ctx context.Context, status string, color *RGB) error {
	body := s.client.ReqBodyStatus()
	body["uuid"] = s.Details.UUID
	body["status"] = status
	if color != nil {
		c := NewColorRGB(color.Red, color.Green, color.Blue)
		body["rgbValue"] = RequestBody{
			"red":   math.Round(c.RGB.Red),
			"green": math.Round(c.RGB.Green),
			"blue":  math.Round(c.RGB.Blue),
		}
	}

	if _, err := s.callDevice(ctx, http.MethodPut, "devicergbstatus", body); err != nil {
		return errors.LogErrorAndReturn(s.logger, err, "failed to set rgb light", "status", status)
	}
	s.rgbStatus = status
	if color != nil {
		s.rgbValue = RGB{
			Red:   math.Round(color.Red),
			Green: math.Round(color.Green),
			Blue:  math.Round(color.Blue),
		}
	}
	return nil
}

// SetRGBColor sets the faceplate light color and turns it on.
func (s *DimmerSwitch) SetRGBColor(ctx context.Context, red, green, blue float64) error {
	c := NewColorRGB(red, green, blue)
	rgb := c.RGB
	return s.TurnRGBLight(ctx, StatusOn, &rgb)
}
