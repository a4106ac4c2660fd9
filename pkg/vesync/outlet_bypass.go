package vesync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vesync-go/vesync/internal/errors"
)

// outletV2 groups the outlets driven through the bypassV2 managed-device
// endpoint, where the device command travels as a nested payload.
type outletV2 struct {
	outletBase
}

// OutletBSDGO1 is the Greensun BSDGO1 smart plug. It only reports on/off
// state through the powerSwitch_1 property.
type OutletBSDGO1 struct {
	outletV2
}

// NewOutletBSDGO1 creates a BSDGO1 smart plug device.
func NewOutletBSDGO1(details DeviceDetails, client *Client) *OutletBSDGO1 {
	o := &OutletBSDGO1{}
	o.outletBase = newOutletBase(details, client, nil)
	return o
}

// Update refreshes the on/off state.
func (o *OutletBSDGO1) Update(ctx context.Context) error {
	result, err := o.bypass(ctx, bypassPayload("getProperty", RequestBody{}))
	if err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to get plug state")
	}
	if v, ok := toInt64(result["powerSwitch_1"]); ok {
		if v == 1 {
			o.Details.DeviceStatus = StatusOn
		} else {
			o.Details.DeviceStatus = StatusOff
		}
	}
	return nil
}

// Turn switches the plug to StatusOn or StatusOff.
func (o *OutletBSDGO1) Turn(ctx context.Context, status string) error {
	power := 0
	if status == StatusOn {
		power = 1
	}
	_, err := o.bypass(ctx, bypassPayload("setProperty", RequestBody{"powerSwitch_1": power}))
	if err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to turn plug", "status", status)
	}
	o.Details.DeviceStatus = status
	return nil
}

// OutletWYSMTOD16A is the GreenSun 16A outdoor plug. It reports live power
// readings through properties and energy history through getEnergyHistory.
type OutletWYSMTOD16A struct {
	outletV2
}

// NewOutletWYSMTOD16A creates a 16A outdoor plug device.
func NewOutletWYSMTOD16A(details DeviceDetails, client *Client) *OutletWYSMTOD16A {
	o := &OutletWYSMTOD16A{}
	o.outletBase = newOutletBase(details, client, []string{FeatureEnergyHistory})
	o.getEnergy = o.fetchEnergy
	return o
}

func (o *OutletWYSMTOD16A) getProperties(ctx context.Context, props []string) (map[string]any, error) {
	result, err := o.bypass(ctx, bypassPayload("getProperty", RequestBody{"properties": props}))
	if err != nil {
		return nil, err
	}
	inner, ok := result["result"].(map[string]any)
	if !ok {
		return nil, errors.APIErrorf("getProperty returned no properties")
	}
	return inner, nil
}

// Update refreshes the switch state and live power readings.
func (o *OutletWYSMTOD16A) Update(ctx context.Context) error {
	props, err := o.getProperties(ctx,
		[]string{"powerSwitch_1", "realTimeVoltage", "realTimeCurrent", "realTimePower", "electricalEnergy"})
	if err != nil {
		if errors.IsDeviceOffline(err) {
			return nil
		}
		return errors.LogErrorAndReturn(o.logger, err, "failed to get plug state")
	}

	o.Details.ConnectionStatus = ConnectionOnline
	if v, ok := toInt64(props["powerSwitch_1"]); ok {
		if v == 1 {
			o.Details.DeviceStatus = StatusOn
		} else {
			o.Details.DeviceStatus = StatusOff
		}
	}
	o.Readings.Voltage = toFloat(props["realTimeVoltage"])
	o.Readings.Current = toFloat(props["realTimeCurrent"])
	o.Readings.Power = toFloat(props["realTimePower"])
	o.Readings.Energy = toFloat(props["electricalEnergy"])
	return nil
}

func (o *OutletWYSMTOD16A) fetchEnergy(ctx context.Context, period string) (*EnergyDetail, error) {
	days, ok := periodDays[period]
	if !ok {
		return nil, errors.InvalidInputf("unknown energy period %q", period)
	}
	now := time.Now()
	data := RequestBody{
		"fromDay": now.AddDate(0, 0, -days).Unix(),
		"toDay":   now.Unix(),
	}

	body := o.bypassBody()
	body["subDeviceNo"] = 0
	body["payload"] = bypassPayload("getEnergyHistory", data)

	raw, err := o.client.postDeviceManagedV2(ctx, body)
	if err != nil {
		return nil, err
	}

	var env struct {
		Code   int64 `json:"code"`
		Result struct {
			Result EnergyDetail `json:"result"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, errors.APIErrorf("getEnergyHistory returned code %d", env.Code)
	}
	return &env.Result.Result, nil
}

// Turn switches the plug to StatusOn or StatusOff.
func (o *OutletWYSMTOD16A) Turn(ctx context.Context, status string) error {
	data := RequestBody{
		"enabled": status == StatusOn,
		"id":      0,
	}
	_, err := o.bypass(ctx, bypassPayload("setSwitch", data))
	if err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to turn plug", "status", status)
	}
	o.Details.DeviceStatus = status
	return nil
}
