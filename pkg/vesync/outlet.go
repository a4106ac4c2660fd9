package vesync

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vesync-go/vesync/internal/errors"
)

// Nightlight modes of the 15A rectangular outlet.
const (
	NightlightAuto   = "auto"
	NightlightManual = "manual"
)

// EnergyReporter is implemented by outlets that track energy history.
type EnergyReporter interface {
	Device
	// UpdateEnergy refreshes the weekly, monthly and yearly history. Unless
	// bypassCheck is set the refresh is skipped inside the update interval.
	UpdateEnergy(ctx context.Context, bypassCheck bool) error
}

// EnergyDetail is the energy history of one period.
type EnergyDetail struct {
	EnergyConsumptionOfToday float64   `json:"energyConsumptionOfToday"`
	CostPerKWH               float64   `json:"costPerKWH"`
	MaxEnergy                float64   `json:"maxEnergy"`
	TotalEnergy              float64   `json:"totalEnergy"`
	Currency                 string    `json:"currency"`
	Data                     []float64 `json:"data"`
}

// OutletReadings holds the live measurements of an outlet.
type OutletReadings struct {
	ActiveTime           int     // minutes
	Energy               float64 // kWh today
	Power                float64 // watts
	Voltage              float64 // volts
	Current              float64 // amperes, derived from power when absent
	NightlightStatus     string
	NightlightBrightness float64
	NightlightAutomode   string
}

// legacyFloat decodes the measurement formats used across outlet firmware
// generations: plain numbers, quoted numbers, and the first-generation
// "a:b" hex pair.
type legacyFloat float64

func (f *legacyFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = legacyFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unsupported measurement value %s", data)
	}
	if strings.Contains(s, ":") {
		v, err := calculateHex(s)
		if err != nil {
			return err
		}
		*f = legacyFloat(math.Round(v*100) / 100)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparsable measurements degrade to zero, matching app behavior
		*f = 0
		return nil
	}
	*f = legacyFloat(v)
	return nil
}

// outletBase carries the state shared by all outlet families.
type outletBase struct {
	BaseDevice

	Readings OutletReadings
	// Energy maps EnergyWeek/EnergyMonth/EnergyYear to fetched history.
	Energy map[string]*EnergyDetail

	energyUpdateTS time.Time
	getEnergy      func(ctx context.Context, period string) (*EnergyDetail, error)
}

func newOutletBase(details DeviceDetails, client *Client, features []string) outletBase {
	return outletBase{
		BaseDevice: newBaseDevice(details, client, FamilyOutlet, features),
		Energy:     make(map[string]*EnergyDetail),
	}
}

// energyUpdateDue reports whether the energy update interval has passed.
func (o *outletBase) energyUpdateDue() bool {
	return o.energyUpdateTS.IsZero() ||
		time.Since(o.energyUpdateTS) > o.client.energyUpdateInterval
}

func (o *outletBase) energyForPeriod(ctx context.Context, period string) (*EnergyDetail, error) {
	if !o.Supports(FeatureEnergyHistory) {
		return nil, nil
	}
	detail, err := o.getEnergy(ctx, period)
	if err != nil {
		o.Energy[period] = nil
		o.logger.Error("unable to get energy data", "period", period, "error", err)
		return nil, err
	}
	o.Energy[period] = detail
	return detail, nil
}

// GetWeeklyEnergy fetches the weekly energy history.
func (o *outletBase) GetWeeklyEnergy(ctx context.Context) (*EnergyDetail, error) {
	return o.energyForPeriod(ctx, EnergyWeek)
}

// GetMonthlyEnergy fetches the monthly energy history.
func (o *outletBase) GetMonthlyEnergy(ctx context.Context) (*EnergyDetail, error) {
	return o.energyForPeriod(ctx, EnergyMonth)
}

// GetYearlyEnergy fetches the yearly energy history.
func (o *outletBase) GetYearlyEnergy(ctx context.Context) (*EnergyDetail, error) {
	return o.energyForPeriod(ctx, EnergyYear)
}

// UpdateEnergy refreshes all three history periods.
func (o *outletBase) UpdateEnergy(ctx context.Context, bypassCheck bool) error {
	if !bypassCheck && !o.energyUpdateDue() {
		return nil
	}
	o.energyUpdateTS = time.Now()
	week, err := o.GetWeeklyEnergy(ctx)
	if err != nil || week == nil {
		return err
	}
	if _, err := o.GetMonthlyEnergy(ctx); err != nil {
		return err
	}
	_, err = o.GetYearlyEnergy(ctx)
	return err
}

// ActiveTime returns the device active time in minutes.
func (o *outletBase) ActiveTime() int { return o.Readings.ActiveTime }

// EnergyToday returns today's energy consumption in kWh.
func (o *outletBase) EnergyToday() float64 { return o.Readings.Energy }

// Power returns the current power draw in watts.
func (o *outletBase) Power() float64 {
	return math.Round(o.Readings.Power*1000) / 1000
}

// Voltage returns the current voltage.
func (o *outletBase) Voltage() float64 {
	return math.Round(o.Readings.Voltage*10) / 10
}

// Current returns the current in amperes, derived from power and voltage
// when the device does not report it.
func (o *outletBase) Current() float64 {
	if o.Readings.Current == 0 && o.Voltage() != 0 {
		return o.Power() / o.Voltage()
	}
	return math.Round(o.Readings.Current*100) / 100
}

func (o *outletBase) energyTotal(period string) float64 {
	if e := o.Energy[period]; e != nil {
		return e.TotalEnergy
	}
	return 0
}

// WeeklyEnergyTotal returns the total energy usage over the week.
func (o *outletBase) WeeklyEnergyTotal() float64 { return o.energyTotal(EnergyWeek) }

// MonthlyEnergyTotal returns the total energy usage over the month.
func (o *outletBase) MonthlyEnergyTotal() float64 { return o.energyTotal(EnergyMonth) }

// YearlyEnergyTotal returns the total energy usage over the year.
func (o *outletBase) YearlyEnergyTotal() float64 { return o.energyTotal(EnergyYear) }

// decodeEnergyDetail decodes an energy history response, requiring the
// mandatory totals to be present.
func decodeEnergyDetail(raw json.RawMessage) (*EnergyDetail, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	for _, k := range []string{"energyConsumptionOfToday", "maxEnergy", "totalEnergy"} {
		if _, ok := keys[k]; !ok {
			return nil, fmt.Errorf("energy response missing %s", k)
		}
	}
	var e EnergyDetail
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Outlet7A is the first-generation Etekcity 7A round outlet. It uses plain
// v1 REST endpoints with the session headers and no request body.
type Outlet7A struct {
	outletBase
}

// NewOutlet7A creates a 7A round outlet device.
func NewOutlet7A(details DeviceDetails, client *Client) *Outlet7A {
	o := &Outlet7A{outletBase: newOutletBase(details, client, []string{FeatureEnergyHistory})}
	o.getEnergy = o.fetchEnergy
	return o
}

// Update refreshes the outlet details.
func (o *Outlet7A) Update(ctx context.Context) error {
	raw, err := o.client.call(ctx, http.MethodGet,
		"/v1/device/"+o.Details.CID+"/detail", o.client.ReqHeaders(), nil)
	if err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to get outlet details")
	}

	var resp struct {
		DeviceStatus string      `json:"deviceStatus"`
		ActiveTime   int         `json:"activeTime"`
		Energy       float64     `json:"energy"`
		Power        legacyFloat `json:"power"`
		Voltage      legacyFloat `json:"voltage"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to decode outlet details")
	}
	if resp.DeviceStatus != "" {
		o.Details.DeviceStatus = resp.DeviceStatus
	}
	o.Readings.ActiveTime = resp.ActiveTime
	o.Readings.Energy = resp.Energy
	o.Readings.Power = float64(resp.Power)
	o.Readings.Voltage = float64(resp.Voltage)
	return nil
}

func (o *Outlet7A) fetchEnergy(ctx context.Context, period string) (*EnergyDetail, error) {
	raw, err := o.client.call(ctx, http.MethodGet,
		"/v1/device/"+o.Details.CID+"/energy/"+period, o.client.ReqHeaders(), nil)
	if err != nil {
		return nil, err
	}
	return decodeEnergyDetail(raw)
}

// Turn switches the outlet to StatusOn or StatusOff.
func (o *Outlet7A) Turn(ctx context.Context, status string) error {
	_, err := o.client.call(ctx, http.MethodPut,
		"/v1/wifi-switch-1.3/"+o.Details.CID+"/status/"+status, o.client.ReqHeaders(), nil)
	if err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to turn outlet", "status", status)
	}
	o.Details.DeviceStatus = status
	return nil
}

// GetConfig fetches firmware and protection settings.
func (o *Outlet7A) GetConfig(ctx context.Context) error {
	raw, err := o.client.call(ctx, http.MethodGet,
		"/v1/device/"+o.Details.CID+"/configurations", o.client.ReqHeaders(), nil)
	if err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to get configuration")
	}
	return o.decodeConfig(raw)
}

// outletV1 groups the second-generation outlets that share the
// "{prefix}/v1/device/{api}" POST surface, differing only in path prefix
// and a few detail fields.
type outletV1 struct {
	outletBase
	prefix string
}

func (o *outletV1) callDevice(ctx context.Context, method, api string, body RequestBody) (json.RawMessage, error) {
	raw, err := o.client.call(ctx, method, o.prefix+api, o.client.ReqHeaders(), body)
	if err != nil {
		return nil, err
	}
	if !CodeCheck(raw) {
		return nil, errors.APIErrorf("%s returned non-zero code", api)
	}
	return raw, nil
}

// v1Detail is the devicedetail response shared by 10A/15A/outdoor outlets.
type v1Detail struct {
	DeviceStatus         string      `json:"deviceStatus"`
	ConnectionStatus     string      `json:"connectionStatus"`
	ActiveTime           int         `json:"activeTime"`
	Energy               float64     `json:"energy"`
	Power                legacyFloat `json:"power"`
	Voltage              legacyFloat `json:"voltage"`
	NightLightStatus     string      `json:"nightLightStatus"`
	NightLightBrightness float64     `json:"nightLightBrightness"`
	NightLightAutomode   string      `json:"nightLightAutomode"`
	SubDevices           []struct {
		SubDeviceStatus string `json:"subDeviceStatus"`
	} `json:"subDevices"`
}

func (o *outletV1) applyDetail(d *v1Detail) {
	if d.DeviceStatus != "" {
		o.Details.DeviceStatus = d.DeviceStatus
	}
	if d.ConnectionStatus != "" {
		o.Details.ConnectionStatus = d.ConnectionStatus
	}
	o.Readings = OutletReadings{
		ActiveTime:           d.ActiveTime,
		Energy:               d.Energy,
		Power:                float64(d.Power),
		Voltage:              float64(d.Voltage),
		NightlightStatus:     d.NightLightStatus,
		NightlightBrightness: d.NightLightBrightness,
		NightlightAutomode:   d.NightLightAutomode,
	}
}

func (o *outletV1) fetchDetail(ctx context.Context) (*v1Detail, error) {
	body := o.client.ReqBodyDeviceDetail()
	body["uuid"] = o.Details.UUID

	raw, err := o.callDevice(ctx, http.MethodPost, "devicedetail", body)
	if err != nil {
		return nil, errors.LogErrorAndReturn(o.logger, err, "failed to get outlet details")
	}
	var d v1Detail
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, errors.LogErrorAndReturn(o.logger, err, "failed to decode outlet details")
	}
	return &d, nil
}

func (o *outletV1) fetchEnergy(ctx context.Context, period string) (*EnergyDetail, error) {
	body := o.client.ReqBodyEnergy(period)
	body["uuid"] = o.Details.UUID

	raw, err := o.callDevice(ctx, http.MethodPost, "energy"+period, body)
	if err != nil {
		return nil, err
	}
	return decodeEnergyDetail(raw)
}

// Turn switches the outlet to StatusOn or StatusOff.
func (o *outletV1) Turn(ctx context.Context, status string) error {
	body := o.client.ReqBodyStatus()
	body["uuid"] = o.Details.UUID
	body["status"] = status
	if o.Details.SubDeviceNo > 0 {
		body["switchNo"] = o.Details.SubDeviceNo
	}

	if _, err := o.callDevice(ctx, http.MethodPut, "devicestatus", body); err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to turn outlet", "status", status)
	}
	o.Details.DeviceStatus = status
	return nil
}

// GetConfig fetches firmware and protection settings.
func (o *outletV1) GetConfig(ctx context.Context) error {
	body := o.client.ReqBodyDeviceDetail()
	body["method"] = "configurations"
	body["uuid"] = o.Details.UUID

	raw, err := o.callDevice(ctx, http.MethodPost, "configurations", body)
	if err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to get configuration")
	}
	return o.decodeConfig(raw)
}

// Outlet10A is the Etekcity 10A round outlet (ESW03-USA, ESW01-EU).
type Outlet10A struct {
	outletV1
}

// NewOutlet10A creates a 10A round outlet device.
func NewOutlet10A(details DeviceDetails, client *Client) *Outlet10A {
	o := &Outlet10A{}
	o.outletBase = newOutletBase(details, client, []string{FeatureEnergyHistory})
	o.prefix = "/10a/v1/device/"
	o.getEnergy = o.fetchEnergy
	return o
}

// Update refreshes the outlet details.
func (o *Outlet10A) Update(ctx context.Context) error {
	d, err := o.fetchDetail(ctx)
	if err != nil {
		return err
	}
	o.applyDetail(d)
	return nil
}

// Outlet15A is the Etekcity 15A rectangular outlet (ESW15-USA) with a
// built-in nightlight.
type Outlet15A struct {
	outletV1
}

// NewOutlet15A creates a 15A rectangular outlet device.
func NewOutlet15A(details DeviceDetails, client *Client) *Outlet15A {
	o := &Outlet15A{}
	o.outletBase = newOutletBase(details, client, []string{FeatureEnergyHistory})
	o.prefix = "/15a/v1/device/"
	o.getEnergy = o.fetchEnergy
	return o
}

// Update refreshes the outlet details including nightlight state.
func (o *Outlet15A) Update(ctx context.Context) error {
	d, err := o.fetchDetail(ctx)
	if err != nil {
		return err
	}
	o.applyDetail(d)
	return nil
}

// TurnNightlight sets the nightlight mode.
func (o *Outlet15A) TurnNightlight(ctx context.Context, mode string) error {
	body := o.client.ReqBodyStatus()
	body["uuid"] = o.Details.UUID
	body["mode"] = mode

	if _, err := o.callDevice(ctx, http.MethodPut, "nightlightstatus", body); err != nil {
		return errors.LogErrorAndReturn(o.logger, err, "failed to set nightlight", "mode", mode)
	}
	return nil
}

// TurnOnNightlight switches the nightlight to automatic mode.
func (o *Outlet15A) TurnOnNightlight(ctx context.Context) error {
	return o.TurnNightlight(ctx, NightlightAuto)
}

// TurnOffNightlight switches the nightlight to manual mode.
func (o *Outlet15A) TurnOffNightlight(ctx context.Context) error {
	return o.TurnNightlight(ctx, NightlightManual)
}

// OutdoorPlug is the Etekcity outdoor dual outlet (ESO15-TB). Each socket is
// a sub-device selected by SubDeviceNo.
type OutdoorPlug struct {
	outletV1
}

// NewOutdoorPlug creates an outdoor plug device.
func NewOutdoorPlug(details DeviceDetails, client *Client) *OutdoorPlug {
	o := &OutdoorPlug{}
	o.outletBase = newOutletBase(details, client, []string{FeatureEnergyHistory})
	o.prefix = "/outdoorsocket15a/v1/device/"
	o.getEnergy = o.fetchEnergy
	return o
}

// Update refreshes the plug details. The on/off status comes from the
// sub-device entry matching this socket.
func (o *OutdoorPlug) Update(ctx context.Context) error {
	d, err := o.fetchDetail(ctx)
	if err != nil {
		return err
	}
	o.applyDetail(d)

	devNo := o.Details.SubDeviceNo
	if devNo >= 1 && devNo <= len(d.SubDevices) {
		o.Details.DeviceStatus = d.SubDevices[devNo-1].SubDeviceStatus
	}
	return nil
}

// decodeConfig parses a configurations response into the device config.
func (d *BaseDevice) decodeConfig(raw json.RawMessage) error {
	var resp struct {
		CurrentFirmVersion string  `json:"currentFirmVersion"`
		LatestFirmVersion  string  `json:"latestFirmVersion"`
		MaxPower           float64 `json:"maxPower"`
		Threshold          float64 `json:"threshold"`
		ThreshHold         float64 `json:"threshHold"` // some firmware misspells the key
		PowerProtection    string  `json:"powerProtectionStatus"`
		EnergySavingStatus string  `json:"energySavingStatus"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.LogErrorAndReturn(d.logger, err, "failed to decode configuration")
	}
	threshold := resp.Threshold
	if threshold == 0 {
		threshold = resp.ThreshHold
	}
	d.Config = DeviceConfig{
		CurrentFirmVersion: resp.CurrentFirmVersion,
		LatestFirmVersion:  resp.LatestFirmVersion,
		MaxPower:           resp.MaxPower,
		Threshold:          threshold,
		PowerProtection:    resp.PowerProtection,
		EnergySavingStatus: resp.EnergySavingStatus,
	}
	return nil
}
