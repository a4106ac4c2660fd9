package vesync

import (
	"context"
	"strings"

	"github.com/vesync-go/vesync/internal/errors"
)

// purifierTraits describes the mode and fan level tables of one purifier
// model generation.
type purifierTraits struct {
	modes    []string
	levels   []int
	features []string
}

// purifierModels maps every supported purifier model string, regional
// aliases included, to its traits.
var purifierModels = map[string]purifierTraits{}

func registerPurifier(traits purifierTraits, models ...string) {
	for _, m := range models {
		purifierModels[m] = traits
	}
}

func init() {
	registerPurifier(purifierTraits{
		modes:    []string{ModeSleep, StatusOff, ModeManual},
		levels:   []int{1, 2, 3},
		features: []string{FeatureFilterReset},
	}, "Core200S", "LAP-C201S-AUSR", "LAP-C202S-WUSR")
	registerPurifier(purifierTraits{
		modes:    []string{ModeSleep, StatusOff, ModeAuto, ModeManual},
		levels:   []int{1, 2, 3, 4},
		features: []string{FeatureAirQuality},
	}, "Core300S", "LAP-C301S-WJP", "LAP-C302S-WUSB", "LAP-C301S-WAAA")
	registerPurifier(purifierTraits{
		modes:    []string{ModeSleep, StatusOff, ModeAuto, ModeManual},
		levels:   []int{1, 2, 3, 4},
		features: []string{FeatureAirQuality},
	}, "Core400S", "LAP-C401S-WJP", "LAP-C401S-WUSR", "LAP-C401S-WAAA")
	registerPurifier(purifierTraits{
		modes:    []string{ModeSleep, StatusOff, ModeAuto, ModeManual},
		levels:   []int{1, 2, 3, 4},
		features: []string{FeatureAirQuality},
	}, "Core600S", "LAP-C601S-WUS", "LAP-C601S-WUSR", "LAP-C601S-WEU")

	for model := range purifierModels {
		deviceRegistry[model] = func(d DeviceDetails, c *Client) Device { return NewAirPurifier(d, c) }
	}
}

// PurifierConfig is the display configuration block reported with the
// purifier status.
type PurifierConfig struct {
	Display        bool
	DisplayForever bool
}

// AirPurifier drives the Core series air purifiers over the bypassV2
// endpoint. The countdown timer the device reports is tracked locally
// through a Timer and refreshed by GetTimer.
type AirPurifier struct {
	BaseDevice

	Mode            string
	FanLevel        int
	FilterLife      int
	Display         bool
	ChildLock       bool
	NightLight      string
	AirQuality      int
	AirQualityValue int
	Configuration   PurifierConfig

	timer  *Timer
	modes  []string
	levels []int
}

// NewAirPurifier creates a Core series purifier device.
func NewAirPurifier(details DeviceDetails, client *Client) *AirPurifier {
	traits := purifierModels[details.DeviceType]
	return &AirPurifier{
		BaseDevice: newBaseDevice(details, client, FamilyFan, traits.features),
		Mode:       ModeManual,
		NightLight: StatusOff,
		modes:      traits.modes,
		levels:     traits.levels,
	}
}

// Modes returns the operating modes the model supports.
func (p *AirPurifier) Modes() []string { return p.modes }

// FanLevels returns the fan speed levels the model supports.
func (p *AirPurifier) FanLevels() []int { return p.levels }

// Timer returns the last countdown timer seen by GetTimer or SetTimer, or
// nil when none is known.
func (p *AirPurifier) Timer() *Timer { return p.timer }

// Update refreshes the purifier state from getPurifierStatus.
func (p *AirPurifier) Update(ctx context.Context) error {
	result, err := p.bypass(ctx, bypassPayload("getPurifierStatus", RequestBody{}))
	if err != nil {
		if errors.IsDeviceOffline(err) {
			return nil
		}
		return errors.LogErrorAndReturn(p.logger, err, "failed to get purifier status")
	}
	inner, ok := result["result"].(map[string]any)
	if !ok {
		return errors.APIErrorf("getPurifierStatus returned no status")
	}

	p.Details.ConnectionStatus = ConnectionOnline
	if enabled, ok := inner["enabled"].(bool); ok && enabled {
		p.Details.DeviceStatus = StatusOn
	} else {
		p.Details.DeviceStatus = StatusOff
	}
	if v, ok := toInt64(inner["filter_life"]); ok {
		p.FilterLife = int(v)
	}
	if mode, ok := inner["mode"].(string); ok {
		p.Mode = mode
	}
	if v, ok := toInt64(inner["level"]); ok {
		p.FanLevel = int(v)
	}
	if display, ok := inner["display"].(bool); ok {
		p.Display = display
	}
	if lock, ok := inner["child_lock"].(bool); ok {
		p.ChildLock = lock
	}
	if nl, ok := inner["night_light"].(string); ok {
		p.NightLight = nl
	}
	if p.Supports(FeatureAirQuality) {
		if v, ok := toInt64(inner["air_quality"]); ok {
			p.AirQuality = int(v)
		}
		if v, ok := toInt64(inner["air_quality_value"]); ok {
			p.AirQualityValue = int(v)
		}
	}
	if conf, ok := inner["configuration"].(map[string]any); ok {
		p.Configuration.Display, _ = conf["display"].(bool)
		p.Configuration.DisplayForever, _ = conf["display_forever"].(bool)
	}
	return nil
}

// Turn switches the purifier to StatusOn or StatusOff.
func (p *AirPurifier) Turn(ctx context.Context, status string) error {
	if status != StatusOn && status != StatusOff {
		return errors.InvalidStatusf("purifier status %q", status)
	}
	data := RequestBody{
		"enabled": status == StatusOn,
		"id":      0,
	}
	if _, err := p.bypass(ctx, bypassPayload("setSwitch", data)); err != nil {
		return errors.LogErrorAndReturn(p.logger, err, "failed to turn purifier", "status", status)
	}
	p.Details.DeviceStatus = status
	return nil
}

// SetFanSpeed sets the fan to the given level, which must be one of the
// model's levels. Level 0 advances to the next level, wrapping around after
// the highest.
func (p *AirPurifier) SetFanSpeed(ctx context.Context, level int) error {
	if level == 0 {
		level = p.nextLevel()
	} else if !p.validLevel(level) {
		return errors.InvalidInputf("fan level %d not in %v", level, p.levels)
	}

	data := RequestBody{
		"id":    0,
		"level": level,
		"type":  "wind",
		"mode":  ModeManual,
	}
	if _, err := p.bypass(ctx, bypassPayload("setLevel", data)); err != nil {
		return errors.LogErrorAndReturn(p.logger, err, "failed to set fan speed", "level", level)
	}
	p.FanLevel = level
	return nil
}

func (p *AirPurifier) validLevel(level int) bool {
	for _, l := range p.levels {
		if l == level {
			return true
		}
	}
	return false
}

func (p *AirPurifier) nextLevel() int {
	for i, l := range p.levels {
		if l == p.FanLevel && i+1 < len(p.levels) {
			return p.levels[i+1]
		}
	}
	return p.levels[0]
}

// SetMode sets the operating mode, which must be one of the model's modes.
// Manual mode drops the fan to level 1; the other modes hand speed control
// to the device.
func (p *AirPurifier) SetMode(ctx context.Context, mode string) error {
	mode = strings.ToLower(mode)
	if !p.validMode(mode) {
		return errors.InvalidInputf("purifier mode %q not in %v", mode, p.modes)
	}

	var payload RequestBody
	if mode == ModeManual {
		// Manual mode is entered through setLevel with an APP-typed
		// payload that carries no source field.
		payload = RequestBody{
			"method": "setLevel",
			"type":   "APP",
			"data":   RequestBody{"id": 0, "level": 1, "type": "wind"},
		}
	} else {
		payload = bypassPayload("setPurifierMode", RequestBody{"mode": mode})
	}
	if _, err := p.bypass(ctx, payload); err != nil {
		return errors.LogErrorAndReturn(p.logger, err, "failed to set purifier mode", "mode", mode)
	}

	if mode == ModeManual {
		p.FanLevel = 1
	} else {
		p.FanLevel = 0
	}
	p.Mode = mode
	return nil
}

func (p *AirPurifier) validMode(mode string) bool {
	for _, m := range p.modes {
		if m == mode {
			return true
		}
	}
	return false
}

// SetDisplay turns the display on or off.
func (p *AirPurifier) SetDisplay(ctx context.Context, on bool) error {
	if _, err := p.bypass(ctx, bypassPayload("setDisplay", RequestBody{"state": on})); err != nil {
		return errors.LogErrorAndReturn(p.logger, err, "failed to set display", "on", on)
	}
	p.Display = on
	return nil
}

// SetChildLock turns the child lock on or off.
func (p *AirPurifier) SetChildLock(ctx context.Context, on bool) error {
	if _, err := p.bypass(ctx, bypassPayload("setChildLock", RequestBody{"child_lock": on})); err != nil {
		return errors.LogErrorAndReturn(p.logger, err, "failed to set child lock", "on", on)
	}
	p.ChildLock = on
	return nil
}

// ResetFilter resets the filter life to 100%. Only models advertising
// FeatureFilterReset support it.
func (p *AirPurifier) ResetFilter(ctx context.Context) error {
	if !p.Supports(FeatureFilterReset) {
		return errors.InvalidInputf("%s does not support filter reset", p.Details.DeviceType)
	}
	if _, err := p.bypass(ctx, bypassPayload("resetFilter", RequestBody{})); err != nil {
		return errors.LogErrorAndReturn(p.logger, err, "failed to reset filter")
	}
	return nil
}

// GetTimer fetches the countdown timer running on the purifier. It returns
// nil when no timer is running. A timer already tracked locally is refreshed
// with the reported remaining seconds instead of being replaced.
func (p *AirPurifier) GetTimer(ctx context.Context) (*Timer, error) {
	result, err := p.bypass(ctx, bypassPayload("getTimer", RequestBody{}))
	if err != nil {
		return nil, errors.LogErrorAndReturn(p.logger, err, "failed to get timer")
	}
	inner, ok := result["result"].(map[string]any)
	if !ok {
		return nil, errors.APIErrorf("getTimer returned no result")
	}
	timers, ok := inner["timers"].([]any)
	if !ok || len(timers) == 0 {
		p.logger.Debug("no timer running")
		p.timer = nil
		return nil, nil
	}
	entry, ok := timers[0].(map[string]any)
	if !ok {
		return nil, errors.APIErrorf("getTimer returned a malformed timer")
	}

	// Older firmware reports total/remain, newer duration/remaining.
	duration := intKey(entry, "duration", "total")
	remaining := intKey(entry, "remaining", "remain")
	action, _ := entry["action"].(string)

	if p.timer == nil {
		id := intKey(entry, "id")
		p.timer = NewTimerWithRemaining(duration, action, id, remaining)
	} else if err := p.timer.Update(&remaining, nil); err != nil {
		return nil, err
	}
	return p.timer, nil
}

// SetTimer starts a countdown of the given seconds after which the purifier
// turns off, replacing any timer tracked locally.
func (p *AirPurifier) SetTimer(ctx context.Context, seconds int) (*Timer, error) {
	if !p.IsOn() {
		p.logger.Debug("setting timer on a purifier that is off")
	}
	data := RequestBody{
		"total":  seconds,
		"action": StatusOff,
	}
	result, err := p.bypass(ctx, bypassPayload("addTimer", data))
	if err != nil {
		return nil, errors.LogErrorAndReturn(p.logger, err, "failed to set timer", "seconds", seconds)
	}

	timer := NewTimer(seconds, StatusOff)
	if inner, ok := result["result"].(map[string]any); ok {
		if id, ok := toInt64(inner["id"]); ok {
			timer.ID = int(id)
		}
	}
	p.timer = timer
	return timer, nil
}

// ClearTimer cancels the countdown running on the purifier. The timer is
// looked up first so the device-assigned id is known.
func (p *AirPurifier) ClearTimer(ctx context.Context) error {
	if _, err := p.GetTimer(ctx); err != nil {
		return err
	}
	if p.timer == nil {
		return errors.InvalidInputf("no timer to clear")
	}
	if _, err := p.bypass(ctx, bypassPayload("delTimer", RequestBody{"id": p.timer.ID})); err != nil {
		return errors.LogErrorAndReturn(p.logger, err, "failed to clear timer")
	}
	p.timer.End()
	p.timer = nil
	return nil
}

// intKey returns the first of the given keys present in m as an int.
func intKey(m map[string]any, keys ...string) int {
	for _, k := range keys {
		if v, ok := toInt64(m[k]); ok {
			return int(v)
		}
	}
	return 0
}
