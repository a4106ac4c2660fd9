package vesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func energyResponse(t *testing.T, w http.ResponseWriter, total float64) {
	t.Helper()
	jsonResponse(t, w, map[string]any{
		"code":                     0,
		"energyConsumptionOfToday": 0.2,
		"costPerKWH":               0.3,
		"maxEnergy":                10.0,
		"totalEnergy":              total,
		"data":                     []float64{0.1, 0.2},
	})
}

func TestOutlet7AUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/device/cid-wifi-switch-1.3/detail", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test-token", r.Header.Get("tk"))
		// First generation firmware reports power and voltage as hex pairs
		jsonResponse(t, w, map[string]any{
			"deviceStatus": "on",
			"activeTime":   100,
			"energy":       0.31,
			"power":        "1000:1000",
			"voltage":      "1000:1000",
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutlet7A(outletDetails("wifi-switch-1.3"), c)

	require.NoError(t, o.Update(context.Background()))
	assert.Equal(t, 100, o.ActiveTime())
	assert.InDelta(t, 0.31, o.EnergyToday(), 0.001)
	assert.InDelta(t, 1.0, o.Power(), 0.001)
	assert.InDelta(t, 1.0, o.Voltage(), 0.001)
	assert.True(t, o.IsOn())
}

func TestOutlet7ATurn(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPut, r.Method)
		jsonResponse(t, w, map[string]any{"code": 0})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutlet7A(outletDetails("wifi-switch-1.3"), c)

	require.NoError(t, TurnOff(context.Background(), o))
	assert.Equal(t, "/v1/wifi-switch-1.3/cid-wifi-switch-1.3/status/off", gotPath)
	assert.False(t, o.IsOn())

	require.NoError(t, TurnOn(context.Background(), o))
	assert.Equal(t, "/v1/wifi-switch-1.3/cid-wifi-switch-1.3/status/on", gotPath)
	assert.True(t, o.IsOn())
}

func TestOutlet7AEnergy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/device/cid-wifi-switch-1.3/energy/week", r.URL.Path)
		energyResponse(t, w, 2.5)
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutlet7A(outletDetails("wifi-switch-1.3"), c)

	detail, err := o.GetWeeklyEnergy(context.Background())
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.InDelta(t, 2.5, detail.TotalEnergy, 0.001)
	assert.InDelta(t, 2.5, o.WeeklyEnergyTotal(), 0.001)
}

func TestDecodeEnergyDetailMissingKeys(t *testing.T) {
	_, err := decodeEnergyDetail(json.RawMessage(`{"code": 0, "totalEnergy": 1.0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestOutlet10AUpdateAndTurn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/10a/v1/device/devicedetail", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "uuid-ESW03-USA", body["uuid"])
		jsonResponse(t, w, map[string]any{
			"code": 0, "deviceStatus": "on", "connectionStatus": "online",
			"activeTime": 10, "energy": 0.5, "power": 9.0, "voltage": 230.0,
		})
	})
	mux.HandleFunc("/10a/v1/device/devicestatus", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "off", body["status"])
		jsonResponse(t, w, map[string]any{"code": 0})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutlet10A(outletDetails("ESW03-USA"), c)

	require.NoError(t, o.Update(context.Background()))
	assert.InDelta(t, 9.0, o.Power(), 0.001)
	assert.InDelta(t, 230.0, o.Voltage(), 0.001)
	// Current is derived from power and voltage when the api omits it
	assert.InDelta(t, 9.0/230.0, o.Current(), 0.001)

	require.NoError(t, TurnOff(context.Background(), o))
	assert.False(t, o.IsOn())
}

func TestOutlet10ANonZeroCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(t, w, map[string]any{"code": -11300027, "msg": "device offline"})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutlet10A(outletDetails("ESW03-USA"), c)
	assert.Error(t, o.Update(context.Background()))
}

func TestOutlet15ANightlight(t *testing.T) {
	var gotMode string
	mux := http.NewServeMux()
	mux.HandleFunc("/15a/v1/device/nightlightstatus", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotMode, _ = body["mode"].(string)
		jsonResponse(t, w, map[string]any{"code": 0})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutlet15A(outletDetails("ESW15-USA"), c)

	require.NoError(t, o.TurnOnNightlight(context.Background()))
	assert.Equal(t, NightlightAuto, gotMode)

	require.NoError(t, o.TurnOffNightlight(context.Background()))
	assert.Equal(t, NightlightManual, gotMode)
}

func TestOutdoorPlugSubDeviceStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/outdoorsocket15a/v1/device/devicedetail", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(t, w, map[string]any{
			"code": 0, "deviceStatus": "on", "connectionStatus": "online",
			"activeTime": 3, "energy": 0.1, "power": 2.0, "voltage": 120.0,
			"subDevices": []map[string]any{
				{"subDeviceStatus": "off"},
				{"subDeviceStatus": "on"},
			},
		})
	})
	var turnBody map[string]any
	mux.HandleFunc("/outdoorsocket15a/v1/device/devicestatus", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&turnBody))
		jsonResponse(t, w, map[string]any{"code": 0})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	details := outletDetails("ESO15-TB")
	details.SubDeviceNo = 2
	o := NewOutdoorPlug(details, c)

	require.NoError(t, o.Update(context.Background()))
	assert.True(t, o.IsOn(), "status comes from the matching sub-device entry")

	require.NoError(t, TurnOff(context.Background(), o))
	assert.Equal(t, float64(2), turnBody["switchNo"])
}

func TestOutletBSDGO1(t *testing.T) {
	var lastPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cloud/v2/deviceManaged/bypassV2", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		lastPayload, _ = body["payload"].(map[string]any)

		jsonResponse(t, w, map[string]any{
			"code":   0,
			"result": map[string]any{"powerSwitch_1": 1},
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	details := outletDetails("BSDOG01")
	details.DeviceStatus = StatusOff
	o := NewOutletBSDGO1(details, c)

	require.NoError(t, o.Update(context.Background()))
	assert.True(t, o.IsOn())
	assert.Equal(t, "getProperty", lastPayload["method"])

	require.NoError(t, TurnOff(context.Background(), o))
	assert.Equal(t, "setProperty", lastPayload["method"])
	data, _ := lastPayload["data"].(map[string]any)
	assert.Equal(t, float64(0), data["powerSwitch_1"])
	assert.False(t, o.IsOn())
}

func TestOutletBSDGO1NoEnergyHistory(t *testing.T) {
	c := newLoggedInClient(t, "")
	o := NewOutletBSDGO1(outletDetails("BSDOG01"), c)

	assert.False(t, o.Supports(FeatureEnergyHistory))
	detail, err := o.GetWeeklyEnergy(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, detail)
}

func TestOutletWYSMTOD16AUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		payload := body["payload"].(map[string]any)
		data := payload["data"].(map[string]any)
		assert.Contains(t, data["properties"], "realTimePower")

		jsonResponse(t, w, map[string]any{
			"code": 0,
			"result": map[string]any{
				"code": 0,
				"result": map[string]any{
					"powerSwitch_1":    1,
					"realTimeVoltage":  229.8,
					"realTimeCurrent":  0.5,
					"realTimePower":    115.0,
					"electricalEnergy": 1.2,
				},
			},
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutletWYSMTOD16A(outletDetails("WYSMTOD16A"), c)

	require.NoError(t, o.Update(context.Background()))
	assert.True(t, o.IsOn())
	assert.InDelta(t, 229.8, o.Voltage(), 0.001)
	assert.InDelta(t, 0.5, o.Current(), 0.001)
	assert.InDelta(t, 115.0, o.Power(), 0.001)
	assert.InDelta(t, 1.2, o.EnergyToday(), 0.001)
}

func TestOutletWYSMTOD16ATurn(t *testing.T) {
	var lastPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		lastPayload, _ = body["payload"].(map[string]any)
		jsonResponse(t, w, map[string]any{"code": 0, "result": map[string]any{}})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutletWYSMTOD16A(outletDetails("WYSMTOD16A"), c)

	require.NoError(t, TurnOn(context.Background(), o))
	assert.Equal(t, "setSwitch", lastPayload["method"])
	data, _ := lastPayload["data"].(map[string]any)
	assert.Equal(t, true, data["enabled"])
}

func TestOutletWYSMTOD16AEnergyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		payload := body["payload"].(map[string]any)
		assert.Equal(t, "getEnergyHistory", payload["method"])

		data := payload["data"].(map[string]any)
		from := int64(data["fromDay"].(float64))
		to := int64(data["toDay"].(float64))
		assert.InDelta(t, 30*24*3600, to-from, 2, "month period spans 30 days")

		jsonResponse(t, w, map[string]any{
			"code": 0,
			"result": map[string]any{
				"code": 0,
				"result": map[string]any{
					"energyConsumptionOfToday": 0.4,
					"maxEnergy":                5.0,
					"totalEnergy":              3.3,
				},
			},
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutletWYSMTOD16A(outletDetails("WYSMTOD16A"), c)

	detail, err := o.GetMonthlyEnergy(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 3.3, detail.TotalEnergy, 0.001)
}

func TestBypassDeviceCodeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(t, w, map[string]any{
			"code":   0,
			"result": map[string]any{"code": -11005000},
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	o := NewOutletBSDGO1(outletDetails("BSDOG01"), c)
	assert.Error(t, o.Update(context.Background()))
}

func TestUpdateEnergyIntervalGating(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		energyResponse(t, w, 1.0)
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	c.SetEnergyUpdateInterval(time.Hour)
	o := NewOutlet7A(outletDetails("wifi-switch-1.3"), c)

	require.NoError(t, o.UpdateEnergy(context.Background(), false))
	assert.Equal(t, 3, calls, "week, month and year fetched")

	require.NoError(t, o.UpdateEnergy(context.Background(), false))
	assert.Equal(t, 3, calls, "second refresh inside the interval is a no-op")

	require.NoError(t, o.UpdateEnergy(context.Background(), true))
	assert.Equal(t, 6, calls, "bypass flag forces the refresh")
}

func TestClientUpdateEnergy(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		energyResponse(t, w, 1.0)
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	c.Outlets = []Device{NewOutlet7A(outletDetails("wifi-switch-1.3"), c)}

	c.UpdateEnergy(context.Background(), true)
	assert.Equal(t, 3, calls)
}

func TestLegacyFloatFormats(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`12.5`, 12.5},
		{`"12.5"`, 12.5},
		{`"1000:1000"`, 1.0},
		{`"garbage"`, 0},
	}
	for _, tt := range tests {
		var f legacyFloat
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
		assert.InDelta(t, tt.want, float64(f), 0.001, tt.in)
	}
}
