package vesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesync-go/vesync/internal/errors"
)

func TestWallSwitchUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inwallswitch/v1/device/devicedetail", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "uuid-ESWL01", body["uuid"])
		jsonResponse(t, w, map[string]any{
			"code": 0, "deviceStatus": "on", "connectionStatus": "online", "activeTime": 42,
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewWallSwitch(outletDetails("ESWL01"), c)

	require.NoError(t, s.Update(context.Background()))
	assert.True(t, s.IsOn())
	assert.Equal(t, 42, s.ActiveTime())
}

func TestWallSwitchTurn(t *testing.T) {
	var gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inwallswitch/v1/device/devicestatus", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotStatus, _ = body["status"].(string)
		jsonResponse(t, w, map[string]any{"code": 0})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewWallSwitch(outletDetails("ESWL01"), c)

	require.NoError(t, TurnOff(context.Background(), s))
	assert.Equal(t, StatusOff, gotStatus)
	assert.False(t, s.IsOn())
}

func TestDimmerUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dimmer/v1/device/devicedetail", r.URL.Path)
		jsonResponse(t, w, map[string]any{
			"code": 0, "deviceStatus": "on", "connectionStatus": "online",
			"activeTime": 7, "brightness": 55,
			"rgbStatus":            "on",
			"rgbValue":             map[string]any{"red": 255.0, "green": 128.0, "blue": 0.0},
			"indicatorlightStatus": "off",
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewDimmerSwitch(outletDetails("ESWD16"), c)

	require.NoError(t, s.Update(context.Background()))
	assert.Equal(t, 55, s.Brightness())
	assert.Equal(t, StatusOn, s.RGBStatus())
	assert.Equal(t, RGB{Red: 255, Green: 128, Blue: 0}, s.RGBValue())
	assert.Equal(t, StatusOff, s.IndicatorStatus())
	assert.True(t, s.Supports(FeatureDimmable))
}

func TestDimmerSetBrightness(t *testing.T) {
	var gotBrightness float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dimmer/v1/device/updatebrightness", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotBrightness, _ = body["brightness"].(float64)
		jsonResponse(t, w, map[string]any{"code": 0})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewDimmerSwitch(outletDetails("ESWD16"), c)

	require.NoError(t, s.SetBrightness(context.Background(), 75))
	assert.Equal(t, float64(75), gotBrightness)
	assert.Equal(t, 75, s.Brightness())
	assert.True(t, s.IsOn(), "setting brightness turns the dimmer on")
}

func TestDimmerSetBrightnessOutOfRange(t *testing.T) {
	c := newLoggedInClient(t, "")
	s := NewDimmerSwitch(outletDetails("ESWD16"), c)

	assert.True(t, errors.IsInvalidInput(s.SetBrightness(context.Background(), 0)))
	assert.True(t, errors.IsInvalidInput(s.SetBrightness(context.Background(), 101)))
}

func TestDimmerIndicator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dimmer/v1/device/indicatorlightstatus", r.URL.Path)
		jsonResponse(t, w, map[string]any{"code": 0})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewDimmerSwitch(outletDetails("ESWD16"), c)

	require.NoError(t, s.TurnIndicator(context.Background(), StatusOn))
	assert.Equal(t, StatusOn, s.IndicatorStatus())
}

func TestDimmerSetRGBColor(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dimmer/v1/device/devicergbstatus", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		jsonResponse(t, w, map[string]any{"code": 0})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewDimmerSwitch(outletDetails("ESWD16"), c)

	require.NoError(t, s.SetRGBColor(context.Background(), 300, 128, -5))

	rgb, _ := gotBody["rgbValue"].(map[string]any)
	// Out-of-range components clamp to the nearest bound
	assert.Equal(t, float64(255), rgb["red"])
	assert.Equal(t, float64(128), rgb["green"])
	assert.Equal(t, float64(0), rgb["blue"])
	assert.Equal(t, StatusOn, s.RGBStatus())
	assert.Equal(t, RGB{Red: 255, Green: 128, Blue: 0}, s.RGBValue())
}

func TestDimmerTurnRGBLightKeepsColor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "rgbValue")
		jsonResponse(t, w, map[string]any{"code": 0})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewDimmerSwitch(outletDetails("ESWD16"), c)
	s.rgbValue = RGB{Red: 10, Green: 20, Blue: 30}

	require.NoError(t, s.TurnRGBLight(context.Background(), StatusOff, nil))
	assert.Equal(t, StatusOff, s.RGBStatus())
	assert.Equal(t, RGB{Red: 10, Green: 20, Blue: 30}, s.RGBValue())
}

func TestSwitchGetConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inwallswitch/v1/device/configurations", r.URL.Path)
		jsonResponse(t, w, map[string]any{
			"code":               0,
			"currentFirmVersion": "1.0.0",
			"latestFirmVersion":  "1.2.0",
		})
	}))
	defer srv.Close()

	c := newLoggedInClient(t, srv.URL)
	s := NewWallSwitch(outletDetails("ESWL01"), c)

	require.NoError(t, s.GetConfig(context.Background()))
	assert.True(t, s.FirmwareUpdateAvailable())
}
