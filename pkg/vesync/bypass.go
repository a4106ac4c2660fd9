package vesync

import (
	"context"
	"encoding/json"

	"github.com/vesync-go/vesync/internal/errors"
)

// bypassBody returns the outer request body for a bypassV2 call addressed to
// this device.
func (d *BaseDevice) bypassBody() RequestBody {
	body := d.client.ReqBodyBypassV2()
	body["cid"] = d.Details.CID
	body["configModule"] = d.Details.ConfigModule
	return body
}

func bypassPayload(method string, data RequestBody) RequestBody {
	return RequestBody{
		"method": method,
		"source": "APP",
		"data":   data,
	}
}

// bypass sends a payload through the bypassV2 endpoint and returns the inner
// result map. A missing or undecodable result marks the device offline.
func (d *BaseDevice) bypass(ctx context.Context, payload RequestBody) (map[string]any, error) {
	body := d.bypassBody()
	body["payload"] = payload

	raw, err := d.client.postDeviceManagedV2(ctx, body)
	if err != nil {
		return nil, err
	}

	var env struct {
		Code   int64          `json:"code"`
		Msg    string         `json:"msg"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		d.Details.ConnectionStatus = ConnectionOffline
		return nil, errors.DeviceOfflinef("%s did not respond", d.Details.DeviceName)
	}
	if env.Code != 0 {
		if requestTimeoutCodes[env.Code] {
			d.logger.Debug("device request timed out", "code", env.Code, "msg", env.Msg)
		} else {
			d.logger.Error("bypass call failed", "method", payload["method"], "code", env.Code, "msg", env.Msg)
		}
		return nil, errors.APIErrorf("%v returned code %d: %s", payload["method"], env.Code, env.Msg)
	}
	if innerCode, ok := env.Result["code"]; ok {
		if c, ok := toInt64(innerCode); ok && c != 0 {
			d.logger.Error("device rejected request", "method", payload["method"], "code", c)
			return nil, errors.APIErrorf("%v rejected with device code %d", payload["method"], c)
		}
	}
	return env.Result, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
