package vesync

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLoggedInClient returns a client with a fake session, pointed at baseURL
// when one is given.
func newLoggedInClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := New("user@example.com", "password", testLogger())
	c.token = "test-token"
	c.accountID = "test-account"
	c.enabled = true
	if baseURL != "" {
		c.SetBaseURL(baseURL)
	}
	return c
}

// outletDetails builds a device list entry for a given model.
func outletDetails(model string) DeviceDetails {
	return DeviceDetails{
		DeviceName:       "test-" + model,
		CID:              "cid-" + model,
		UUID:             "uuid-" + model,
		DeviceType:       model,
		ConfigModule:     "config-" + model,
		ConnectionStatus: ConnectionOnline,
		DeviceStatus:     StatusOn,
	}
}
