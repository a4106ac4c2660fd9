package vesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/vesync-go/vesync/internal/errors"
)

var timeZonePattern = regexp.MustCompile(`^[a-zA-Z/_]+$`)

// Client manages a VeSync account session. All device objects issue their
// API calls through it. Call Login before anything else, then Update to
// populate the device lists.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string

	username string
	password string
	timeZone string
	region   string

	token       string
	accountID   string
	countryCode string
	enabled     bool
	redact      bool

	updateInterval       time.Duration
	energyUpdateInterval time.Duration
	lastUpdate           time.Time

	// Outlets, Switches and Fans are populated by Update, grouped by family.
	Outlets  []Device
	Switches []Device
	Fans     []Device
}

// New creates a client for the given account. A nil logger falls back to
// slog.Default. An optional custom http.Client may be supplied, mostly for
// tests; by default requests time out after 8 seconds.
func New(username, password string, logger *slog.Logger, httpClient ...*http.Client) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	hc := &http.Client{Timeout: apiTimeout}
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	}
	return &Client{
		logger:               logger,
		httpClient:           hc,
		baseURL:              defaultBaseURL,
		username:             username,
		password:             password,
		timeZone:             "America/New_York",
		region:               "US",
		redact:               true,
		updateInterval:       30 * time.Second,
		energyUpdateInterval: 6 * time.Hour,
	}
}

// SetCredentials replaces the account credentials used by Login. Empty
// values keep the current ones.
func (c *Client) SetCredentials(username, password string) {
	if username != "" {
		c.username = username
	}
	if password != "" {
		c.password = password
	}
}

// SetTimeZone sets the IANA time zone sent with every request. Values with
// characters outside [a-zA-Z/_] are rejected and the default kept.
func (c *Client) SetTimeZone(tz string) {
	if tz == "" || !timeZonePattern.MatchString(tz) {
		c.logger.Debug("invalid time zone, keeping current", "tz", tz)
		return
	}
	c.timeZone = tz
}

// SetRegion sets the device region sent with bypass requests.
func (c *Client) SetRegion(region string) {
	if region != "" {
		c.region = region
	}
}

// SetBaseURL overrides the API base URL. Intended for tests and proxies.
func (c *Client) SetBaseURL(url string) {
	if url != "" {
		c.baseURL = url
	}
}

// SetRedact controls masking of sensitive values in debug logs.
func (c *Client) SetRedact(redact bool) {
	c.redact = redact
}

// SetUpdateInterval sets the minimum time between device list refreshes.
func (c *Client) SetUpdateInterval(d time.Duration) {
	if d > 0 {
		c.updateInterval = d
	}
}

// SetEnergyUpdateInterval sets the minimum time between energy refreshes.
func (c *Client) SetEnergyUpdateInterval(d time.Duration) {
	if d > 0 {
		c.energyUpdateInterval = d
	}
}

// Enabled reports whether a login has succeeded.
func (c *Client) Enabled() bool { return c.enabled }

// AccountID returns the account id of the current session.
func (c *Client) AccountID() string { return c.accountID }

// CountryCode returns the country code reported at login.
func (c *Client) CountryCode() string { return c.countryCode }

// call performs a cloud API request and returns the raw JSON body of a 200
// response. Rate-limit codes inside a 200 envelope surface as ErrRateLimited;
// transport failures, non-200 statuses and undecodable bodies are logged and
// returned as errors.
func (c *Client) call(ctx context.Context, method, path string, headers map[string]string, body any) (json.RawMessage, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapErrorf(err, "failed to marshal request body")
		}
		c.logger.Debug("api request", "method", method, "path", path, "body", c.redactIfEnabled(bodyBytes))
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		c.logger.Debug("api request", "method", method, "path", path)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, errors.WrapErrorf(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "method", method, "path", path, "error", err)
		return nil, errors.WrapErrorf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapErrorf(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("api error response",
			"method", method, "path", path,
			"status", resp.StatusCode, "body", c.redactIfEnabled(respBody))
		return nil, fmt.Errorf("%s %s: unexpected status code %d", method, path, resp.StatusCode)
	}

	c.logger.Debug("api response", "method", method, "path", path, "body", c.redactIfEnabled(respBody))

	var env responseEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		c.logger.Error("api response decode failed", "method", method, "path", path, "error", err)
		return nil, errors.WrapErrorf(err, "failed to decode response")
	}
	if rateLimitCodes[env.Code] {
		c.logger.Error("api rate limit hit", "method", method, "path", path, "code", env.Code)
		return nil, errors.ErrRateLimited
	}

	return respBody, nil
}

// Login authenticates against the cloud and stores the session token.
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" {
		return errors.InvalidInputf("username must not be empty")
	}
	if c.password == "" {
		return errors.InvalidInputf("password must not be empty")
	}

	raw, err := c.call(ctx, http.MethodPost, "/cloud/v1/user/login", nil, c.ReqBodyLogin())
	if err != nil {
		return err
	}

	var resp struct {
		Code   int64  `json:"code"`
		Msg    string `json:"msg"`
		Result struct {
			Token       string `json:"token"`
			AccountID   string `json:"accountID"`
			CountryCode string `json:"countryCode"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.WrapErrorf(err, "failed to decode login response")
	}
	if resp.Code != 0 || resp.Result.Token == "" {
		return errors.APIErrorf("login failed: %s (code %d)", resp.Msg, resp.Code)
	}

	c.token = resp.Result.Token
	c.accountID = resp.Result.AccountID
	c.countryCode = resp.Result.CountryCode
	c.enabled = true
	c.logger.Debug("login successful", "accountID", redactedValue)
	return nil
}

// GetDevices fetches the account device list and instantiates device objects
// for any model the registry knows, removing devices no longer present.
func (c *Client) GetDevices(ctx context.Context) error {
	if !c.enabled {
		return errors.ErrNotLoggedIn
	}

	raw, err := c.call(ctx, http.MethodPost, "/cloud/v1/deviceManaged/devices",
		c.ReqHeaderBypass(), c.ReqBodyDeviceList())
	if err != nil {
		return err
	}

	var resp struct {
		Code   int64  `json:"code"`
		Msg    string `json:"msg"`
		Result struct {
			List []DeviceDetails `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.WrapErrorf(err, "failed to decode device list")
	}
	if resp.Code != 0 {
		return errors.APIErrorf("device list failed: %s (code %d)", resp.Msg, resp.Code)
	}
	if resp.Result.List == nil {
		c.logger.Error("device list in response not found")
		return errors.APIErrorf("device list missing from response")
	}

	c.processDevices(resp.Result.List)
	return nil
}

// fixDeviceIDs fills in a missing cid from macID or uuid and drops entries
// with no usable identifier at all.
func (c *Client) fixDeviceIDs(list []DeviceDetails) []DeviceDetails {
	out := list[:0]
	for _, d := range list {
		if d.CID == "" {
			switch {
			case d.MacID != "":
				d.CID = d.MacID
			case d.UUID != "":
				d.CID = d.UUID
			default:
				c.logger.Warn("device with no id", "deviceName", d.DeviceName)
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// hasDevice reports whether a device with the same cid and sub-device number
// is already tracked.
func (c *Client) hasDevice(details DeviceDetails) bool {
	for _, dev := range c.devices() {
		b := dev.Base()
		if b.Details.CID == details.CID && b.Details.SubDeviceNo == details.SubDeviceNo {
			return true
		}
	}
	return false
}

// removeStaleDevices drops tracked devices whose cid no longer appears in the
// fresh device list.
func (c *Client) removeStaleDevices(list []DeviceDetails) {
	known := make(map[string]bool, len(list))
	for _, d := range list {
		known[d.CID] = true
	}
	filter := func(devs []Device) []Device {
		out := devs[:0]
		for _, dev := range devs {
			if known[dev.Base().Details.CID] {
				out = append(out, dev)
			} else {
				c.logger.Debug("device removed",
					"deviceName", dev.Base().Details.DeviceName,
					"model", dev.Base().Details.DeviceType)
			}
		}
		return out
	}
	c.Outlets = filter(c.Outlets)
	c.Switches = filter(c.Switches)
	c.Fans = filter(c.Fans)
}

// processDevices instantiates device objects for new list entries.
func (c *Client) processDevices(list []DeviceDetails) {
	list = c.fixDeviceIDs(list)
	if len(list) == 0 {
		c.logger.Warn("no devices found in api return")
		return
	}

	c.removeStaleDevices(list)

	for _, details := range list {
		if details.DeviceType == "" || details.DeviceName == "" || details.DeviceStatus == "" {
			c.logger.Debug("skipping device list entry with missing keys")
			continue
		}
		if c.hasDevice(details) {
			continue
		}
		dev := buildDevice(details, c)
		if dev == nil {
			c.logger.Debug("unknown device",
				"deviceName", details.DeviceName, "model", details.DeviceType)
			continue
		}
		switch dev.Base().Family {
		case FamilyOutlet:
			c.Outlets = append(c.Outlets, dev)
		case FamilySwitch:
			c.Switches = append(c.Switches, dev)
		case FamilyFan:
			c.Fans = append(c.Fans, dev)
		}
	}
}

// devices returns all tracked devices across families.
func (c *Client) devices() []Device {
	out := make([]Device, 0, len(c.Outlets)+len(c.Switches)+len(c.Fans))
	out = append(out, c.Outlets...)
	out = append(out, c.Switches...)
	out = append(out, c.Fans...)
	return out
}

// Devices returns all tracked devices across families.
func (c *Client) Devices() []Device {
	return c.devices()
}

// updateDue reports whether the update interval has been exceeded.
func (c *Client) updateDue() bool {
	return c.lastUpdate.IsZero() || time.Since(c.lastUpdate) > c.updateInterval
}

// Update refreshes the device list and the details of every device. It is
// rate limited by the configured update interval; calls inside the window
// are no-ops.
func (c *Client) Update(ctx context.Context) error {
	if !c.updateDue() {
		return nil
	}
	if !c.enabled {
		c.logger.Error("not logged in")
		return errors.ErrNotLoggedIn
	}
	if err := c.GetDevices(ctx); err != nil {
		return err
	}

	c.logger.Debug("updating device details")
	if err := c.UpdateAllDevices(ctx); err != nil {
		return err
	}
	c.lastUpdate = time.Now()
	return nil
}

// UpdateAllDevices refreshes the details of every tracked device. The first
// failure is returned after all devices have been attempted.
func (c *Client) UpdateAllDevices(ctx context.Context) error {
	var firstErr error
	for _, dev := range c.devices() {
		if err := dev.Update(ctx); err != nil {
			c.logger.Error("device update failed",
				"deviceName", dev.Base().Details.DeviceName, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// UpdateEnergy refreshes the energy history of every outlet that supports it.
// Unless bypassCheck is set, outlets skip the refresh inside their energy
// update interval.
func (c *Client) UpdateEnergy(ctx context.Context, bypassCheck bool) {
	for _, dev := range c.Outlets {
		reporter, ok := dev.(EnergyReporter)
		if !ok {
			continue
		}
		if err := reporter.UpdateEnergy(ctx, bypassCheck); err != nil {
			c.logger.Error("energy update failed",
				"deviceName", dev.Base().Details.DeviceName, "error", err)
		}
	}
}

// postDeviceManagedV2 posts a bypassV2 payload to the managed device endpoint.
func (c *Client) postDeviceManagedV2(ctx context.Context, body RequestBody) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, "/cloud/v2/deviceManaged/bypassV2", c.ReqHeaderBypass(), body)
}
