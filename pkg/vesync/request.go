package vesync

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RequestBody is a JSON request body for the cloud API. Most endpoints take a
// flat object assembled from a handful of shared field groups, with callers
// adding endpoint-specific keys on top.
type RequestBody map[string]any

// hashPassword encodes the account password the way the mobile app does.
func hashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// calculateHex parses the legacy "a:b" hex power format of first-generation
// outlets. Credit for the conversion goes to itsnotlupus/vesync_wsproxy.
func calculateHex(hexString string) (float64, error) {
	parts := strings.Split(hexString, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed hex pair %q", hexString)
	}
	a, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil {
		return 0, err
	}
	b, err := strconv.ParseInt(parts[1], 16, 64)
	if err != nil {
		return 0, err
	}
	return float64(a+b) / 8192, nil
}

// traceID returns a fresh request trace identifier.
func traceID() string {
	return uuid.NewString()
}

// reqBodyBase holds the locale fields every request carries.
func (c *Client) reqBodyBase() RequestBody {
	return RequestBody{
		"timeZone":       c.timeZone,
		"acceptLanguage": "en",
	}
}

// reqBodyAuth holds the session fields of an authenticated request.
func (c *Client) reqBodyAuth() RequestBody {
	return RequestBody{
		"accountID": c.accountID,
		"token":     c.token,
	}
}

// reqBodyDetails holds the app identity fields.
func (c *Client) reqBodyDetails() RequestBody {
	return RequestBody{
		"appVersion": appVersion,
		"phoneBrand": phoneBrand,
		"phoneOS":    phoneOS,
		"traceId":    traceID(),
	}
}

func merge(bodies ...RequestBody) RequestBody {
	out := RequestBody{}
	for _, b := range bodies {
		for k, v := range b {
			out[k] = v
		}
	}
	return out
}

// ReqBodyLogin builds the login request body.
func (c *Client) ReqBodyLogin() RequestBody {
	body := merge(c.reqBodyBase(), c.reqBodyDetails())
	body["email"] = c.username
	body["password"] = hashPassword(c.password)
	body["devToken"] = ""
	body["userType"] = userType
	body["method"] = "login"
	return body
}

// ReqBodyDeviceList builds the device list request body.
func (c *Client) ReqBodyDeviceList() RequestBody {
	body := merge(c.reqBodyBase(), c.reqBodyAuth(), c.reqBodyDetails())
	body["method"] = "devices"
	body["pageNo"] = "1"
	body["pageSize"] = "100"
	return body
}

// ReqBodyDeviceDetail builds the body shared by devicedetail endpoints.
func (c *Client) ReqBodyDeviceDetail() RequestBody {
	body := merge(c.reqBodyBase(), c.reqBodyAuth(), c.reqBodyDetails())
	body["method"] = "devicedetail"
	body["mobileId"] = mobileID
	return body
}

// ReqBodyStatus builds the body shared by devicestatus endpoints.
func (c *Client) ReqBodyStatus() RequestBody {
	return merge(c.reqBodyBase(), c.reqBodyAuth())
}

// ReqBodyEnergy builds the body for an energy history request.
func (c *Client) ReqBodyEnergy(period string) RequestBody {
	body := merge(c.reqBodyBase(), c.reqBodyAuth(), c.reqBodyDetails())
	body["method"] = "energy" + period
	body["mobileId"] = mobileID
	return body
}

// ReqBodyBypassV2 builds the outer body for a bypassV2 managed-device call.
func (c *Client) ReqBodyBypassV2() RequestBody {
	body := merge(c.reqBodyBase(), c.reqBodyAuth(), c.reqBodyDetails())
	body["deviceRegion"] = c.region
	body["method"] = "bypassV2"
	body["debugMode"] = false
	return body
}

// ReqHeaders returns the headers for v1 endpoints of an authenticated session.
func (c *Client) ReqHeaders() map[string]string {
	return map[string]string{
		"accept-language": "en",
		"accountId":       c.accountID,
		"appVersion":      appVersion,
		"content-type":    "application/json",
		"tk":              c.token,
		"tz":              c.timeZone,
	}
}

// ReqHeaderBypass returns the headers for bypass endpoints.
func (c *Client) ReqHeaderBypass() map[string]string {
	return map[string]string{
		"Content-Type": "application/json; charset=UTF-8",
		"User-Agent":   bypassUserAgent,
	}
}
