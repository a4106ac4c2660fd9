package vesync

// deviceConstructor builds a concrete device from its device list entry.
type deviceConstructor func(details DeviceDetails, client *Client) Device

// deviceRegistry maps model strings from the device list to constructors.
// Model aliases share one entry.
var deviceRegistry = map[string]deviceConstructor{
	// Outlets
	"wifi-switch-1.3": func(d DeviceDetails, c *Client) Device { return NewOutlet7A(d, c) },
	"ESW03-USA":       func(d DeviceDetails, c *Client) Device { return NewOutlet10A(d, c) },
	"ESW01-EU":        func(d DeviceDetails, c *Client) Device { return NewOutlet10A(d, c) },
	"ESW15-USA":       func(d DeviceDetails, c *Client) Device { return NewOutlet15A(d, c) },
	"ESO15-TB":        func(d DeviceDetails, c *Client) Device { return NewOutdoorPlug(d, c) },
	"BSDOG01":         func(d DeviceDetails, c *Client) Device { return NewOutletBSDGO1(d, c) },
	"WYSMTOD16A":      func(d DeviceDetails, c *Client) Device { return NewOutletWYSMTOD16A(d, c) },

	// Wall switches
	"ESWL01": func(d DeviceDetails, c *Client) Device { return NewWallSwitch(d, c) },
	"ESWL03": func(d DeviceDetails, c *Client) Device { return NewWallSwitch(d, c) },
	"ESWD16": func(d DeviceDetails, c *Client) Device { return NewDimmerSwitch(d, c) },

	// Air purifier models register themselves from fan.go, next to their
	// mode and level tables.
}

// SupportedModels returns the model strings the library can drive.
func SupportedModels() []string {
	models := make([]string, 0, len(deviceRegistry))
	for m := range deviceRegistry {
		models = append(models, m)
	}
	return models
}

// buildDevice constructs the device for a device list entry, or nil when the
// model is not supported.
func buildDevice(details DeviceDetails, client *Client) Device {
	construct, ok := deviceRegistry[details.DeviceType]
	if !ok {
		client.logger.Debug("unsupported device model skipped",
			"device", details.DeviceName, "model", details.DeviceType)
		return nil
	}
	return construct(details, client)
}
