package vesync

import "time"

// Base URL for all cloud API requests
const defaultBaseURL = "https://smartapi.vesync.com"

// If a device is out of reach the cloud api sends a timeout response after 7
// seconds, using 8 here so there is time enough to catch that message
const apiTimeout = 8 * time.Second

// Identity the cloud expects from the mobile app
const (
	appVersion      = "4.3.40"
	phoneBrand      = "SM N9005"
	phoneOS         = "Android"
	mobileID        = "1234567890123456"
	userType        = "1"
	bypassUserAgent = "okhttp/3.12.1"
)

// Device status values
const (
	StatusOn  = "on"
	StatusOff = "off"
)

// Connection status values
const (
	ConnectionOnline  = "online"
	ConnectionOffline = "offline"
)

// Energy history periods
const (
	EnergyWeek  = "week"
	EnergyMonth = "month"
	EnergyYear  = "year"
)

// periodDays maps an energy period to the number of days it covers
var periodDays = map[string]int{
	EnergyWeek:  7,
	EnergyMonth: 30,
	EnergyYear:  365,
}

// Cloud API error codes
const (
	codeDeviceOffline = -11300027
	codeWrongArg1     = -11000086
	codeWrongArg2     = -11103086
	codeReqTimeout1   = -11300030
	codeReqTimeout2   = -11302030
)

// rateLimitCodes are returned inside an HTTP 200 envelope when the account is
// sending requests too quickly
var rateLimitCodes = map[int64]bool{
	codeWrongArg1: true,
	codeWrongArg2: true,
}

// requestTimeoutCodes are transient and reported at debug level only
var requestTimeoutCodes = map[int64]bool{
	codeReqTimeout1: true,
	codeReqTimeout2: true,
}

// DeviceFamily classifies supported device categories
type DeviceFamily string

const (
	FamilyOutlet DeviceFamily = "outlet"
	FamilySwitch DeviceFamily = "switch"
	FamilyFan    DeviceFamily = "fan"
)

// Device feature flags
const (
	FeatureEnergyHistory = "energyHistory"
	FeatureDimmable      = "dimmable"
	FeatureAirQuality    = "airQuality"
	FeatureFilterReset   = "filterReset"
)

// Purifier operating modes
const (
	ModeManual = "manual"
	ModeSleep  = "sleep"
	ModeAuto   = "auto"
)
