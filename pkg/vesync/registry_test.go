package vesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDevice(t *testing.T) {
	c := New("user@example.com", "password", testLogger())

	tests := []struct {
		model  string
		want   any
		family DeviceFamily
	}{
		{"wifi-switch-1.3", &Outlet7A{}, FamilyOutlet},
		{"ESW03-USA", &Outlet10A{}, FamilyOutlet},
		{"ESW01-EU", &Outlet10A{}, FamilyOutlet},
		{"ESW15-USA", &Outlet15A{}, FamilyOutlet},
		{"ESO15-TB", &OutdoorPlug{}, FamilyOutlet},
		{"BSDOG01", &OutletBSDGO1{}, FamilyOutlet},
		{"WYSMTOD16A", &OutletWYSMTOD16A{}, FamilyOutlet},
		{"ESWL01", &WallSwitch{}, FamilySwitch},
		{"ESWL03", &WallSwitch{}, FamilySwitch},
		{"ESWD16", &DimmerSwitch{}, FamilySwitch},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			dev := buildDevice(outletDetails(tt.model), c)
			require.NotNil(t, dev)
			assert.IsType(t, tt.want, dev)
			assert.Equal(t, tt.family, dev.Base().Family)
		})
	}
}

func TestBuildDeviceUnknownModel(t *testing.T) {
	c := New("user@example.com", "password", testLogger())
	assert.Nil(t, buildDevice(outletDetails("ESL100"), c))
}

func TestSupportedModels(t *testing.T) {
	models := SupportedModels()
	assert.Len(t, models, len(deviceRegistry))
	assert.Contains(t, models, "wifi-switch-1.3")
	assert.Contains(t, models, "ESWD16")
}

func TestOfflineDeviceReportsOff(t *testing.T) {
	c := New("user@example.com", "password", testLogger())
	details := outletDetails("ESW15-USA")
	details.ConnectionStatus = ConnectionOffline
	details.DeviceStatus = StatusOn

	dev := buildDevice(details, c)
	require.NotNil(t, dev)
	assert.False(t, dev.Base().IsOn())
}

func TestDeviceEqual(t *testing.T) {
	c := New("user@example.com", "password", testLogger())
	a := buildDevice(outletDetails("ESW15-USA"), c)
	b := buildDevice(outletDetails("ESW15-USA"), c)
	other := buildDevice(outletDetails("ESW03-USA"), c)

	assert.True(t, a.Base().Equal(b.Base()))
	assert.False(t, a.Base().Equal(other.Base()))
	assert.False(t, a.Base().Equal(nil))
}
