package errors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidStatus", ErrInvalidStatus, "invalid status"},
		{"ErrRateLimited", ErrRateLimited, "rate limited by api"},
		{"ErrNotLoggedIn", ErrNotLoggedIn, "not logged in"},
		{"ErrDeviceOffline", ErrDeviceOffline, "device offline"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrAPI", ErrAPI, "api error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestConstructorsWrapSentinels(t *testing.T) {
	err := InvalidStatusf("status %q not recognized", "bogus")
	assert.True(t, IsInvalidStatus(err))
	assert.Contains(t, err.Error(), "bogus")

	err = InvalidInputf("brightness %d out of range", 200)
	assert.True(t, IsInvalidInput(err))

	err = DeviceOfflinef("device %s unreachable", "outlet-1")
	assert.True(t, IsDeviceOffline(err))

	err = APIErrorf("code %d", -11201022)
	assert.True(t, errors.Is(err, ErrAPI))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(ErrRateLimited))
	assert.True(t, IsRateLimited(fmt.Errorf("call failed: %w", ErrRateLimited)))
	assert.False(t, IsRateLimited(ErrAPI))
	assert.False(t, IsRateLimited(nil))
}

func TestWrapErrorf(t *testing.T) {
	assert.Nil(t, WrapErrorf(nil, "should stay nil"))

	base := errors.New("boom")
	wrapped := WrapErrorf(base, "fetching %s", "details")
	assert.True(t, errors.Is(wrapped, base))
	assert.Equal(t, "fetching details: boom", wrapped.Error())
}

func TestLogErrorAndReturn(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Nil(t, LogErrorAndReturn(logger, nil, "nothing happened"))

	base := errors.New("boom")
	assert.Equal(t, base, LogErrorAndReturn(logger, base, "something happened", "device", "x"))
}
