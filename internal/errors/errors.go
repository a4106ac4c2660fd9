package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidStatus is returned when a status value outside the recognized set
// is passed to a timer or device operation
var ErrInvalidStatus = errors.New("invalid status")

// ErrRateLimited is returned when the cloud API answers with one of its
// rate-limit error codes
var ErrRateLimited = errors.New("rate limited by api")

// ErrNotLoggedIn is returned when an authenticated call is attempted before Login
var ErrNotLoggedIn = errors.New("not logged in")

// ErrDeviceOffline is returned when the cloud reports the device as unreachable
var ErrDeviceOffline = errors.New("device offline")

// ErrInvalidInput is returned when the provided input is invalid
var ErrInvalidInput = errors.New("invalid input")

// ErrAPI is returned when the cloud API answers with a non-zero result code
var ErrAPI = errors.New("api error")

// LogErrorAndReturn logs an error with structured context and returns it
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	// Don't modify nil errors
	if err == nil {
		return nil
	}

	// Log the error with the provided context
	logger.Error(message, append([]any{"error", err}, args...)...)
	return err
}

// WrapErrorf wraps an error with additional context using fmt.Errorf
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsInvalidStatus returns true if the error is or wraps ErrInvalidStatus
func IsInvalidStatus(err error) bool {
	return errors.Is(err, ErrInvalidStatus)
}

// IsRateLimited returns true if the error is or wraps ErrRateLimited
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsDeviceOffline returns true if the error is or wraps ErrDeviceOffline
func IsDeviceOffline(err error) bool {
	return errors.Is(err, ErrDeviceOffline)
}

// IsInvalidInput returns true if the error is or wraps ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// InvalidStatusf returns a formatted ErrInvalidStatus error
func InvalidStatusf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidStatus)...)
}

// InvalidInputf returns a formatted ErrInvalidInput error
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// DeviceOfflinef returns a formatted ErrDeviceOffline error
func DeviceOfflinef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDeviceOffline)...)
}

// APIErrorf returns a formatted ErrAPI error
func APIErrorf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrAPI)...)
}
