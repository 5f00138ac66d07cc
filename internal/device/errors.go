package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidGeometry is returned when geometry fields are
	// inconsistent with the declared dimensionality.
	ErrInvalidGeometry = errors.New("device: invalid geometry")

	// ErrInvalidTransport is returned when a transport value is not recognised.
	ErrInvalidTransport = errors.New("device: invalid transport")

	// ErrInvalidKind is returned when a supported kind is not recognised.
	ErrInvalidKind = errors.New("device: invalid visualization kind")

	// ErrInvalidAddress is returned when the network address is missing.
	ErrInvalidAddress = errors.New("device: invalid address")
)
