package delivery

import "errors"

// Domain errors for the delivery package.
var (
	// ErrDeviceUnreachable indicates a network-level failure reaching
	// the device or bridge.
	ErrDeviceUnreachable = errors.New("delivery: device unreachable")

	// ErrRejected indicates the device answered with a non-success
	// status.
	ErrRejected = errors.New("delivery: device rejected frame")

	// ErrBufferTooLarge indicates the pixel count exceeds what the
	// transport's firmware-side buffer can accept.
	ErrBufferTooLarge = errors.New("delivery: buffer exceeds transport limit")

	// ErrNoTransport indicates a device references a transport the
	// sender was not built with.
	ErrNoTransport = errors.New("delivery: no such transport")
)
