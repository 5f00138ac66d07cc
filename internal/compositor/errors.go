package compositor

import "errors"

// Domain errors for the compositor package.
var (
	// ErrInvalidFrame is returned when a submitted pixel buffer does
	// not match the length its kind demands. The previous buffer is
	// retained; nothing on any device changes.
	ErrInvalidFrame = errors.New("compositor: invalid frame")

	// ErrNotRunning is returned when frames are submitted before Start
	// or after Stop.
	ErrNotRunning = errors.New("compositor: not running")
)
