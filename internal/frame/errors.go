package frame

import "errors"

// Domain errors for the frame package.
var (
	// ErrSourceLength is returned when a pixel buffer does not match
	// the length its kind's shape convention demands. The caller keeps
	// its previous buffer; nothing is partially converted.
	ErrSourceLength = errors.New("frame: source buffer length mismatch")

	// ErrEmptyTarget is returned when the target geometry has no pixels.
	ErrEmptyTarget = errors.New("frame: target has no pixels")
)
