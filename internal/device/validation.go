package device

import (
	"fmt"

	"github.com/lumensuite/lumen-core/internal/visual"
)

// maxNameLength bounds device names to keep logs and payloads sane.
const maxNameLength = 100

// Validate checks a device for structural validity.
//
// Only structural shape is validated here; whether a device/kind pairing
// can actually be routed is the routing matrix's concern.
func Validate(d *Device) error {
	if d == nil {
		return fmt.Errorf("%w: nil device", ErrInvalidDevice)
	}
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDevice)
	}
	if d.Name == "" || len(d.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidDevice, maxNameLength)
	}
	if d.Address == "" {
		return fmt.Errorf("%w: device %q", ErrInvalidAddress, d.ID)
	}

	if err := validateTransport(d.Transport); err != nil {
		return err
	}
	if err := validateGeometry(d.Geometry); err != nil {
		return fmt.Errorf("device %q: %w", d.ID, err)
	}

	for _, k := range d.SupportedKinds {
		if !visual.IsValidKind(k) {
			return fmt.Errorf("%w: %q", ErrInvalidKind, k)
		}
	}

	return nil
}

func validateTransport(t Transport) error {
	for _, valid := range AllTransports() {
		if t == valid {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidTransport, t)
}

func validateGeometry(g Geometry) error {
	switch g.Dimensionality {
	case visual.OneD:
		if g.Length <= 0 {
			return fmt.Errorf("%w: linear device needs length > 0", ErrInvalidGeometry)
		}
		if g.Width != 0 || g.Height != 0 {
			return fmt.Errorf("%w: linear device must not set width/height", ErrInvalidGeometry)
		}
	case visual.TwoD:
		if g.Width <= 0 || g.Height <= 0 {
			return fmt.Errorf("%w: grid device needs width and height > 0", ErrInvalidGeometry)
		}
		if g.Length != 0 {
			return fmt.Errorf("%w: grid device must not set length", ErrInvalidGeometry)
		}
	default:
		return fmt.Errorf("%w: unknown dimensionality %q", ErrInvalidGeometry, g.Dimensionality)
	}

	if g.PixelCount() <= 0 {
		return fmt.Errorf("%w: pixel count must be > 0", ErrInvalidGeometry)
	}

	return nil
}
