package delivery

import (
	"context"

	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/frame"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// Target carries everything a transport needs to address one device.
// It is a flat value extracted from the device record so transports
// never reach back into the directory.
type Target struct {
	DeviceID   string
	Address    string
	Geometry   device.Geometry
	Brightness uint8
	Reverse    bool
}

// TargetFor builds a delivery target from a device record.
func TargetFor(d *device.Device) Target {
	return Target{
		DeviceID:   d.ID,
		Address:    d.Address,
		Geometry:   d.Geometry,
		Brightness: d.Brightness,
		Reverse:    d.Reverse,
	}
}

// Transport sends a prepared buffer to a physical device. The two
// implementations (stateless HTTP, persistent bridge socket) are
// interchangeable behind this contract; the compositor never knows
// which one a device uses.
//
// Deliver must honour ctx cancellation and return an error for any
// failure (timeout, unreachable host, non-success status). It must
// never panic on unreachable hardware.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, target Target, pixels visual.Buffer) error
}

// prepare turns a logical buffer into the exact transmission order:
// wiring reordering (serpentine, then reverse) followed by brightness
// scaling. Both transports share this path so a device renders
// identically whichever one carries its frames.
func prepare(target Target, pixels visual.Buffer) visual.Buffer {
	out := frame.ApplyWiring(target.Geometry, target.Reverse, pixels)

	if target.Brightness < 255 {
		scale := int(target.Brightness)
		for i := range out {
			out[i].R = uint8(int(out[i].R) * scale / 255) //nolint:gosec // bounded by 255
			out[i].G = uint8(int(out[i].G) * scale / 255) //nolint:gosec // bounded by 255
			out[i].B = uint8(int(out[i].B) * scale / 255) //nolint:gosec // bounded by 255
		}
	}

	return out
}
