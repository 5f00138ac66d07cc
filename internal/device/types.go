package device

import (
	"time"

	"github.com/lumensuite/lumen-core/internal/visual"
)

// Device represents a physical LED output target.
//
// Devices are maintained by an external configuration surface (the
// config file, an admin UI, a discovery service); the routing core
// treats them as value objects refreshed on each routing recomputation.
type Device struct {
	// Identity
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Address is the network address of the device or, for bridge
	// delivery, the address the bridge uses to reach it.
	Address string `json:"address" yaml:"address"`

	// Transport selects the delivery mechanism for this device.
	Transport Transport `json:"transport" yaml:"transport"`

	// Geometry describes the physical pixel layout.
	Geometry Geometry `json:"geometry" yaml:"geometry"`

	// SupportedKinds lists the visualization kinds this device accepts.
	SupportedKinds []visual.Kind `json:"supported_kinds" yaml:"supported_kinds"`

	// Priority biases routing toward this device when a module's
	// output could go to several. Higher wins.
	Priority int `json:"priority" yaml:"priority"`

	// Brightness scales all channels at delivery time (0-255).
	Brightness uint8 `json:"brightness" yaml:"brightness"`

	// Reverse flips the final wiring order end-to-end.
	Reverse bool `json:"reverse" yaml:"reverse"`

	// Enabled devices participate in routing; disabled devices receive
	// no assignment and no frames.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Health monitoring, maintained by the delivery layer.
	HealthStatus   HealthStatus `json:"health_status" yaml:"-"`
	HealthLastSeen *time.Time   `json:"health_last_seen,omitempty" yaml:"-"`
}

// Clone creates a complete independent copy of the Device.
// Slice fields are cloned so modifications to the copy do not affect
// the original. This is essential for directory cache isolation.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}

	cpy := *d

	if d.SupportedKinds != nil {
		cpy.SupportedKinds = make([]visual.Kind, len(d.SupportedKinds))
		copy(cpy.SupportedKinds, d.SupportedKinds)
	}

	if d.HealthLastSeen != nil {
		seen := *d.HealthLastSeen
		cpy.HealthLastSeen = &seen
	}

	return &cpy
}

// Supports reports whether the device accepts the given kind.
func (d *Device) Supports(kind visual.Kind) bool {
	for _, k := range d.SupportedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Geometry describes a device's physical pixel layout.
type Geometry struct {
	Dimensionality visual.Dimensionality `json:"dimensionality" yaml:"dimensionality"`

	// Width and Height apply to grid devices only.
	Width  int `json:"width,omitempty" yaml:"width"`
	Height int `json:"height,omitempty" yaml:"height"`

	// Serpentine indicates alternating row wiring direction on grids.
	Serpentine bool `json:"serpentine,omitempty" yaml:"serpentine"`

	// Length is the strip length for linear devices.
	Length int `json:"length,omitempty" yaml:"length"`
}

// PixelCount returns the total number of physical pixels.
func (g Geometry) PixelCount() int {
	if g.Dimensionality == visual.TwoD {
		return g.Width * g.Height
	}
	return g.Length
}

// Transport selects how the final buffer reaches the device.
type Transport string

// Transport constants.
const (
	// TransportHTTP posts a JSON state payload directly to the device,
	// suitable for modest frame rates and pixel counts.
	TransportHTTP Transport = "http"

	// TransportBridge sends frames over a persistent connection to a
	// local bridge process, for higher sustained rates.
	TransportBridge Transport = "bridge"
)

// AllTransports returns all valid transport values.
func AllTransports() []Transport {
	return []Transport{TransportHTTP, TransportBridge}
}

// HealthStatus represents the device delivery health state.
type HealthStatus string

// HealthStatus constants.
const (
	HealthOnline   HealthStatus = "online"
	HealthDegraded HealthStatus = "degraded"
	HealthOffline  HealthStatus = "offline"
	HealthUnknown  HealthStatus = "unknown"
)
