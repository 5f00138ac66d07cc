package capability

import "github.com/lumensuite/lumen-core/internal/visual"

// Descriptor declares one visualization a module can currently produce.
type Descriptor struct {
	// Kind is the visualization category.
	Kind visual.Kind `json:"kind"`

	// DimensionPreference states which device layouts this output
	// suits: 1d, 2d, or either.
	DimensionPreference visual.DimensionPreference `json:"dimension_preference"`

	// OverlayCompatible outputs may be composited on top of another
	// module's primary image. Descriptors that are overlay-compatible
	// and nothing else are never chosen as a device's primary.
	OverlayCompatible bool `json:"overlay_compatible"`

	// Priority is the base routing score for this descriptor. Higher
	// wins.
	Priority int `json:"priority"`

	// Exclusive marks a 2D visualization that claims a grid device for
	// itself, suppressing overlay composition on that device.
	Exclusive bool `json:"exclusive,omitempty"`
}

// ModuleCapability is the full declaration a module registers on
// activation: which visualizations it can produce right now.
type ModuleCapability struct {
	ModuleID string       `json:"module_id"`
	Produces []Descriptor `json:"produces"`
}

// Clone creates an independent copy of the capability.
func (c ModuleCapability) Clone() ModuleCapability {
	cpy := c
	if c.Produces != nil {
		cpy.Produces = make([]Descriptor, len(c.Produces))
		copy(cpy.Produces, c.Produces)
	}
	return cpy
}

// OverlayOnly reports whether every descriptor is overlay-compatible
// with no primary-capable alternative. Such modules can never be a
// device's primary.
func (c ModuleCapability) OverlayOnly() bool {
	if len(c.Produces) == 0 {
		return false
	}
	for _, d := range c.Produces {
		if !d.OverlayCompatible {
			return false
		}
	}
	return true
}
