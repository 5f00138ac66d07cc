package routing

import (
	"time"

	"github.com/lumensuite/lumen-core/internal/capability"
	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// FallbackModuleID is the synthetic module ID assigned as primary when
// no registered module matches a device. The compositor recognises it
// and renders the fallback wash itself; no real module produces it.
const FallbackModuleID = "system.fallback"

// PrimaryRef identifies a device's primary assignment.
type PrimaryRef struct {
	ModuleID string      `json:"module_id"`
	Kind     visual.Kind `json:"kind"`
	Score    int         `json:"score"`
}

// OverlayRef identifies one overlay assignment on a device.
type OverlayRef struct {
	ModuleID string      `json:"module_id"`
	Kind     visual.Kind `json:"kind"`
}

// Assignment is the derived routing result for one device: exactly one
// primary plus zero or more overlays.
type Assignment struct {
	DeviceID string       `json:"device_id"`
	Primary  PrimaryRef   `json:"primary"`
	Overlays []OverlayRef `json:"overlays,omitempty"`
}

// Table is the complete routing result for one epoch. It is immutable
// after computation; readers always see a whole table, never a
// half-built one.
type Table struct {
	// Epoch uniquely identifies this recomputation.
	Epoch      string    `json:"epoch"`
	ComputedAt time.Time `json:"computed_at"`

	// Assignments maps device ID to its assignment. Disabled devices
	// are absent.
	Assignments map[string]Assignment `json:"assignments"`
}

// EmptyTable returns a table with no assignments, used before the first
// computation.
func EmptyTable() *Table {
	return &Table{Assignments: map[string]Assignment{}}
}

// PrimaryDevices returns the IDs of devices where the module's kind is
// the primary assignment, sorted order not guaranteed.
func (t *Table) PrimaryDevices(moduleID string, kind visual.Kind) []string {
	var ids []string
	for id, a := range t.Assignments {
		if a.Primary.ModuleID == moduleID && a.Primary.Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// OverlayDevices returns the IDs of devices where the module's kind is
// assigned as an overlay.
func (t *Table) OverlayDevices(moduleID string, kind visual.Kind) []string {
	var ids []string
	for id, a := range t.Assignments {
		for _, o := range a.Overlays {
			if o.ModuleID == moduleID && o.Kind == kind {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}

// References reports whether the module appears anywhere in the table,
// as a primary or an overlay. Modules that are nobody's assignment can
// have their frames dropped cheaply.
func (t *Table) References(moduleID string) bool {
	for _, a := range t.Assignments {
		if a.Primary.ModuleID == moduleID {
			return true
		}
		for _, o := range a.Overlays {
			if o.ModuleID == moduleID {
				return true
			}
		}
	}
	return false
}

// Candidate is one (module, descriptor) pairing under consideration for
// a device. Rules may adjust scores, disqualify, revive, or reclassify
// candidates before selection.
type Candidate struct {
	ModuleID   string
	Descriptor capability.Descriptor

	// Score is the current compatibility score. Higher wins.
	Score int

	// Disqualified candidates are skipped at selection unless a rule
	// revives them.
	Disqualified bool

	// PrimaryEligible marks candidates selectable as a device primary.
	PrimaryEligible bool
}

// Computation is the working state a rule pipeline operates on. Rules
// receive it after raw scoring and are free to mutate candidates and
// per-device flags; selection runs after all rules have applied.
type Computation struct {
	Devices      []device.Device
	Capabilities []capability.ModuleCapability
	ActiveModule string

	// Candidates holds the score table per device ID.
	Candidates map[string][]*Candidate

	// SuppressOverlays disables overlay assignment for a device.
	SuppressOverlays map[string]bool
}

// DeviceByID returns the device for an ID, or nil if absent.
func (c *Computation) DeviceByID(id string) *device.Device {
	for i := range c.Devices {
		if c.Devices[i].ID == id {
			return &c.Devices[i]
		}
	}
	return nil
}
