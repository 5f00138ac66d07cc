package routing

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lumensuite/lumen-core/internal/capability"
	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// Raw scoring weights. Descriptor priority dominates, device priority
// breaks ties between devices, dimensional fit rewards native layouts.
const (
	descriptorPriorityWeight = 10
	dimensionMatchCredit     = 20
	dimensionEitherCredit    = 10
)

// Logger defines the logging interface used by the Matrix.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Matrix computes device assignments from capability data and the rule
// engine. Computation is pure and deterministic: identical inputs
// produce identical tables (modulo epoch ID and timestamp), which the
// test suite relies on.
//
// Complexity is O(devices x modules x descriptors); the expected scale
// is tens of entries, so full recomputation per change beats any
// incremental scheme in simplicity and is still far below frame budget.
type Matrix struct {
	engine *Engine
	logger Logger
}

// NewMatrix creates a matrix using the given rule engine.
func NewMatrix(engine *Engine) *Matrix {
	return &Matrix{engine: engine, logger: noopLogger{}}
}

// SetLogger sets the logger for the matrix.
func (m *Matrix) SetLogger(logger Logger) {
	m.logger = logger
}

// Compute builds a fresh routing table.
//
// Disabled devices receive no assignment. Every enabled device ends
// with exactly one primary (the fallback rule guarantees it) plus any
// overlay-compatible descriptors from other modules that survive rule
// suppression.
func (m *Matrix) Compute(devices []device.Device, caps []capability.ModuleCapability, activeModule string) *Table {
	start := time.Now()

	comp := &Computation{
		Devices:          enabledSorted(devices),
		Capabilities:     capsSorted(caps),
		ActiveModule:     activeModule,
		Candidates:       make(map[string][]*Candidate),
		SuppressOverlays: make(map[string]bool),
	}

	for _, dev := range comp.Devices {
		comp.Candidates[dev.ID] = rawCandidates(dev, comp.Capabilities)
	}

	m.engine.Apply(comp)

	table := &Table{
		Epoch:       uuid.NewString(),
		ComputedAt:  time.Now().UTC(),
		Assignments: make(map[string]Assignment, len(comp.Devices)),
	}

	for _, dev := range comp.Devices {
		table.Assignments[dev.ID] = selectAssignment(dev.ID, comp)
	}

	m.logger.Debug("routing table computed",
		"epoch", table.Epoch,
		"devices", len(table.Assignments),
		"modules", len(comp.Capabilities),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return table
}

// rawCandidates builds the unadjusted score table for one device.
// Descriptors for kinds the device does not support are not candidates
// at all; dimension mismatches become disqualified candidates that the
// fallback rule may later revive.
func rawCandidates(dev device.Device, caps []capability.ModuleCapability) []*Candidate {
	var out []*Candidate
	for _, mod := range caps {
		for _, desc := range mod.Produces {
			if !dev.Supports(desc.Kind) {
				continue
			}

			cand := &Candidate{
				ModuleID:        mod.ModuleID,
				Descriptor:      desc,
				Score:           desc.Priority*descriptorPriorityWeight + dev.Priority,
				PrimaryEligible: true,
			}

			switch fit(desc.DimensionPreference, dev.Geometry.Dimensionality) {
			case fitMatch:
				cand.Score += dimensionMatchCredit
			case fitEither:
				cand.Score += dimensionEitherCredit
			case fitMismatch:
				cand.Disqualified = true
			}

			out = append(out, cand)
		}
	}
	return out
}

type fitResult int

const (
	fitMatch fitResult = iota
	fitEither
	fitMismatch
)

func fit(pref visual.DimensionPreference, dim visual.Dimensionality) fitResult {
	switch pref {
	case visual.PreferEither:
		return fitEither
	case visual.Prefer1D:
		if dim == visual.OneD {
			return fitMatch
		}
	case visual.Prefer2D:
		if dim == visual.TwoD {
			return fitMatch
		}
	}
	return fitMismatch
}

// selectAssignment picks the primary and overlays for one device after
// all rules have applied.
func selectAssignment(deviceID string, comp *Computation) Assignment {
	candidates := comp.Candidates[deviceID]

	primary := bestPrimary(candidates)
	assignment := Assignment{DeviceID: deviceID}
	if primary != nil {
		assignment.Primary = PrimaryRef{
			ModuleID: primary.ModuleID,
			Kind:     primary.Descriptor.Kind,
			Score:    primary.Score,
		}
	}

	if comp.SuppressOverlays[deviceID] || primary == nil {
		return assignment
	}

	// One overlay per module: highest score wins, ties broken by kind.
	bestByModule := make(map[string]*Candidate)
	for _, cand := range candidates {
		if cand.Disqualified || !cand.Descriptor.OverlayCompatible {
			continue
		}
		if cand.ModuleID == primary.ModuleID {
			continue
		}
		cur, ok := bestByModule[cand.ModuleID]
		if !ok || cand.Score > cur.Score ||
			(cand.Score == cur.Score && cand.Descriptor.Kind < cur.Descriptor.Kind) {
			bestByModule[cand.ModuleID] = cand
		}
	}

	moduleIDs := make([]string, 0, len(bestByModule))
	for id := range bestByModule {
		moduleIDs = append(moduleIDs, id)
	}
	sort.Strings(moduleIDs)

	for _, id := range moduleIDs {
		cand := bestByModule[id]
		assignment.Overlays = append(assignment.Overlays, OverlayRef{
			ModuleID: cand.ModuleID,
			Kind:     cand.Descriptor.Kind,
		})
	}

	return assignment
}

func enabledSorted(devices []device.Device) []device.Device {
	out := make([]device.Device, 0, len(devices))
	for _, d := range devices {
		if d.Enabled {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func capsSorted(caps []capability.ModuleCapability) []capability.ModuleCapability {
	out := make([]capability.ModuleCapability, len(caps))
	copy(out, caps)
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleID < out[j].ModuleID })
	return out
}
