package routing

import (
	"reflect"
	"testing"

	"github.com/lumensuite/lumen-core/internal/capability"
	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

func gridDevice(id string) device.Device {
	return device.Device{
		ID:        id,
		Name:      "Grid " + id,
		Address:   "10.0.0.1",
		Transport: device.TransportBridge,
		Geometry: device.Geometry{
			Dimensionality: visual.TwoD,
			Width:          25,
			Height:         6,
			Serpentine:     true,
		},
		SupportedKinds: []visual.Kind{
			visual.KindStepSequencerGrid, visual.KindRipple,
			visual.KindAmbientGlow, visual.KindFallback,
		},
		Brightness: 255,
		Enabled:    true,
	}
}

func stripDevice(id string, length int, kinds ...visual.Kind) device.Device {
	if len(kinds) == 0 {
		kinds = []visual.Kind{visual.KindStepSequencer1D, visual.KindRipple, visual.KindFallback}
	}
	return device.Device{
		ID:        id,
		Name:      "Strip " + id,
		Address:   "10.0.0.2",
		Transport: device.TransportHTTP,
		Geometry: device.Geometry{
			Dimensionality: visual.OneD,
			Length:         length,
		},
		SupportedKinds: kinds,
		Brightness:     255,
		Enabled:        true,
	}
}

func sequencerModule() capability.ModuleCapability {
	return capability.ModuleCapability{
		ModuleID: "step-seq",
		Produces: []capability.Descriptor{
			{
				Kind:                visual.KindStepSequencerGrid,
				DimensionPreference: visual.Prefer2D,
				Priority:            10,
			},
			{
				Kind:                visual.KindStepSequencer1D,
				DimensionPreference: visual.Prefer1D,
				Priority:            8,
			},
		},
	}
}

func rippleModule() capability.ModuleCapability {
	return capability.ModuleCapability{
		ModuleID: "ripple-fx",
		Produces: []capability.Descriptor{
			{
				Kind:                visual.KindRipple,
				DimensionPreference: visual.PreferEither,
				OverlayCompatible:   true,
				Priority:            3,
			},
		},
	}
}

func newTestMatrix() *Matrix {
	return NewMatrix(NewEngine())
}

func TestCompute_PrimaryOnGrid(t *testing.T) {
	// Device A (6x25 grid) + module M declaring a 2D step sequencer
	// grid visualization: M must be A's primary.
	m := newTestMatrix()
	table := m.Compute(
		[]device.Device{gridDevice("grid-a")},
		[]capability.ModuleCapability{sequencerModule()},
		"",
	)

	a, ok := table.Assignments["grid-a"]
	if !ok {
		t.Fatal("no assignment for grid-a")
	}
	if a.Primary.ModuleID != "step-seq" || a.Primary.Kind != visual.KindStepSequencerGrid {
		t.Errorf("primary = %+v, want step-seq/step-sequencer-grid", a.Primary)
	}
	if len(a.Overlays) != 0 {
		t.Errorf("overlays = %v, want none", a.Overlays)
	}
}

func TestCompute_PrimaryPlusOverlay(t *testing.T) {
	m := newTestMatrix()
	table := m.Compute(
		[]device.Device{gridDevice("grid-a")},
		[]capability.ModuleCapability{sequencerModule(), rippleModule()},
		"",
	)

	a := table.Assignments["grid-a"]
	if a.Primary.ModuleID != "step-seq" {
		t.Errorf("primary module = %q, want step-seq", a.Primary.ModuleID)
	}
	if len(a.Overlays) != 1 || a.Overlays[0].ModuleID != "ripple-fx" || a.Overlays[0].Kind != visual.KindRipple {
		t.Errorf("overlays = %v, want sole ripple-fx/ripple", a.Overlays)
	}
}

func TestCompute_FallbackWhenNoCapableModule(t *testing.T) {
	// Device B supports only step-sequencer-1d (plus fallback) and no
	// module produces it: B's primary falls back to the generic kind.
	m := newTestMatrix()
	b := stripDevice("strip-b", 90, visual.KindStepSequencer1D, visual.KindFallback)

	table := m.Compute([]device.Device{b}, nil, "")

	a, ok := table.Assignments["strip-b"]
	if !ok {
		t.Fatal("no assignment for strip-b")
	}
	if a.Primary.ModuleID != FallbackModuleID || a.Primary.Kind != visual.KindFallback {
		t.Errorf("primary = %+v, want fallback", a.Primary)
	}
}

func TestCompute_EveryEnabledDeviceHasPrimary(t *testing.T) {
	m := newTestMatrix()
	devices := []device.Device{
		gridDevice("grid-a"),
		stripDevice("strip-b", 90),
		stripDevice("strip-c", 30, visual.KindPianoRoll, visual.KindFallback),
	}

	table := m.Compute(devices, []capability.ModuleCapability{rippleModule()}, "")

	if len(table.Assignments) != 3 {
		t.Fatalf("assignments = %d, want 3", len(table.Assignments))
	}
	for id, a := range table.Assignments {
		if a.Primary.ModuleID == "" {
			t.Errorf("device %s has no primary", id)
		}
	}
}

func TestCompute_OverlayOnlyNeverPrimary(t *testing.T) {
	// Even when the overlay module is the only candidate, it must not
	// become primary; the fallback takes over instead.
	m := newTestMatrix()
	table := m.Compute(
		[]device.Device{stripDevice("strip-b", 90)},
		[]capability.ModuleCapability{rippleModule()},
		"ripple-fx",
	)

	a := table.Assignments["strip-b"]
	if a.Primary.ModuleID == "ripple-fx" {
		t.Error("overlay-only module selected as primary")
	}
	if a.Primary.ModuleID != FallbackModuleID {
		t.Errorf("primary = %+v, want fallback", a.Primary)
	}
	if len(a.Overlays) != 1 || a.Overlays[0].ModuleID != "ripple-fx" {
		t.Errorf("overlays = %v, want ripple-fx composited on the fallback", a.Overlays)
	}
}

func TestCompute_DisabledDeviceGetsNothing(t *testing.T) {
	m := newTestMatrix()
	off := gridDevice("grid-off")
	off.Enabled = false

	table := m.Compute(
		[]device.Device{off, gridDevice("grid-a")},
		[]capability.ModuleCapability{sequencerModule()},
		"",
	)

	if _, ok := table.Assignments["grid-off"]; ok {
		t.Error("disabled device received an assignment")
	}
	if _, ok := table.Assignments["grid-a"]; !ok {
		t.Error("enabled device missing from table")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	m := newTestMatrix()
	devices := []device.Device{
		gridDevice("grid-a"),
		stripDevice("strip-b", 90),
	}
	caps := []capability.ModuleCapability{
		sequencerModule(), rippleModule(),
		{
			ModuleID: "drone",
			Produces: []capability.Descriptor{
				{Kind: visual.KindAmbientGlow, DimensionPreference: visual.PreferEither, OverlayCompatible: true, Priority: 3},
			},
		},
	}

	first := m.Compute(devices, caps, "step-seq")
	second := m.Compute(devices, caps, "step-seq")

	// Epoch and timestamp differ by design; assignments must not.
	if !reflect.DeepEqual(first.Assignments, second.Assignments) {
		t.Errorf("assignments differ across identical computations:\n%+v\n%+v",
			first.Assignments, second.Assignments)
	}
	if first.Epoch == second.Epoch {
		t.Error("epochs should be unique per computation")
	}
}

func TestCompute_ActiveModuleWinsTies(t *testing.T) {
	m := newTestMatrix()
	modA := capability.ModuleCapability{
		ModuleID: "aaa-seq",
		Produces: []capability.Descriptor{
			{Kind: visual.KindStepSequencerGrid, DimensionPreference: visual.Prefer2D, Priority: 10},
		},
	}
	modZ := capability.ModuleCapability{
		ModuleID: "zzz-seq",
		Produces: []capability.Descriptor{
			{Kind: visual.KindStepSequencerGrid, DimensionPreference: visual.Prefer2D, Priority: 10},
		},
	}
	devices := []device.Device{gridDevice("grid-a")}
	caps := []capability.ModuleCapability{modA, modZ}

	// Without an active module the lexical tie-break picks aaa-seq.
	table := m.Compute(devices, caps, "")
	if got := table.Assignments["grid-a"].Primary.ModuleID; got != "aaa-seq" {
		t.Errorf("tie-break primary = %q, want aaa-seq", got)
	}

	// Marking zzz-seq active flips the result.
	table = m.Compute(devices, caps, "zzz-seq")
	if got := table.Assignments["grid-a"].Primary.ModuleID; got != "zzz-seq" {
		t.Errorf("active-module primary = %q, want zzz-seq", got)
	}
}

func TestCompute_DimensionFallback(t *testing.T) {
	// A module that only produces a 2D-preferring kind still lands on a
	// strip when that strip is the only device supporting the kind.
	m := newTestMatrix()
	strip := stripDevice("strip-b", 90, visual.KindStepSequencerGrid, visual.KindFallback)
	mod := capability.ModuleCapability{
		ModuleID: "grid-only",
		Produces: []capability.Descriptor{
			{Kind: visual.KindStepSequencerGrid, DimensionPreference: visual.Prefer2D, Priority: 10},
		},
	}

	table := m.Compute([]device.Device{strip}, []capability.ModuleCapability{mod}, "")

	a := table.Assignments["strip-b"]
	if a.Primary.ModuleID != "grid-only" {
		t.Errorf("primary = %+v, want revived grid-only module", a.Primary)
	}
}

func TestCompute_ExclusiveGridSuppressesOverlays(t *testing.T) {
	m := newTestMatrix()
	exclusive := capability.ModuleCapability{
		ModuleID: "takeover",
		Produces: []capability.Descriptor{
			{
				Kind:                visual.KindStepSequencerGrid,
				DimensionPreference: visual.Prefer2D,
				Priority:            10,
				Exclusive:           true,
			},
		},
	}

	table := m.Compute(
		[]device.Device{gridDevice("grid-a"), stripDevice("strip-b", 90)},
		[]capability.ModuleCapability{exclusive, rippleModule()},
		"",
	)

	grid := table.Assignments["grid-a"]
	if grid.Primary.ModuleID != "takeover" {
		t.Fatalf("grid primary = %+v, want takeover", grid.Primary)
	}
	if len(grid.Overlays) != 0 {
		t.Errorf("grid overlays = %v, want suppressed", grid.Overlays)
	}

	// Suppression is per device: the strip keeps its overlay.
	strip := table.Assignments["strip-b"]
	if len(strip.Overlays) != 1 {
		t.Errorf("strip overlays = %v, want ripple retained", strip.Overlays)
	}
}

func TestCompute_OverlayOnlyExclusiveCannotSuppress(t *testing.T) {
	// An overlay-compatible descriptor can never become the primary, so
	// its exclusive claim must not suppress overlays either, even when
	// it outscores every real primary candidate.
	m := newTestMatrix()
	shimmer := capability.ModuleCapability{
		ModuleID: "shimmer",
		Produces: []capability.Descriptor{
			{
				Kind:                visual.KindAmbientGlow,
				DimensionPreference: visual.Prefer2D,
				Priority:            20,
				OverlayCompatible:   true,
				Exclusive:           true,
			},
		},
	}

	table := m.Compute(
		[]device.Device{gridDevice("grid-a")},
		[]capability.ModuleCapability{shimmer, sequencerModule(), rippleModule()},
		"",
	)

	a := table.Assignments["grid-a"]
	if a.Primary.ModuleID != "step-seq" {
		t.Fatalf("primary = %+v, want step-seq", a.Primary)
	}
	if len(a.Overlays) != 2 {
		t.Fatalf("overlays = %v, want ripple-fx and shimmer retained", a.Overlays)
	}
	if a.Overlays[0].ModuleID != "ripple-fx" || a.Overlays[1].ModuleID != "shimmer" {
		t.Errorf("overlays = %v, want [ripple-fx shimmer]", a.Overlays)
	}
}

func TestCompute_DevicePriorityBiasesScore(t *testing.T) {
	m := newTestMatrix()
	favoured := gridDevice("grid-a")
	favoured.Priority = 5

	table := m.Compute(
		[]device.Device{favoured},
		[]capability.ModuleCapability{sequencerModule()},
		"",
	)

	plain := newTestMatrix().Compute(
		[]device.Device{gridDevice("grid-a")},
		[]capability.ModuleCapability{sequencerModule()},
		"",
	)

	got := table.Assignments["grid-a"].Primary.Score
	want := plain.Assignments["grid-a"].Primary.Score + 5
	if got != want {
		t.Errorf("favoured device score = %d, want %d", got, want)
	}
}

func TestTable_Lookups(t *testing.T) {
	m := newTestMatrix()
	table := m.Compute(
		[]device.Device{gridDevice("grid-a"), stripDevice("strip-b", 90)},
		[]capability.ModuleCapability{sequencerModule(), rippleModule()},
		"",
	)

	if got := table.PrimaryDevices("step-seq", visual.KindStepSequencerGrid); len(got) != 1 || got[0] != "grid-a" {
		t.Errorf("PrimaryDevices() = %v, want [grid-a]", got)
	}
	if got := table.OverlayDevices("ripple-fx", visual.KindRipple); len(got) != 2 {
		t.Errorf("OverlayDevices() = %v, want both devices", got)
	}
	if !table.References("step-seq") || !table.References("ripple-fx") {
		t.Error("References() = false for assigned modules")
	}
	if table.References("ghost") {
		t.Error("References(ghost) = true, want false")
	}
}
