package visual

import "fmt"

// RGB is a single pixel colour. Channels are full-range 0-255;
// brightness scaling happens at delivery time, not here.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Buffer is a linear run of pixels. Interpretation (row-major grid or
// plain strip) depends on the Shape of the kind that produced it.
type Buffer []RGB

// Clone returns an independent copy of the buffer.
func (b Buffer) Clone() Buffer {
	if b == nil {
		return nil
	}
	cpy := make(Buffer, len(b))
	copy(cpy, b)
	return cpy
}

// Hex returns the pixel as an uppercase 6-character hex string
// ("RRGGBB"), the format the WLED JSON API expects.
func (p RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", p.R, p.G, p.B)
}

// Kind names a category of pixel pattern a module can produce.
type Kind string

// Visualization kinds.
const (
	// KindStepSequencerGrid is a 2D pattern mirroring a step sequencer's
	// row-per-track, column-per-step layout.
	KindStepSequencerGrid Kind = "step-sequencer-grid"

	// KindStepSequencer1D is a linear rendering of the current step
	// position and active notes, for strip devices.
	KindStepSequencer1D Kind = "step-sequencer-1d"

	// KindPianoRoll highlights currently sounding keys along a strip.
	KindPianoRoll Kind = "piano-roll"

	// KindRipple is a reactive effect radiating from trigger points.
	// It has no fixed source geometry.
	KindRipple Kind = "ripple"

	// KindAmbientGlow is a slow-moving background wash.
	// It has no fixed source geometry.
	KindAmbientGlow Kind = "ambient-glow"

	// KindFallback is the catch-all kind assigned when nothing else
	// matches, so every enabled device still lights up.
	KindFallback Kind = "fallback"
)

// AllKinds returns all known visualization kinds.
func AllKinds() []Kind {
	return []Kind{
		KindStepSequencerGrid, KindStepSequencer1D, KindPianoRoll,
		KindRipple, KindAmbientGlow, KindFallback,
	}
}

// IsValidKind reports whether k is a known visualization kind.
func IsValidKind(k Kind) bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Dimensionality classifies device pixel layouts.
type Dimensionality string

// Dimensionality constants.
const (
	OneD Dimensionality = "1d"
	TwoD Dimensionality = "2d"
)

// DimensionPreference expresses which device layouts a descriptor fits.
type DimensionPreference string

// DimensionPreference constants.
const (
	Prefer1D     DimensionPreference = "1d"
	Prefer2D     DimensionPreference = "2d"
	PreferEither DimensionPreference = "either"
)

// IsValidPreference reports whether p is a known preference value.
func IsValidPreference(p DimensionPreference) bool {
	return p == Prefer1D || p == Prefer2D || p == PreferEither
}

// ShapeClass distinguishes how a kind's source buffer is laid out.
type ShapeClass string

// ShapeClass constants.
const (
	// ShapeGrid sources are row-major Rows x Cols buffers.
	ShapeGrid ShapeClass = "grid"

	// ShapeLinear sources are fixed-length strips.
	ShapeLinear ShapeClass = "linear"

	// ShapeGenerative sources carry no fixed geometry; producers size
	// the buffer however they like and conversion renders against the
	// target length directly.
	ShapeGenerative ShapeClass = "generative"
)

// Shape describes the source geometry a kind's buffers are produced in.
type Shape struct {
	Class ShapeClass `json:"class"`
	Rows  int        `json:"rows,omitempty"`
	Cols  int        `json:"cols,omitempty"`
	// Length is the expected pixel count for linear shapes.
	Length int `json:"length,omitempty"`
}

// ExpectedLen returns the pixel count a buffer of this shape must have,
// or 0 if any length is acceptable (generative shapes).
func (s Shape) ExpectedLen() int {
	switch s.Class {
	case ShapeGrid:
		return s.Rows * s.Cols
	case ShapeLinear:
		return s.Length
	default:
		return 0
	}
}

// Source shape conventions for the built-in kinds. Grid dimensions
// match the step sequencer's 6 tracks x 25 steps; linear kinds use the
// sequencer's 25-step timeline (piano-roll covers 88 keys).
var shapes = map[Kind]Shape{
	KindStepSequencerGrid: {Class: ShapeGrid, Rows: 6, Cols: 25},
	KindStepSequencer1D:   {Class: ShapeLinear, Length: 25},
	KindPianoRoll:         {Class: ShapeLinear, Length: 88},
	KindRipple:            {Class: ShapeGenerative},
	KindAmbientGlow:       {Class: ShapeGenerative},
	KindFallback:          {Class: ShapeGenerative},
}

// ShapeOf returns the source shape convention for a kind.
// Unknown kinds are treated as generative so conversion can still
// degrade to a pass-through fill.
func ShapeOf(k Kind) Shape {
	if s, ok := shapes[k]; ok {
		return s
	}
	return Shape{Class: ShapeGenerative}
}
