package frame

import (
	"errors"
	"testing"

	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

func strip(length int) device.Geometry {
	return device.Geometry{Dimensionality: visual.OneD, Length: length}
}

func grid(width, height int, serpentine bool) device.Geometry {
	return device.Geometry{
		Dimensionality: visual.TwoD,
		Width:          width,
		Height:         height,
		Serpentine:     serpentine,
	}
}

// ramp produces n distinct pixels so reorderings are observable.
func ramp(n int) visual.Buffer {
	out := make(visual.Buffer, n)
	for i := range out {
		out[i] = visual.RGB{R: uint8(i), G: uint8(i >> 8)} //nolint:gosec // test ramp
	}
	return out
}

func TestConvert_SourceLengthValidation(t *testing.T) {
	_, err := Convert(visual.KindStepSequencerGrid, ramp(10), grid(25, 6, false))
	if !errors.Is(err, ErrSourceLength) {
		t.Errorf("Convert() error = %v, want ErrSourceLength", err)
	}

	_, err = Convert(visual.KindPianoRoll, ramp(87), strip(90))
	if !errors.Is(err, ErrSourceLength) {
		t.Errorf("Convert() error = %v, want ErrSourceLength", err)
	}
}

func TestConvert_EmptyTarget(t *testing.T) {
	_, err := Convert(visual.KindRipple, ramp(10), device.Geometry{Dimensionality: visual.OneD})
	if !errors.Is(err, ErrEmptyTarget) {
		t.Errorf("Convert() error = %v, want ErrEmptyTarget", err)
	}
}

func TestConvert_GridToMatchingGrid(t *testing.T) {
	src := ramp(150)
	got, err := Convert(visual.KindStepSequencerGrid, src, grid(25, 6, true))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// Serpentine is wiring, not conversion: logical order must match
	// the source exactly.
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("pixel %d = %v, want %v", i, got[i], src[i])
		}
	}
}

func TestConvert_GridToStripCentrePads(t *testing.T) {
	src := ramp(150)
	got, err := Convert(visual.KindStepSequencerGrid, src, strip(200))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(got) != 200 {
		t.Fatalf("len = %d, want 200", len(got))
	}

	offset := (200 - 150) / 2
	if got[offset-1] != (visual.RGB{}) {
		t.Error("padding before the source is not black")
	}
	if got[offset] != src[0] || got[offset+149] != src[149] {
		t.Error("source not centred in the padded strip")
	}
	if got[offset+150] != (visual.RGB{}) {
		t.Error("padding after the source is not black")
	}
}

func TestConvert_GridToShorterStripDownsamples(t *testing.T) {
	got, err := Convert(visual.KindStepSequencerGrid, ramp(150), strip(75))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(got) != 75 {
		t.Fatalf("len = %d, want 75", len(got))
	}
	// Nearest sampling keeps the first source pixel first.
	if got[0] != (visual.RGB{R: 0}) {
		t.Errorf("first pixel = %v, want source start", got[0])
	}
}

func TestConvert_StripToGridSectionRepeats(t *testing.T) {
	src := ramp(25)
	got, err := Convert(visual.KindStepSequencer1D, src, grid(25, 6, false))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(got) != 150 {
		t.Fatalf("len = %d, want 150", len(got))
	}

	// Every row repeats the strip.
	for y := 0; y < 6; y++ {
		for x := 0; x < 25; x++ {
			if got[y*25+x] != src[x] {
				t.Fatalf("row %d col %d = %v, want %v", y, x, got[y*25+x], src[x])
			}
		}
	}
}

func TestConvert_GenerativeSizesToTarget(t *testing.T) {
	got, err := Convert(visual.KindRipple, ramp(90), strip(90))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(got) != 90 || got[0] != (visual.RGB{R: 0}) || got[89] != (visual.RGB{R: 89}) {
		t.Error("equal-length generative source must pass through unchanged")
	}

	resized, err := Convert(visual.KindRipple, ramp(90), strip(45))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(resized) != 45 {
		t.Errorf("len = %d, want 45", len(resized))
	}
}

func TestConvert_UnknownKindDegradesToFill(t *testing.T) {
	// Unknown kinds are treated as generative; an empty buffer still
	// produces a lit fallback wash rather than an error.
	got, err := Convert(visual.Kind("mystery"), nil, strip(30))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(got) != 30 {
		t.Fatalf("len = %d, want 30", len(got))
	}
	if got[0] == (visual.RGB{}) {
		t.Error("degraded fill is black; device would appear dead")
	}
}

func TestConvert_FallbackKindIgnoresSource(t *testing.T) {
	got, err := Convert(visual.KindFallback, ramp(7), strip(30))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	for i, p := range got {
		if p != fallbackPixel {
			t.Fatalf("pixel %d = %v, want fallback wash", i, p)
		}
	}
}

func TestConvert_RoundTripIdentity(t *testing.T) {
	// Converting a full-length source to an equal-length device with
	// identity wiring yields the original pixel order.
	src := ramp(88)
	converted, err := Convert(visual.KindPianoRoll, src, strip(88))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	wired := ApplyWiring(strip(88), false, converted)

	for i := range src {
		if wired[i] != src[i] {
			t.Fatalf("round-trip pixel %d = %v, want %v", i, wired[i], src[i])
		}
	}
}

func TestApplyWiring_Serpentine(t *testing.T) {
	// 3x2 grid: rows [0 1 2] [3 4 5]; serpentine flips the second row.
	src := ramp(6)
	got := ApplyWiring(grid(3, 2, true), false, src)

	want := []uint8{0, 1, 2, 5, 4, 3}
	for i, w := range want {
		if got[i].R != w {
			t.Fatalf("pixel %d = %d, want %d", i, got[i].R, w)
		}
	}

	// Input must be untouched.
	if src[3].R != 3 {
		t.Error("ApplyWiring mutated its input")
	}
}

func TestApplyWiring_SerpentineThenReverse(t *testing.T) {
	// Serpentine first, then global reverse: [0 1 2 5 4 3] reversed.
	got := ApplyWiring(grid(3, 2, true), true, ramp(6))

	want := []uint8{3, 4, 5, 2, 1, 0}
	for i, w := range want {
		if got[i].R != w {
			t.Fatalf("pixel %d = %d, want %d", i, got[i].R, w)
		}
	}
}

func TestApplyWiring_ReverseOnStrip(t *testing.T) {
	got := ApplyWiring(strip(4), true, ramp(4))
	want := []uint8{3, 2, 1, 0}
	for i, w := range want {
		if got[i].R != w {
			t.Fatalf("pixel %d = %d, want %d", i, got[i].R, w)
		}
	}
}
