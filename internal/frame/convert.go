package frame

import (
	"fmt"

	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// fallbackPixel is the dim warm wash rendered for the generic fallback
// kind, bright enough to show the device is alive without lighting the
// room.
var fallbackPixel = visual.RGB{R: 24, G: 12, B: 2}

// Convert maps a producer's generic pixel buffer onto a device's
// logical buffer: row-major for grids, left-to-right for strips, always
// geom.PixelCount() entries.
//
// Wiring concerns (serpentine, reverse) are deliberately not applied
// here; see ApplyWiring. Keeping conversion geometry-agnostic is what
// makes the strip/grid adapters composable with any wiring order.
//
// Unsupported kind/device combinations degrade to a clamped
// pass-through fill rather than failing: every device still lights up
// with something. The only errors are structural (wrong source length
// for the kind's declared shape, empty target).
func Convert(kind visual.Kind, src visual.Buffer, geom device.Geometry) (visual.Buffer, error) {
	target := geom.PixelCount()
	if target <= 0 {
		return nil, ErrEmptyTarget
	}

	shape := visual.ShapeOf(kind)
	if expected := shape.ExpectedLen(); expected > 0 && len(src) != expected {
		return nil, fmt.Errorf("%w: kind %q expects %d pixels, got %d",
			ErrSourceLength, kind, expected, len(src))
	}

	switch shape.Class {
	case visual.ShapeGrid:
		return convertGridSource(src, shape, geom), nil
	case visual.ShapeLinear:
		return convertLinearSource(src, geom), nil
	default:
		return convertGenerative(kind, src, target), nil
	}
}

// convertGridSource places a row-major Rows x Cols source onto the
// target geometry.
func convertGridSource(src visual.Buffer, shape visual.Shape, geom device.Geometry) visual.Buffer {
	if geom.Dimensionality == visual.TwoD {
		if shape.Rows == geom.Height && shape.Cols == geom.Width {
			return src.Clone()
		}
		return scaleGrid(src, shape.Rows, shape.Cols, geom.Height, geom.Width)
	}

	// Grid onto strip: flatten row-major, then fit to the strip length.
	return fitLinear(src, geom.PixelCount())
}

// convertLinearSource places a strip-shaped source onto the target
// geometry.
func convertLinearSource(src visual.Buffer, geom device.Geometry) visual.Buffer {
	if geom.Dimensionality == visual.TwoD {
		// Section-repeat: every grid row shows the strip, resampled to
		// the row width.
		row := resampleNearest(src, geom.Width)
		out := make(visual.Buffer, 0, geom.PixelCount())
		for y := 0; y < geom.Height; y++ {
			out = append(out, row...)
		}
		return out
	}

	return fitLinear(src, geom.PixelCount())
}

// convertGenerative sizes sources with no fixed geometry directly
// against the target length. The fallback kind ignores its source and
// renders the standard wash.
func convertGenerative(kind visual.Kind, src visual.Buffer, target int) visual.Buffer {
	if kind == visual.KindFallback || len(src) == 0 {
		return FallbackFrame(target)
	}
	if len(src) == target {
		return src.Clone()
	}
	return resampleNearest(src, target)
}

// FallbackFrame returns the generic fallback wash at the given length.
func FallbackFrame(n int) visual.Buffer {
	out := make(visual.Buffer, n)
	for i := range out {
		out[i] = fallbackPixel
	}
	return out
}

// fitLinear fits a source strip into target pixels: identical lengths
// copy through, longer targets centre the source with black padding,
// shorter targets down-sample.
func fitLinear(src visual.Buffer, target int) visual.Buffer {
	switch {
	case len(src) == target:
		return src.Clone()
	case len(src) < target:
		out := make(visual.Buffer, target)
		offset := (target - len(src)) / 2
		copy(out[offset:], src)
		return out
	default:
		return resampleNearest(src, target)
	}
}

// resampleNearest resizes a buffer with nearest-neighbour sampling.
func resampleNearest(src visual.Buffer, target int) visual.Buffer {
	out := make(visual.Buffer, target)
	if len(src) == 0 {
		return out
	}
	for i := 0; i < target; i++ {
		out[i] = src[i*len(src)/target]
	}
	return out
}

// scaleGrid resizes a row-major grid with nearest-neighbour sampling.
func scaleGrid(src visual.Buffer, srcRows, srcCols, dstRows, dstCols int) visual.Buffer {
	out := make(visual.Buffer, dstRows*dstCols)
	if srcRows == 0 || srcCols == 0 {
		return out
	}
	for y := 0; y < dstRows; y++ {
		sy := y * srcRows / dstRows
		for x := 0; x < dstCols; x++ {
			sx := x * srcCols / dstCols
			out[y*dstCols+x] = src[sy*srcCols+sx]
		}
	}
	return out
}
