package frame

import (
	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// ApplyWiring reorders a logical buffer into the device's physical
// wiring order. It is the final step before transmission, applied after
// all conversion and blending, so the rest of the pipeline can stay in
// logical row-major order.
//
// Serpentine reordering happens first, then the global reverse.
// Hardware observed so far wires the reverse flag at the strip's data
// input, i.e. after the physical zig-zag, which matches this order.
func ApplyWiring(geom device.Geometry, reverse bool, buf visual.Buffer) visual.Buffer {
	out := buf.Clone()

	if geom.Dimensionality == visual.TwoD && geom.Serpentine {
		out = serpentine(out, geom.Width, geom.Height)
	}

	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}

// serpentine flips every odd row so consecutive rows run in alternating
// physical directions.
func serpentine(buf visual.Buffer, width, height int) visual.Buffer {
	for y := 1; y < height; y += 2 {
		row := buf[y*width : (y+1)*width]
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
	return buf
}
