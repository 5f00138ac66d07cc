package compositor

import "github.com/lumensuite/lumen-core/internal/visual"

// blendAdd composites src onto dst with per-channel saturating
// addition. Buffers of unequal length blend over the overlapping
// prefix; the compositor converts both sides to device length first, so
// a mismatch only occurs transiently around a geometry change.
//
// Saturating addition is commutative, so overlay application order
// never changes the final image.
func blendAdd(dst, src visual.Buffer) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i].R = satAdd(dst[i].R, src[i].R)
		dst[i].G = satAdd(dst[i].G, src[i].G)
		dst[i].B = satAdd(dst[i].B, src[i].B)
	}
}

func satAdd(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum) //nolint:gosec // clamped above
}
