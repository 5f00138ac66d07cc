package compositor

import (
	"testing"

	"github.com/lumensuite/lumen-core/internal/visual"
)

func TestBlendAddClampsPerChannel(t *testing.T) {
	dst := visual.Buffer{{R: 200, G: 100, B: 0}, {R: 10, G: 10, B: 10}}
	src := visual.Buffer{{R: 100, G: 100, B: 5}, {R: 1, G: 2, B: 3}}

	blendAdd(dst, src)

	want := visual.Buffer{{R: 255, G: 200, B: 5}, {R: 11, G: 12, B: 13}}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("pixel %d = %+v, want %+v", i, dst[i], want[i])
		}
	}
}

func TestBlendAddCommutative(t *testing.T) {
	a := visual.Buffer{{R: 250, G: 3, B: 128}, {R: 40, G: 200, B: 9}}
	b := visual.Buffer{{R: 30, G: 255, B: 128}, {R: 41, G: 100, B: 0}}

	ab := a.Clone()
	blendAdd(ab, b)
	ba := b.Clone()
	blendAdd(ba, a)

	for i := range ab {
		if ab[i] != ba[i] {
			t.Errorf("pixel %d: a+b=%+v b+a=%+v", i, ab[i], ba[i])
		}
	}
}

func TestBlendAddShorterSource(t *testing.T) {
	dst := visual.Buffer{{R: 1}, {R: 2}, {R: 3}}
	src := visual.Buffer{{R: 10}}

	blendAdd(dst, src)

	if dst[0].R != 11 {
		t.Errorf("dst[0].R = %d, want 11", dst[0].R)
	}
	if dst[1].R != 2 || dst[2].R != 3 {
		t.Errorf("pixels beyond source length changed: %+v", dst)
	}
}
