package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/lumensuite/lumen-core/internal/visual"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Device)
		wantErr error
	}{
		{
			name:    "valid linear device",
			mutate:  func(*Device) {},
			wantErr: nil,
		},
		{
			name:    "missing id",
			mutate:  func(d *Device) { d.ID = "" },
			wantErr: ErrInvalidDevice,
		},
		{
			name:    "missing name",
			mutate:  func(d *Device) { d.Name = "" },
			wantErr: ErrInvalidDevice,
		},
		{
			name:    "name too long",
			mutate:  func(d *Device) { d.Name = strings.Repeat("x", maxNameLength+1) },
			wantErr: ErrInvalidDevice,
		},
		{
			name:    "missing address",
			mutate:  func(d *Device) { d.Address = "" },
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "unknown transport",
			mutate:  func(d *Device) { d.Transport = "carrier-pigeon" },
			wantErr: ErrInvalidTransport,
		},
		{
			name:    "linear with zero length",
			mutate:  func(d *Device) { d.Geometry.Length = 0 },
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "linear with grid fields",
			mutate: func(d *Device) {
				d.Geometry.Width = 10
			},
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "grid without height",
			mutate: func(d *Device) {
				d.Geometry = Geometry{Dimensionality: visual.TwoD, Width: 25}
			},
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "grid with stray length",
			mutate: func(d *Device) {
				d.Geometry = Geometry{Dimensionality: visual.TwoD, Width: 25, Height: 6, Length: 150}
			},
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "unknown dimensionality",
			mutate: func(d *Device) {
				d.Geometry.Dimensionality = "3d"
			},
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "unknown supported kind",
			mutate: func(d *Device) {
				d.SupportedKinds = []visual.Kind{"lava-lamp"}
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testStrip("dev-1", 90)
			tt.mutate(d)

			err := Validate(d)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NilDevice(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrInvalidDevice) {
		t.Errorf("Validate(nil) error = %v, want ErrInvalidDevice", err)
	}
}

func TestGeometry_PixelCount(t *testing.T) {
	grid := Geometry{Dimensionality: visual.TwoD, Width: 25, Height: 6}
	if got := grid.PixelCount(); got != 150 {
		t.Errorf("grid PixelCount() = %d, want 150", got)
	}

	strip := Geometry{Dimensionality: visual.OneD, Length: 90}
	if got := strip.PixelCount(); got != 90 {
		t.Errorf("strip PixelCount() = %d, want 90", got)
	}
}
