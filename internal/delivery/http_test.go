package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

func stripTarget(id string, length int) Target {
	return Target{
		DeviceID:   id,
		Geometry:   device.Geometry{Dimensionality: visual.OneD, Length: length},
		Brightness: 255,
	}
}

func TestHTTPTransport_PayloadFormat(t *testing.T) {
	var gotPath string
	var gotBody statePayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	target := stripTarget("dev-1", 3)
	target.Address = strings.TrimPrefix(srv.URL, "http://")

	tr := NewHTTPTransport(0)
	err := tr.Deliver(context.Background(), target, visual.Buffer{
		{R: 255}, {G: 255}, {B: 16},
	})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if gotPath != "/json/state" {
		t.Errorf("path = %q, want /json/state", gotPath)
	}
	want := []string{"FF0000", "00FF00", "000010"}
	if len(gotBody.Seg.I) != 3 {
		t.Fatalf("pixel count = %d, want 3", len(gotBody.Seg.I))
	}
	for i, w := range want {
		if gotBody.Seg.I[i] != w {
			t.Errorf("pixel %d = %q, want %q", i, gotBody.Seg.I[i], w)
		}
	}
}

func TestHTTPTransport_BrightnessAndReverse(t *testing.T) {
	var gotBody statePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	target := stripTarget("dev-1", 2)
	target.Address = strings.TrimPrefix(srv.URL, "http://")
	target.Brightness = 128
	target.Reverse = true

	tr := NewHTTPTransport(0)
	err := tr.Deliver(context.Background(), target, visual.Buffer{
		{R: 255}, {B: 255},
	})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	// Reverse flips pixel order; brightness 128 halves channels.
	if gotBody.Seg.I[0] != "000080" || gotBody.Seg.I[1] != "800000" {
		t.Errorf("pixels = %v, want [000080 800000]", gotBody.Seg.I)
	}
}

func TestHTTPTransport_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	target := stripTarget("dev-1", 1)
	target.Address = strings.TrimPrefix(srv.URL, "http://")

	tr := NewHTTPTransport(0)
	err := tr.Deliver(context.Background(), target, visual.Buffer{{}})
	if !errors.Is(err, ErrRejected) {
		t.Errorf("Deliver() error = %v, want ErrRejected", err)
	}
}

func TestHTTPTransport_UnreachableHost(t *testing.T) {
	target := stripTarget("dev-1", 1)
	target.Address = "127.0.0.1:1" // nothing listens there

	tr := NewHTTPTransport(200 * time.Millisecond)
	err := tr.Deliver(context.Background(), target, visual.Buffer{{}})
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Errorf("Deliver() error = %v, want ErrDeviceUnreachable", err)
	}
}

func TestHTTPTransport_BufferLimit(t *testing.T) {
	target := stripTarget("dev-1", maxHTTPPixels+1)

	tr := NewHTTPTransport(0)
	err := tr.Deliver(context.Background(), target, make(visual.Buffer, maxHTTPPixels+1))
	if !errors.Is(err, ErrBufferTooLarge) {
		t.Errorf("Deliver() error = %v, want ErrBufferTooLarge", err)
	}
}

func TestPrepare_SerpentineReverseBrightness(t *testing.T) {
	target := Target{
		Geometry: device.Geometry{
			Dimensionality: visual.TwoD,
			Width:          2,
			Height:         2,
			Serpentine:     true,
		},
		Brightness: 128,
		Reverse:    true,
	}

	src := visual.Buffer{{R: 200}, {R: 100}, {R: 60}, {R: 20}}
	got := prepare(target, src)

	// Serpentine: [200 100 20 60]; reverse: [60 20 100 200]; halve.
	want := []uint8{30, 10, 50, 100}
	for i, w := range want {
		if got[i].R != w {
			t.Fatalf("pixel %d = %d, want %d", i, got[i].R, w)
		}
	}

	// Input untouched: the compositor keeps reusing its blend buffer.
	if src[0].R != 200 {
		t.Error("prepare mutated the input buffer")
	}
}
