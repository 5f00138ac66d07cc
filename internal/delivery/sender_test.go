package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// fakeTransport is a scriptable Transport for sender tests.
type fakeTransport struct {
	mu       sync.Mutex
	failing  bool
	delivers int
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Deliver(_ context.Context, _ Target, _ visual.Buffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivers++
	if f.failing {
		return ErrDeviceUnreachable
	}
	return nil
}

func (f *fakeTransport) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.delivers
}

// fakeHealth records health transitions.
type fakeHealth struct {
	mu     sync.Mutex
	states map[string]device.HealthStatus
}

func newFakeHealth() *fakeHealth {
	return &fakeHealth{states: make(map[string]device.HealthStatus)}
}

func (f *fakeHealth) SetHealth(id string, status device.HealthStatus) {
	f.mu.Lock()
	f.states[id] = status
	f.mu.Unlock()
}

func (f *fakeHealth) get(id string) device.HealthStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[id]
}

// fakeRecorder counts telemetry calls.
type fakeRecorder struct {
	mu    sync.Mutex
	sends int
	fails int
}

func (f *fakeRecorder) RecordSend(_ string, _ time.Duration, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if !ok {
		f.fails++
	}
}

func httpDevice(id string) *device.Device {
	return &device.Device{
		ID:        id,
		Name:      id,
		Address:   "192.168.4.30",
		Transport: device.TransportHTTP,
		Geometry:  device.Geometry{Dimensionality: visual.OneD, Length: 4},
		Enabled:   true,
	}
}

func TestSender_MarksDegradedAfterThreshold(t *testing.T) {
	transport := &fakeTransport{}
	transport.setFailing(true)
	health := newFakeHealth()

	s := NewSender(SenderOptions{
		HTTP:              transport,
		Health:            health,
		DegradedThreshold: 3,
	})

	dev := httpDevice("dev-1")
	buf := make(visual.Buffer, 4)

	for i := 0; i < 2; i++ {
		if err := s.Send(context.Background(), dev, buf); err == nil {
			t.Fatal("Send() succeeded with failing transport")
		}
	}
	if health.get("dev-1") == device.HealthDegraded {
		t.Fatal("device degraded before threshold")
	}

	if err := s.Send(context.Background(), dev, buf); err == nil {
		t.Fatal("Send() succeeded with failing transport")
	}
	if health.get("dev-1") != device.HealthDegraded {
		t.Errorf("health = %q after %d failures, want degraded", health.get("dev-1"), 3)
	}
	if s.ConsecutiveFailures("dev-1") != 3 {
		t.Errorf("ConsecutiveFailures() = %d, want 3", s.ConsecutiveFailures("dev-1"))
	}
}

func TestSender_RecoversOnSuccess(t *testing.T) {
	transport := &fakeTransport{}
	transport.setFailing(true)
	health := newFakeHealth()

	s := NewSender(SenderOptions{
		HTTP:              transport,
		Health:            health,
		DegradedThreshold: 2,
	})

	dev := httpDevice("dev-1")
	buf := make(visual.Buffer, 4)
	for i := 0; i < 2; i++ {
		_ = s.Send(context.Background(), dev, buf)
	}
	if health.get("dev-1") != device.HealthDegraded {
		t.Fatal("device not degraded during failure streak")
	}

	transport.setFailing(false)
	if err := s.Send(context.Background(), dev, buf); err != nil {
		t.Fatalf("Send() error = %v after recovery", err)
	}
	if health.get("dev-1") != device.HealthOnline {
		t.Errorf("health = %q after recovery, want online", health.get("dev-1"))
	}
	if s.ConsecutiveFailures("dev-1") != 0 {
		t.Error("failure streak not reset on success")
	}
}

func TestSender_FailuresTrackedPerDevice(t *testing.T) {
	transport := &fakeTransport{}
	transport.setFailing(true)
	health := newFakeHealth()

	s := NewSender(SenderOptions{HTTP: transport, Health: health, DegradedThreshold: 2})
	buf := make(visual.Buffer, 4)

	_ = s.Send(context.Background(), httpDevice("dev-a"), buf)
	_ = s.Send(context.Background(), httpDevice("dev-b"), buf)

	// One failure each: neither device reaches the threshold even
	// though two failures happened overall.
	if health.get("dev-a") == device.HealthDegraded || health.get("dev-b") == device.HealthDegraded {
		t.Error("failure streaks leaked across devices")
	}
}

func TestSender_NoTransportConfigured(t *testing.T) {
	s := NewSender(SenderOptions{HTTP: &fakeTransport{}})

	dev := httpDevice("dev-1")
	dev.Transport = device.TransportBridge

	err := s.Send(context.Background(), dev, make(visual.Buffer, 4))
	if !errors.Is(err, ErrNoTransport) {
		t.Errorf("Send() error = %v, want ErrNoTransport", err)
	}
}

func TestSender_RecordsTelemetry(t *testing.T) {
	transport := &fakeTransport{}
	rec := &fakeRecorder{}
	s := NewSender(SenderOptions{HTTP: transport, Recorder: rec})

	dev := httpDevice("dev-1")
	buf := make(visual.Buffer, 4)

	_ = s.Send(context.Background(), dev, buf)
	transport.setFailing(true)
	_ = s.Send(context.Background(), dev, buf)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.sends != 2 || rec.fails != 1 {
		t.Errorf("recorder sends=%d fails=%d, want 2/1", rec.sends, rec.fails)
	}
}
