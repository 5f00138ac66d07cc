package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// defaultDegradedThreshold is how many consecutive failures flip a
// device to degraded. It stays in the table regardless; hardware that
// comes back recovers on the next successful send.
const defaultDegradedThreshold = 3

// Logger defines the logging interface used by the Sender.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// HealthSetter receives device health transitions. Implemented by
// *device.Directory.
type HealthSetter interface {
	SetHealth(id string, status device.HealthStatus)
}

// Recorder receives per-send telemetry. Implemented by
// *telemetry.Client; nil disables recording.
type Recorder interface {
	RecordSend(deviceID string, duration time.Duration, ok bool)
}

// Sender routes buffers to the transport each device is configured for
// and tracks delivery health.
//
// A failure is logged, counted, and reflected in the device's health
// status; it is never propagated to other devices' sends or to frame
// submitters. Retry happens implicitly on the compositor's next
// scheduled tick.
type Sender struct {
	transports map[device.Transport]Transport
	health     HealthSetter
	recorder   Recorder
	threshold  int
	logger     Logger

	mu       sync.Mutex
	failures map[string]int
}

// SenderOptions configures a Sender.
type SenderOptions struct {
	// HTTP and Bridge are the transport implementations. Either may be
	// nil if no device uses it.
	HTTP   Transport
	Bridge Transport

	// Health receives degraded/online transitions. Optional.
	Health HealthSetter

	// Recorder receives send telemetry. Optional.
	Recorder Recorder

	// DegradedThreshold overrides the consecutive-failure count that
	// marks a device degraded. Zero selects the default.
	DegradedThreshold int
}

// NewSender creates a sender from the given options.
func NewSender(opts SenderOptions) *Sender {
	threshold := opts.DegradedThreshold
	if threshold <= 0 {
		threshold = defaultDegradedThreshold
	}

	transports := make(map[device.Transport]Transport)
	if opts.HTTP != nil {
		transports[device.TransportHTTP] = opts.HTTP
	}
	if opts.Bridge != nil {
		transports[device.TransportBridge] = opts.Bridge
	}

	return &Sender{
		transports: transports,
		health:     opts.Health,
		recorder:   opts.Recorder,
		threshold:  threshold,
		logger:     noopLogger{},
		failures:   make(map[string]int),
	}
}

// SetLogger sets the logger for the sender.
func (s *Sender) SetLogger(logger Logger) {
	s.logger = logger
}

// Send delivers one buffer to one device and updates its health
// bookkeeping. The returned error is informational; callers must not
// let it leak into another device's path.
func (s *Sender) Send(ctx context.Context, dev *device.Device, pixels visual.Buffer) error {
	transport, ok := s.transports[dev.Transport]
	if !ok {
		return fmt.Errorf("%w: %q for device %s", ErrNoTransport, dev.Transport, dev.ID)
	}

	start := time.Now()
	err := transport.Deliver(ctx, TargetFor(dev), pixels)
	elapsed := time.Since(start)

	if s.recorder != nil {
		s.recorder.RecordSend(dev.ID, elapsed, err == nil)
	}

	if err != nil {
		s.recordFailure(dev.ID, err)
		return err
	}

	s.recordSuccess(dev.ID)
	return nil
}

func (s *Sender) recordFailure(deviceID string, err error) {
	s.mu.Lock()
	s.failures[deviceID]++
	count := s.failures[deviceID]
	s.mu.Unlock()

	s.logger.Warn("frame delivery failed",
		"device_id", deviceID,
		"consecutive", count,
		"error", err,
	)

	if count == s.threshold && s.health != nil {
		s.logger.Error("device degraded after repeated delivery failures",
			"device_id", deviceID,
			"failures", count,
		)
		s.health.SetHealth(deviceID, device.HealthDegraded)
	}
}

func (s *Sender) recordSuccess(deviceID string) {
	s.mu.Lock()
	recovered := s.failures[deviceID] >= s.threshold
	s.failures[deviceID] = 0
	s.mu.Unlock()

	if s.health != nil {
		if recovered {
			s.logger.Debug("device recovered", "device_id", deviceID)
		}
		s.health.SetHealth(deviceID, device.HealthOnline)
	}
}

// ConsecutiveFailures returns the current failure streak for a device.
func (s *Sender) ConsecutiveFailures(deviceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[deviceID]
}
