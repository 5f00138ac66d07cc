package compositor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumensuite/lumen-core/internal/capability"
	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/frame"
	"github.com/lumensuite/lumen-core/internal/routing"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// Defaults for CompositorConfig.
const (
	defaultMaxUpdatesPerSecond = 30

	// housekeepingInterval bounds how long a dirty routing table can
	// sit unrecomputed when no frames are flowing.
	housekeepingInterval = 500 * time.Millisecond
)

// Logger defines the logging interface used by the Compositor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// FrameSender delivers one buffer to one device. Implemented by
// *delivery.Sender; faked in tests.
type FrameSender interface {
	Send(ctx context.Context, dev *device.Device, pixels visual.Buffer) error
}

// TickRecorder receives coalescing telemetry. Implemented by
// *telemetry.Client; nil disables recording.
type TickRecorder interface {
	RecordDroppedTicks(deviceID string, n int)
}

// RecomputeRecorder is the optional extension of TickRecorder that also
// receives routing recomputation timings. Implemented by
// *telemetry.Client.
type RecomputeRecorder interface {
	RecordRecompute(duration time.Duration, devices int)
}

// CompositorConfig holds tunables for the compositor.
type CompositorConfig struct {
	// MaxUpdatesPerSecond caps outgoing wire sends per device. Frames
	// submitted faster than this update the in-memory buffer and are
	// coalesced into the next scheduled send. Zero selects the default.
	MaxUpdatesPerSecond int
}

// Deps holds the dependencies required by the Compositor.
type Deps struct {
	Directory *device.Directory
	Modules   *capability.Registry
	Matrix    *routing.Matrix
	Sender    FrameSender
	Recorder  TickRecorder // optional
	Logger    Logger       // optional
	Config    CompositorConfig
}

// Compositor orchestrates the path from submitted module frames to
// per-device wire sends: routing lookup, geometry conversion, additive
// overlay blending, per-device rate limiting, and delivery hand-off.
//
// It is an explicitly constructed instance; callers hold a reference
// and several independent compositors can coexist (each test gets its
// own). All public methods are safe for concurrent use.
type Compositor struct {
	directory *device.Directory
	modules   *capability.Registry
	matrix    *routing.Matrix
	sender    FrameSender
	recorder  TickRecorder
	logger    Logger
	interval  time.Duration

	// table is the current routing epoch; swapped atomically so
	// submitters see either the old or the new table, never a partial.
	table atomic.Pointer[routing.Table]
	dirty atomic.Bool

	// recomputeMu serialises recomputation itself.
	recomputeMu sync.Mutex

	// frameVersion provides monotonically increasing frame versions.
	frameVersion atomic.Uint64

	// frames caches the last known frame per (module, kind) so overlays
	// re-blend when only the primary repaints, and so routing changes
	// can repaint from cache.
	framesMu sync.RWMutex
	frames   map[frameKey]*cachedFrame

	// devices holds per-device compositing state and sender loops.
	devicesMu sync.Mutex
	devices   map[string]*deviceState

	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type frameKey struct {
	moduleID string
	kind     visual.Kind
}

type cachedFrame struct {
	pixels    visual.Buffer
	version   uint64
	timestamp time.Time
}

// New creates a compositor from its dependencies. Registry and
// directory change notifications are wired here; the caller only has to
// Start it.
func New(deps Deps) (*Compositor, error) {
	if deps.Directory == nil || deps.Modules == nil || deps.Matrix == nil || deps.Sender == nil {
		return nil, fmt.Errorf("compositor: directory, modules, matrix, and sender are required")
	}

	rate := deps.Config.MaxUpdatesPerSecond
	if rate <= 0 {
		rate = defaultMaxUpdatesPerSecond
	}

	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Compositor{
		directory: deps.Directory,
		modules:   deps.Modules,
		matrix:    deps.Matrix,
		sender:    deps.Sender,
		recorder:  deps.Recorder,
		logger:    logger,
		interval:  time.Second / time.Duration(rate),
		frames:    make(map[frameKey]*cachedFrame),
		devices:   make(map[string]*deviceState),
	}
	c.table.Store(routing.EmptyTable())

	c.directory.OnChange(func() { c.dirty.Store(true) })
	c.modules.OnChange(func() { c.dirty.Store(true) })
	c.dirty.Store(true)

	return c, nil
}

// Start computes the initial routing table and launches the per-device
// sender loops plus the housekeeping loop.
func (c *Compositor) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.running.Store(true)

	c.recomputeIfDirty()

	c.wg.Add(1)
	go c.housekeepingLoop()

	c.logger.Info("compositor started",
		"max_updates_per_second", int(time.Second/c.interval),
	)
}

// Stop shuts down all device loops and waits for in-flight sends.
// Safe to call multiple times.
func (c *Compositor) Stop() {
	c.stopOnce.Do(func() {
		c.running.Store(false)
		if c.cancel != nil {
			c.cancel()
		}

		c.devicesMu.Lock()
		for _, state := range c.devices {
			state.stopLoop()
		}
		c.devicesMu.Unlock()

		c.wg.Wait()
		c.logger.Info("compositor stopped")
	})
}

// SubmitFrame accepts one frame from a module.
//
// Modules need not know their routing fate: if the module is nobody's
// primary or overlay, the call is a successful no-op. Malformed buffer
// lengths are reported to the caller and every device keeps its
// previous image.
func (c *Compositor) SubmitFrame(moduleID string, kind visual.Kind, pixels visual.Buffer, timestamp time.Time) error {
	if !c.running.Load() {
		return ErrNotRunning
	}

	shape := visual.ShapeOf(kind)
	if expected := shape.ExpectedLen(); expected > 0 && len(pixels) != expected {
		return fmt.Errorf("%w: kind %q expects %d pixels, got %d",
			ErrInvalidFrame, kind, expected, len(pixels))
	}
	if len(pixels) == 0 {
		return fmt.Errorf("%w: empty buffer", ErrInvalidFrame)
	}

	c.recomputeIfDirty()
	table := c.table.Load()

	if !table.References(moduleID) {
		return nil
	}

	version := c.frameVersion.Add(1)
	c.framesMu.Lock()
	c.frames[frameKey{moduleID, kind}] = &cachedFrame{
		pixels:    pixels.Clone(),
		version:   version,
		timestamp: timestamp,
	}
	c.framesMu.Unlock()

	for _, deviceID := range table.PrimaryDevices(moduleID, kind) {
		c.repaintDevice(deviceID, table)
	}
	for _, deviceID := range table.OverlayDevices(moduleID, kind) {
		c.repaintDevice(deviceID, table)
	}

	return nil
}

// SetActive declares the currently active module and marks routing
// dirty. Convenience passthrough so callers only hold the compositor.
func (c *Compositor) SetActive(moduleID string) {
	c.modules.SetActive(moduleID)
}

// repaintDevice rebuilds a device's blended buffer from the primary's
// cached frame plus every assigned overlay's cached frame.
//
// Rebuilding from the base each time (rather than blending increments
// onto the previous blend) is what makes duplicate or late overlay
// frames harmless: each overlay version contributes exactly once.
func (c *Compositor) repaintDevice(deviceID string, table *routing.Table) {
	assignment, ok := table.Assignments[deviceID]
	if !ok {
		return
	}

	state := c.deviceState(deviceID)
	if state == nil {
		return
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	geom := state.dev.Geometry

	// Base image: the primary's cached frame, the fallback wash for the
	// synthetic fallback module, or black until the primary paints.
	var base visual.Buffer
	switch {
	case assignment.Primary.ModuleID == routing.FallbackModuleID:
		base = frame.FallbackFrame(geom.PixelCount())
	default:
		if cached := c.cachedFrame(assignment.Primary.ModuleID, assignment.Primary.Kind); cached != nil {
			converted, err := frame.Convert(assignment.Primary.Kind, cached.pixels, geom)
			if err != nil {
				c.logger.Warn("primary conversion failed",
					"device_id", deviceID,
					"module_id", assignment.Primary.ModuleID,
					"error", err,
				)
				return
			}
			base = converted
		} else {
			base = make(visual.Buffer, geom.PixelCount())
		}
	}

	for _, overlay := range assignment.Overlays {
		cached := c.cachedFrame(overlay.ModuleID, overlay.Kind)
		if cached == nil {
			continue
		}
		converted, err := frame.Convert(overlay.Kind, cached.pixels, geom)
		if err != nil {
			c.logger.Warn("overlay conversion failed",
				"device_id", deviceID,
				"module_id", overlay.ModuleID,
				"error", err,
			)
			continue
		}
		blendAdd(base, converted)
		state.overlayVersions[overlay.ModuleID] = cached.version
	}

	state.blended = base
	state.dirty = true
}

func (c *Compositor) cachedFrame(moduleID string, kind visual.Kind) *cachedFrame {
	c.framesMu.RLock()
	defer c.framesMu.RUnlock()
	return c.frames[frameKey{moduleID, kind}]
}

// recomputeIfDirty rebuilds the routing table if anything changed since
// the last computation. The rebuild is a short critical section; the
// completed table is swapped in atomically.
func (c *Compositor) recomputeIfDirty() {
	if !c.dirty.CompareAndSwap(true, false) {
		return
	}

	c.recomputeMu.Lock()
	defer c.recomputeMu.Unlock()

	start := time.Now()
	devices := c.directory.List()
	caps := c.modules.List()
	table := c.matrix.Compute(devices, caps, c.modules.Active())
	c.table.Store(table)

	c.syncDeviceStates(devices, table)

	if rec, ok := c.recorder.(RecomputeRecorder); ok {
		rec.RecordRecompute(time.Since(start), len(table.Assignments))
	}

	c.logger.Debug("routing recomputed",
		"epoch", table.Epoch,
		"devices", len(table.Assignments),
	)
}

// housekeepingLoop recomputes dirty routing even when no frames are
// flowing, so fallback assignments and device removals take effect on
// an idle system.
func (c *Compositor) housekeepingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.recomputeIfDirty()
		}
	}
}

// Snapshot is the read-only introspection view served by the debug API.
type Snapshot struct {
	Devices      []device.Device                `json:"devices"`
	Capabilities []capability.ModuleCapability  `json:"capabilities"`
	ActiveModule string                         `json:"active_module,omitempty"`
	Routing      *routing.Table                 `json:"routing"`
	DeviceStates map[string]DeviceStateSnapshot `json:"device_states"`
}

// DeviceStateSnapshot summarises one device's compositing state.
type DeviceStateSnapshot struct {
	Dirty        bool `json:"dirty"`
	InFlight     bool `json:"in_flight"`
	FramesSent   int  `json:"frames_sent"`
	DroppedTicks int  `json:"dropped_ticks"`
}

// Snapshot returns the current capability table, device table, routing
// assignments, and per-device sender state for diagnostics.
func (c *Compositor) Snapshot() Snapshot {
	snap := Snapshot{
		Devices:      c.directory.List(),
		Capabilities: c.modules.List(),
		ActiveModule: c.modules.Active(),
		Routing:      c.table.Load(),
		DeviceStates: make(map[string]DeviceStateSnapshot),
	}

	c.devicesMu.Lock()
	defer c.devicesMu.Unlock()
	for id, state := range c.devices {
		state.mu.Lock()
		snap.DeviceStates[id] = DeviceStateSnapshot{
			Dirty:        state.dirty,
			InFlight:     state.inFlight,
			FramesSent:   state.framesSent,
			DroppedTicks: state.droppedTicks,
		}
		state.mu.Unlock()
	}

	return snap
}
