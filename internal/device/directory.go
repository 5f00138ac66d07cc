package device

import (
	"sort"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Directory.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Directory holds the set of known physical output devices.
//
// Device records are owned by an external configuration surface; the
// Directory is the in-memory view the routing core reads from. Mutating
// operations notify change listeners so cached routing can be marked
// dirty without recomputing synchronously.
//
// All public methods are thread-safe. Returned devices are deep copies;
// callers can safely modify them.
type Directory struct {
	mu      sync.RWMutex
	devices map[string]*Device

	listenerMu sync.RWMutex
	listeners  []func()

	logger Logger
}

// NewDirectory creates an empty device directory.
func NewDirectory() *Directory {
	return &Directory{
		devices: make(map[string]*Device),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the directory.
func (dir *Directory) SetLogger(logger Logger) {
	dir.logger = logger
}

// OnChange registers a callback invoked after any device mutation.
// Callbacks must be cheap and must not call back into the Directory's
// mutating methods.
func (dir *Directory) OnChange(fn func()) {
	dir.listenerMu.Lock()
	dir.listeners = append(dir.listeners, fn)
	dir.listenerMu.Unlock()
}

func (dir *Directory) notify() {
	dir.listenerMu.RLock()
	defer dir.listenerMu.RUnlock()
	for _, fn := range dir.listeners {
		fn()
	}
}

// Upsert adds or replaces a device record.
// The device is validated first; on error the directory is unchanged.
func (dir *Directory) Upsert(d *Device) error {
	if err := Validate(d); err != nil {
		return err
	}

	cpy := d.Clone()
	if cpy.HealthStatus == "" {
		cpy.HealthStatus = HealthUnknown
	}

	dir.mu.Lock()
	dir.devices[cpy.ID] = cpy
	dir.mu.Unlock()

	dir.logger.Info("device upserted", "id", d.ID, "name", d.Name, "enabled", d.Enabled)
	dir.notify()
	return nil
}

// Remove deletes a device record. Removing an unknown ID is a no-op.
func (dir *Directory) Remove(id string) {
	dir.mu.Lock()
	_, existed := dir.devices[id]
	delete(dir.devices, id)
	dir.mu.Unlock()

	if existed {
		dir.logger.Info("device removed", "id", id)
		dir.notify()
	}
}

// Get retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
func (dir *Directory) Get(id string) (*Device, error) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	if d, ok := dir.devices[id]; ok {
		return d.Clone(), nil
	}
	return nil, ErrDeviceNotFound
}

// List retrieves all devices, sorted by ID for deterministic iteration.
func (dir *Directory) List() []Device {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	devices := make([]Device, 0, len(dir.devices))
	for _, d := range dir.devices {
		devices = append(devices, *d.Clone())
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices
}

// ListEnabled retrieves all enabled devices, sorted by ID.
func (dir *Directory) ListEnabled() []Device {
	all := dir.List()
	enabled := all[:0]
	for _, d := range all {
		if d.Enabled {
			enabled = append(enabled, d)
		}
	}
	return enabled
}

// SetHealth updates the delivery health status of a device.
// Unlike Upsert this does not notify change listeners: health flapping
// must not trigger routing recomputation.
func (dir *Directory) SetHealth(id string, status HealthStatus) {
	now := time.Now().UTC()

	dir.mu.Lock()
	if d, ok := dir.devices[id]; ok {
		d.HealthStatus = status
		d.HealthLastSeen = &now
	}
	dir.mu.Unlock()

	dir.logger.Debug("device health updated", "id", id, "status", status)
}

// Count returns the number of known devices.
func (dir *Directory) Count() int {
	dir.mu.RLock()
	defer dir.mu.RUnlock()
	return len(dir.devices)
}

// Stats returns directory statistics for monitoring.
type Stats struct {
	TotalDevices int
	Enabled      int
	ByTransport  map[Transport]int
	ByHealth     map[HealthStatus]int
}

// GetStats returns current directory statistics.
func (dir *Directory) GetStats() Stats {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	stats := Stats{
		TotalDevices: len(dir.devices),
		ByTransport:  make(map[Transport]int),
		ByHealth:     make(map[HealthStatus]int),
	}

	for _, d := range dir.devices {
		if d.Enabled {
			stats.Enabled++
		}
		stats.ByTransport[d.Transport]++
		stats.ByHealth[d.HealthStatus]++
	}

	return stats
}
