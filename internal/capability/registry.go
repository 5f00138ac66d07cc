package capability

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lumensuite/lumen-core/internal/visual"
)

// Logger defines the logging interface used by the Registry.
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

// Registry holds, per active module, the visualizations it can
// currently produce, plus the identity of the module the surrounding
// application considers "currently active".
//
// Modules register on activation and unregister on deactivation; both
// operations are idempotent, O(1), and may happen at any time,
// including mid-frame. Mutations mark routing dirty via change
// listeners rather than recomputing synchronously.
//
// All public methods are thread-safe.
type Registry struct {
	mu       sync.RWMutex
	modules  map[string]ModuleCapability
	activeID string

	listenerMu sync.RWMutex
	listeners  []func()

	logger Logger
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]ModuleCapability),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// OnChange registers a callback invoked after any registry mutation.
// Callbacks must be cheap; the intended use is flipping a routing-dirty
// flag.
func (r *Registry) OnChange(fn func()) {
	r.listenerMu.Lock()
	r.listeners = append(r.listeners, fn)
	r.listenerMu.Unlock()
}

func (r *Registry) notify() {
	r.listenerMu.RLock()
	defer r.listenerMu.RUnlock()
	for _, fn := range r.listeners {
		fn()
	}
}

// Register records a module's capability declaration, replacing any
// previous declaration for the same module ID.
//
// Malformed declarations are rejected and core state is unchanged.
func (r *Registry) Register(cap ModuleCapability) error {
	if err := validate(cap); err != nil {
		return err
	}

	r.mu.Lock()
	r.modules[cap.ModuleID] = cap.Clone()
	r.mu.Unlock()

	r.logger.Info("module registered",
		"module_id", cap.ModuleID,
		"descriptors", len(cap.Produces),
	)
	r.notify()
	return nil
}

// Unregister removes a module's declaration. Unknown IDs are a no-op.
func (r *Registry) Unregister(moduleID string) {
	r.mu.Lock()
	_, existed := r.modules[moduleID]
	delete(r.modules, moduleID)
	if r.activeID == moduleID {
		r.activeID = ""
	}
	r.mu.Unlock()

	if existed {
		r.logger.Info("module unregistered", "module_id", moduleID)
		r.notify()
	}
}

// Get retrieves one module's declaration.
func (r *Registry) Get(moduleID string) (ModuleCapability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cap, ok := r.modules[moduleID]; ok {
		return cap.Clone(), nil
	}
	return ModuleCapability{}, ErrModuleNotFound
}

// List retrieves all declarations, sorted by module ID so routing
// computations over the result are deterministic.
func (r *Registry) List() []ModuleCapability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make([]ModuleCapability, 0, len(r.modules))
	for _, c := range r.modules {
		caps = append(caps, c.Clone())
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i].ModuleID < caps[j].ModuleID })
	return caps
}

// SetActive declares which module the surrounding application considers
// currently active. An empty string clears the active module. The ID
// does not need to be registered yet; registration order is not
// guaranteed during module switches.
func (r *Registry) SetActive(moduleID string) {
	r.mu.Lock()
	changed := r.activeID != moduleID
	r.activeID = moduleID
	r.mu.Unlock()

	if changed {
		r.logger.Debug("active module changed", "module_id", moduleID)
		r.notify()
	}
}

// Active returns the currently active module ID, or "" if none.
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// Count returns the number of registered modules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// validate checks a declaration for structural validity. Whether a
// declared kind can actually be routed anywhere is the routing
// matrix's concern.
func validate(cap ModuleCapability) error {
	if cap.ModuleID == "" {
		return fmt.Errorf("%w: module id is required", ErrInvalidCapability)
	}
	if len(cap.Produces) == 0 {
		return fmt.Errorf("%w: module %q declares no descriptors", ErrInvalidCapability, cap.ModuleID)
	}

	seen := make(map[visual.Kind]bool, len(cap.Produces))
	for _, d := range cap.Produces {
		if !visual.IsValidKind(d.Kind) {
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidDescriptor, d.Kind)
		}
		if !visual.IsValidPreference(d.DimensionPreference) {
			return fmt.Errorf("%w: unknown dimension preference %q", ErrInvalidDescriptor, d.DimensionPreference)
		}
		if seen[d.Kind] {
			return fmt.Errorf("%w: duplicate kind %q", ErrInvalidDescriptor, d.Kind)
		}
		seen[d.Kind] = true
	}

	return nil
}
