package compositor

import (
	"sync"
	"time"

	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/routing"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// deviceState holds the per-device compositing buffer and the sender
// loop's bookkeeping. Each device gets its own goroutine and its own
// rate limiter so a slow or unreachable device never stalls another.
type deviceState struct {
	mu sync.Mutex

	// dev is a snapshot of the directory entry, refreshed on every
	// routing recomputation.
	dev device.Device

	// blended is the composited image waiting to go on the wire.
	blended visual.Buffer

	// dirty is set whenever blended changes and cleared when a send is
	// picked up. A tick with dirty unset sends nothing.
	dirty bool

	// inFlight is true while a wire send is in progress. Ticks that
	// land during a send are coalesced, not queued.
	inFlight bool

	framesSent   int
	droppedTicks int

	// overlayVersions tracks the last blended frame version per overlay
	// module, surfaced through Snapshot for debugging.
	overlayVersions map[string]uint64

	stop     chan struct{}
	stopOnce sync.Once
}

func (s *deviceState) stopLoop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// deviceState returns the state for a device ID, or nil if the device
// has no sender loop (removed or disabled since the table was built).
func (c *Compositor) deviceState(id string) *deviceState {
	c.devicesMu.Lock()
	defer c.devicesMu.Unlock()
	return c.devices[id]
}

// syncDeviceStates reconciles sender loops with a freshly computed
// routing table: loops are started for newly assigned devices, stopped
// for devices that dropped out, and existing states get their device
// snapshot refreshed so brightness or geometry edits take effect.
//
// Devices whose primary is the synthetic fallback module get their wash
// rendered here; nothing else will ever repaint them.
func (c *Compositor) syncDeviceStates(devices []device.Device, table *routing.Table) {
	byID := make(map[string]device.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}

	c.devicesMu.Lock()
	for id, state := range c.devices {
		if _, assigned := table.Assignments[id]; !assigned {
			state.stopLoop()
			delete(c.devices, id)
		}
	}

	for id := range table.Assignments {
		dev, ok := byID[id]
		if !ok {
			continue
		}
		state, exists := c.devices[id]
		if !exists {
			state = &deviceState{
				dev:             dev,
				overlayVersions: make(map[string]uint64),
				stop:            make(chan struct{}),
			}
			c.devices[id] = state
			c.wg.Add(1)
			go c.senderLoop(state)
		} else {
			state.mu.Lock()
			state.dev = dev
			state.mu.Unlock()
		}
	}
	c.devicesMu.Unlock()

	// Repaint every assigned device from the frame cache so a running
	// module's image survives a routing change without waiting for its
	// next frame, and fallback washes appear without any module at all.
	for id := range table.Assignments {
		c.repaintDevice(id, table)
	}
}

// senderLoop is the per-device pacing goroutine. One tick per interval;
// a tick with a dirty buffer triggers a synchronous send, so a send that
// outlasts the interval naturally coalesces the ticks it misses.
func (c *Compositor) senderLoop(state *deviceState) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-state.stop:
			return
		case <-ticker.C:
		}

		state.mu.Lock()
		if !state.dirty || state.blended == nil {
			state.mu.Unlock()
			continue
		}
		pixels := state.blended.Clone()
		dev := state.dev
		state.dirty = false
		state.inFlight = true
		state.mu.Unlock()

		sendStart := time.Now()
		err := c.sender.Send(c.ctx, &dev, pixels)

		// Ticks the ticker dropped while Send blocked past one
		// interval count as coalesced updates. Quiet intervals with
		// nothing to send do not.
		missed := int(time.Since(sendStart)/c.interval) - 1
		if missed < 0 {
			missed = 0
		}

		state.mu.Lock()
		state.inFlight = false
		if err == nil {
			state.framesSent++
		}
		if missed > 0 {
			state.droppedTicks += missed
		}
		state.mu.Unlock()

		if missed > 0 && c.recorder != nil {
			c.recorder.RecordDroppedTicks(dev.ID, missed)
		}
		if err != nil {
			c.logger.Debug("send failed", "device_id", dev.ID, "error", err)
		}
	}
}
