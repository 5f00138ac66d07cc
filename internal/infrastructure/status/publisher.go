package status

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/lumensuite/lumen-core/internal/compositor"
	"github.com/lumensuite/lumen-core/internal/device"
)

// Snapshotter provides the state the publisher reports. Implemented by
// *compositor.Compositor.
type Snapshotter interface {
	Snapshot() compositor.Snapshot
}

// ModuleSelector receives active-module selections arriving over MQTT.
// Implemented by *compositor.Compositor.
type ModuleSelector interface {
	SetActive(moduleID string)
}

// PublisherDeps holds the dependencies required by the Publisher.
type PublisherDeps struct {
	Client   *Client
	Source   Snapshotter
	Selector ModuleSelector // optional
	Logger   Logger         // optional

	ServiceID string
	Prefix    string
	QoS       byte
	Interval  time.Duration
}

// Publisher periodically publishes a retained health summary and
// accepts active-module selections from the control topic.
//
// It runs as a background goroutine started by Start and stopped by
// Close. Lost broker connections are absorbed: a failed publish is
// logged and retried on the next interval.
type Publisher struct {
	client   *Client
	source   Snapshotter
	selector ModuleSelector
	logger   Logger

	serviceID string
	prefix    string
	qos       byte
	interval  time.Duration
	started   time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// healthPayload is the JSON document published to <prefix>/status.
type healthPayload struct {
	ServiceID     string                  `json:"service_id"`
	Timestamp     time.Time               `json:"timestamp"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	ActiveModule  string                  `json:"active_module,omitempty"`
	RoutingEpoch  string                  `json:"routing_epoch"`
	DeviceCount   int                     `json:"device_count"`
	Devices       map[string]deviceHealth `json:"devices"`
}

type deviceHealth struct {
	Status     device.HealthStatus `json:"status"`
	FramesSent int                 `json:"frames_sent"`
}

// NewPublisher creates a publisher. Call Start to begin publishing.
func NewPublisher(deps PublisherDeps) *Publisher {
	interval := deps.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	prefix := deps.Prefix
	if prefix == "" {
		prefix = "lumen"
	}

	return &Publisher{
		client:    deps.Client,
		source:    deps.Source,
		selector:  deps.Selector,
		logger:    deps.Logger,
		serviceID: deps.ServiceID,
		prefix:    prefix,
		qos:       deps.QoS,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start publishes an immediate health summary, subscribes to the
// control topic, and launches the periodic publish loop.
func (p *Publisher) Start() error {
	p.started = time.Now()

	if p.selector != nil {
		err := p.client.Subscribe(activeModuleTopic(p.prefix), p.qos, p.handleActiveModule)
		if err != nil {
			return err
		}
	}

	p.publish()

	p.wg.Add(1)
	go p.loop()

	return nil
}

// Close stops the publish loop. Safe to call multiple times.
func (p *Publisher) Close() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

func (p *Publisher) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.publish()
		}
	}
}

func (p *Publisher) publish() {
	snap := p.source.Snapshot()

	payload := healthPayload{
		ServiceID:     p.serviceID,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(p.started).Seconds()),
		ActiveModule:  snap.ActiveModule,
		RoutingEpoch:  snap.Routing.Epoch,
		DeviceCount:   len(snap.Devices),
		Devices:       make(map[string]deviceHealth, len(snap.Devices)),
	}

	for _, dev := range snap.Devices {
		health := deviceHealth{Status: dev.HealthStatus}
		if state, ok := snap.DeviceStates[dev.ID]; ok {
			health.FramesSent = state.FramesSent
		}
		payload.Devices[dev.ID] = health
	}

	data, err := json.Marshal(payload)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("status payload marshal failed", "error", err)
		}
		return
	}

	if err := p.client.Publish(healthTopic(p.prefix), data, p.qos, true); err != nil {
		if p.logger != nil {
			p.logger.Warn("status publish failed", "error", err)
		}
	}
}

// handleActiveModule processes inbound active-module selections.
// The payload is the bare module ID; an empty payload clears the
// active module.
func (p *Publisher) handleActiveModule(_ string, payload []byte) error {
	moduleID := strings.TrimSpace(string(payload))
	p.selector.SetActive(moduleID)
	return nil
}
