package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordSend writes one delivery attempt: wire latency and outcome.
//
// Satisfies the delivery layer's Recorder interface. The write is
// non-blocking; data is batched and sent asynchronously.
func (c *Client) RecordSend(deviceID string, duration time.Duration, ok bool) {
	c.WritePoint("delivery",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"latency_ms": float64(duration.Microseconds()) / millisecondsPerSecond,
			"ok":         ok,
		},
	)
}

// RecordDroppedTicks writes the number of frame updates coalesced on a
// device since its last send. A steadily climbing count means the
// device cannot keep up with its producer.
func (c *Client) RecordDroppedTicks(deviceID string, n int) {
	c.WritePoint("coalescing",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"dropped": n,
		},
	)
}

// RecordRecompute writes one routing recomputation: how long it took
// and how many devices ended up assigned.
func (c *Client) RecordRecompute(duration time.Duration, devices int) {
	c.WritePoint("routing",
		map[string]string{},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / millisecondsPerSecond,
			"devices":     devices,
		},
	)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// All the Record* helpers funnel through here; use it directly for
// measurements that don't fit them.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
