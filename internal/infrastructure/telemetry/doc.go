// Package telemetry provides InfluxDB connectivity for Lumen Core.
//
// It wraps the official influxdb-client-go v2 library with Lumen-specific
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Delivery latency per device and transport outcome
//   - Coalesced frame counts (rate-limit pressure)
//   - Routing recomputation timings
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "lumen",
//	    Bucket: "metrics",
//	}
//
//	client, err := telemetry.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.RecordSend("strip-desk", 4*time.Millisecond, true)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a
// callback. Connection and health check errors are returned directly.
// A disabled or unreachable telemetry sink never blocks the frame path.
package telemetry
