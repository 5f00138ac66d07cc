// Package device provides the Device Directory for Lumen Core.
//
// The Device Directory is the catalogue of physical LED output targets
// known to the routing core: their pixel geometry, supported
// visualization kinds, delivery transport, and health. Device records
// are created and edited by an external configuration surface; this
// package only stores, validates, and serves them.
//
// # Key Types
//
//   - Device: an LED output target (strip or grid) with its geometry
//   - Geometry: dimensionality, width/height or length, serpentine flag
//   - Transport: how final buffers reach the hardware (http or bridge)
//   - Directory: the thread-safe in-memory store with change listeners
//
// # Usage
//
//	dir := device.NewDirectory()
//	dir.SetLogger(log)
//	dir.OnChange(func() { routingDirty.Store(true) })
//
//	err := dir.Upsert(&device.Device{
//	    ID:      "strip-window",
//	    Name:    "Window Strip",
//	    Address: "192.168.4.21",
//	    Transport: device.TransportHTTP,
//	    Geometry: device.Geometry{
//	        Dimensionality: visual.OneD,
//	        Length:         90,
//	    },
//	    SupportedKinds: []visual.Kind{visual.KindStepSequencer1D, visual.KindRipple},
//	    Brightness:     200,
//	    Enabled:        true,
//	})
//
// # Thread Safety
//
// The Directory is safe for concurrent use. All reads return deep
// copies so callers can never mutate cached records. Change listeners
// are invoked synchronously after mutations and must be cheap; the
// intended use is flipping a routing-dirty flag.
package device
