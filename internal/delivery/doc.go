// Package delivery carries final pixel buffers onto physical hardware.
//
// Two interchangeable transports sit behind the Transport interface:
//
//   - HTTPTransport: a stateless POST of per-pixel hex colours to the
//     device's /json/state endpoint, capped by firmware buffer limits.
//   - BridgeTransport: a persistent WebSocket connection to a local
//     bridge process that performs the low-level strip protocol
//     framing, for higher sustained frame rates.
//
// Both apply brightness scaling and wiring reordering through one
// shared prepare step, so a device renders identically whichever
// transport carries its frames. Timeouts are short; any failure is a
// logged, retryable condition surfaced through the Sender's health
// bookkeeping, never an exception that interrupts the compositor or a
// different device's path.
package delivery
