// Package compositor turns module frame submissions into paced
// per-device wire sends.
//
// A single Compositor owns the routing table, the per-module frame
// cache, and one sender goroutine per assigned device. Frames arrive
// through SubmitFrame at whatever rate modules produce them; each
// device's loop ships the latest blended image at most
// MaxUpdatesPerSecond times per second, coalescing anything faster.
// Overlay frames are additively blended onto the primary's image, and
// the blend is always rebuilt from the cached base so repeated overlay
// submissions never accumulate.
//
// Directory and capability registry changes mark the routing table
// dirty; it is recomputed lazily on the next submission or by the
// housekeeping ticker, and swapped in atomically.
package compositor
