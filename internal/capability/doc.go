// Package capability provides the Capability Registry for Lumen Core.
//
// Music modules declare what they can draw by registering a
// ModuleCapability on activation and unregistering it on deactivation.
// The registry also tracks which module the surrounding application
// considers "currently active"; the routing rule engine uses that to
// boost the active module's scores.
//
// Registration and removal are idempotent and may happen at any time,
// including while frames from the same module are in flight. Mutations
// only mark routing state dirty (via OnChange listeners); recomputation
// is batched by the compositor.
//
// # Thread Safety
//
// The Registry is safe for concurrent use. Reads return deep copies.
package capability
