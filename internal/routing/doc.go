// Package routing computes which module draws on which device.
//
// It combines two pieces:
//
//   - Engine: an ordered list of policy rules (active module wins ties,
//     exclusive 2D claims suppress overlays, overlay-only effects never
//     become primaries, dimension preferences degrade gracefully, and a
//     catch-all fallback so every enabled device has a primary). Rules
//     implement the Rule interface and run in descending priority;
//     new policies are added with Engine.Register without touching the
//     engine or matrix code.
//
//   - Matrix: scores every (device, module, descriptor) pairing, applies
//     the rule pipeline, and selects one primary plus overlays per
//     device into an immutable Table.
//
// Recomputation is triggered by device or capability changes and by
// active-module switches, never per frame: frame submission always
// reads the last computed table. Tables are deterministic for identical
// inputs; ties break on lower module ID, then kind.
//
// The package is pure computation: no goroutines, no I/O, no locks.
// Concurrency control around table swaps belongs to the compositor.
package routing
