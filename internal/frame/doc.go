// Package frame adapts pixel buffers between producer and device
// geometries.
//
// Modules draw in generic shapes (a 6x25 sequencer grid, an 88-pixel
// piano strip, free-length generative effects); devices are strips and
// grids of arbitrary size, wiring direction, and row order. Convert
// produces a logical device-length buffer; ApplyWiring turns logical
// order into physical wiring order (serpentine rows, then reverse) as
// the very last step before transmission.
//
// All functions are pure and allocation-per-call; nothing here holds
// state or locks.
package frame
