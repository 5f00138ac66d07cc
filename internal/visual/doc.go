// Package visual defines the shared pixel and visualization vocabulary
// for Lumen Core.
//
// It is the leaf package every routing component depends on: pixel
// buffers (RGB, Buffer), visualization kinds and their source shape
// conventions (Kind, Shape), and the dimensionality enums used when
// matching module output against device geometry.
//
// The package holds no state and performs no I/O; everything here is
// plain data and pure functions, safe for concurrent use.
package visual
