//go:build !debug

// Package trace provides an optional logging hook into the encoder's
// step loop, compiled out entirely unless the binary is built with the
// debug build tag.
package trace

func Printf(msg string, args ...any) {}

const On = false
