// Package io defines the basic interfaces for working
// with a 6502 family based I/O port (generally bi-directional).
// Implementors decide when input is sampled; ioport.Chip, for
// example, calls Input on every bus read.
package io

// PortIn8 defines the read side of an 8 bit I/O port.
type PortIn8 interface {
	// Input returns the current value present on the input port.
	Input() uint8
}

// PortOut8 defines the write side of an 8 bit I/O port.
type PortOut8 interface {
	// Output returns the most recently latched output value.
	Output() uint8
}
