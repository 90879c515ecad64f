// Package ioport implements a minimal memory-mapped 8 bit I/O latch. It
// exists to give the core's "memory-mapped I/O is allowed" contract (see
// memory.Bank and cpu's MemoryBus discipline) a concrete, testable
// instance without emulating any real peripheral chip: reads return the
// last input sampled, writes latch an output byte and (optionally)
// notify a callback, the way a real 6532/6522-style I/O port does.
package ioport

import (
	"github.com/kestrel6502/sixtytwo/io"
	"github.com/kestrel6502/sixtytwo/memory"
)

var _ memory.Bank = (*Chip)(nil)

// Chip is a single bidirectional 8 bit port mapped at one address. Writes
// to any address in its mapped range latch the output value and invoke
// OnOutput (if set); reads return whatever Input last reported (if an
// input source is installed) or the last written value otherwise.
type Chip struct {
	in         io.PortIn8
	out        uint8
	databusVal uint8
	parent     memory.Bank

	// OnOutput, if non-nil, is called with the new latched value every
	// time a write lands on this port.
	OnOutput func(val uint8)
}

// New creates an I/O port chip. in may be nil if this port is
// output-only; parent links this Bank into a larger chain for
// DatabusVal() resolution.
func New(in io.PortIn8, parent memory.Bank) *Chip {
	return &Chip{in: in, parent: parent}
}

// Output implements io.PortOut8, returning the last latched value.
func (c *Chip) Output() uint8 {
	return c.out
}

// Read implements memory.Bank. Every mapped address reads the same port.
func (c *Chip) Read(addr uint16) uint8 {
	val := c.out
	if c.in != nil {
		val = c.in.Input()
	}
	c.databusVal = val
	return val
}

// Write implements memory.Bank. Every mapped address writes the same
// port.
func (c *Chip) Write(addr uint16, val uint8) {
	c.out = val
	c.databusVal = val
	if c.OnOutput != nil {
		c.OnOutput(val)
	}
}

// PowerOn implements memory.Bank, clearing the latch.
func (c *Chip) PowerOn() {
	c.out = 0
	c.databusVal = 0
}

// Parent implements memory.Bank.
func (c *Chip) Parent() memory.Bank {
	return c.parent
}

// DatabusVal implements memory.Bank.
func (c *Chip) DatabusVal() uint8 {
	return c.databusVal
}
