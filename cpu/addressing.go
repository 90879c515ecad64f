package cpu

// ResolvedOperand is what the addressing-mode resolver produces (§4.E):
// an effective address (for Immediate mode, the address of the operand
// byte itself, so the value is read through the bus), how many operand bytes
// were consumed, and whether resolving the address crossed a page
// boundary. PC has already been advanced past the operand by the time
// this is returned.
type ResolvedOperand struct {
	Mode          AddressingMode
	HasAddress    bool
	Address       uint16
	BytesConsumed uint8
	PageCrossed   bool
}

func (c *CPU) fetch1() uint8 {
	v := c.bus.Read(c.Reg.PC)
	c.Reg.PC++
	return v
}

func (c *CPU) fetch2LE() uint16 {
	lo := c.fetch1()
	hi := c.fetch1()
	return uint16(hi)<<8 | uint16(lo)
}

func hiByte(addr uint16) uint16 { return addr & 0xFF00 }

// resolve materializes the operand for mode, positioned with PC at the
// first byte after the opcode. Per-mode behavior follows §4.E exactly,
// including the two documented quirks: zero-page-indexed modes wrap
// within page 0, and Indirect reproduces the JMP-indirect page bug
// (the pointer's high byte is not incremented when its low byte wraps).
func (c *CPU) resolve(mode AddressingMode) ResolvedOperand {
	ro := ResolvedOperand{Mode: mode, BytesConsumed: mode.operandBytes()}

	switch mode {
	case Implied, Accumulator:
		// No operand bytes; no EA.

	case Immediate:
		ro.HasAddress = true
		ro.Address = c.Reg.PC
		c.Reg.PC++

	case ZeroPage:
		ro.HasAddress = true
		ro.Address = uint16(c.fetch1())

	case ZeroPageX:
		ro.HasAddress = true
		ro.Address = uint16(c.fetch1() + c.Reg.X)

	case ZeroPageY:
		ro.HasAddress = true
		ro.Address = uint16(c.fetch1() + c.Reg.Y)

	case Relative:
		offset := int8(c.fetch1())
		pcAfter := c.Reg.PC
		ea := uint16(int32(pcAfter) + int32(offset))
		ro.HasAddress = true
		ro.Address = ea
		ro.PageCrossed = hiByte(ea) != hiByte(pcAfter)

	case Absolute:
		ro.HasAddress = true
		ro.Address = c.fetch2LE()

	case AbsoluteX:
		base := c.fetch2LE()
		ea := base + uint16(c.Reg.X)
		ro.HasAddress = true
		ro.Address = ea
		ro.PageCrossed = hiByte(ea) != hiByte(base)

	case AbsoluteY:
		base := c.fetch2LE()
		ea := base + uint16(c.Reg.Y)
		ro.HasAddress = true
		ro.Address = ea
		ro.PageCrossed = hiByte(ea) != hiByte(base)

	case Indirect:
		ptr := c.fetch2LE()
		lo := c.bus.Read(ptr)
		hi := c.bus.Read((ptr & 0xFF00) | ((ptr + 1) & 0x00FF))
		ro.HasAddress = true
		ro.Address = uint16(hi)<<8 | uint16(lo)

	case IndirectX:
		zp := c.fetch1() + c.Reg.X
		lo := c.bus.Read(uint16(zp))
		hi := c.bus.Read(uint16(zp + 1))
		ro.HasAddress = true
		ro.Address = uint16(hi)<<8 | uint16(lo)

	case IndirectY:
		zp := c.fetch1()
		lo := c.bus.Read(uint16(zp))
		hi := c.bus.Read(uint16(zp + 1))
		base := uint16(hi)<<8 | uint16(lo)
		ea := base + uint16(c.Reg.Y)
		ro.HasAddress = true
		ro.Address = ea
		ro.PageCrossed = hiByte(ea) != hiByte(base)
	}
	return ro
}
