package cpu

// serviceInterrupt runs the common NMI/IRQ entry sequence (§4.F):
// push PC (high then low), push P with bit 4 (B) forced 0 and bit 5
// forced 1, set I, load PC from vector. Costs a fixed 7 cycles.
func (c *CPU) serviceInterrupt(vector uint16) uint8 {
	c.push16(c.Reg.PC)
	c.push8(c.Reg.PackedForPush(false))
	c.Reg.SetFlag(FlagI, true)
	c.Reg.PC = c.readVector(vector)
	return 7
}

// doBRK implements the BRK instruction (§4.F): skip the signature byte,
// push the return address and P with both B and the unused bit set
// (the NMOS hardware behavior; see SPEC §9's open question — the source
// this was distilled from omits the 0x30, which is wrong), set I, and
// load PC from the IRQ/BRK vector.
func (c *CPU) doBRK() uint8 {
	c.Reg.PC++
	c.push16(c.Reg.PC)
	c.push8(c.Reg.PackedForPush(true))
	c.Reg.SetFlag(FlagI, true)
	c.Reg.PC = c.readVector(IRQVector)
	return 0
}

// doRTI implements RTI: pull P (forcing B=0, unused=1) then pull PC with
// no +1, the mirror image of how interrupts push it (§4.F).
func (c *CPU) doRTI() {
	c.Reg.RestoreFromPull(c.pop8())
	c.Reg.PC = c.pop16()
}
