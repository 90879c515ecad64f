package cpu

// Step drives exactly one instruction or interrupt entry (§4.F):
//  1. Interrupt check — a latched NMI wins, else a level IRQ if I is
//     clear.
//  2. Fetch the opcode and decode it.
//  3. Resolve the operand via the addressing-mode resolver.
//  4. Dispatch on mnemonic.
//  5. Account cycles: base cost, +1 on a page-crossing read, plus
//     whatever extra the instruction itself schedules (branches,
//     interrupt entry).
//
// Step is illegal before Reset has been called (§7 item 3) and returns
// ResetNotPerformed without mutating state in that case.
func (c *CPU) Step() (uint8, error) {
	if c.state != ready {
		return 0, ResetNotPerformed{}
	}

	if c.nmiLine.Take() {
		n := c.serviceInterrupt(NMIVector)
		c.cycles += uint64(n)
		return n, nil
	}
	if c.irqAsserted() && !c.Reg.GetFlag(FlagI) {
		n := c.serviceInterrupt(IRQVector)
		c.cycles += uint64(n)
		return n, nil
	}

	pcAtFetch := c.Reg.PC
	op := c.bus.Read(c.Reg.PC)
	c.Reg.PC++

	dec, ok := Decode(op, c.strict)
	if !ok {
		c.Reg.PC = pcAtFetch
		return 0, IllegalOpcode{Opcode: op, PCAtFetch: pcAtFetch}
	}

	ro := c.resolve(dec.Mode)

	if c.traceHook != nil {
		c.traceHook(TraceEvent{
			PC: pcAtFetch, Opcode: op, Mnemonic: dec.Mnemonic, Mode: dec.Mode,
			A: c.Reg.A, X: c.Reg.X, Y: c.Reg.Y, SP: c.Reg.SP, P: c.Reg.P,
			CyclesSoFar: c.cycles,
		})
	}

	extra := c.dispatch(dec.Mnemonic, ro)

	total := dec.BaseCycles
	if ro.PageCrossed && dec.AddsOnPageCross {
		total++
	}
	total += extra
	c.cycles += uint64(total)
	return total, nil
}

// operand reads the byte addressed by a resolved, non-Accumulator
// operand. Every read-only instruction (ADC, AND, ORA, ...) goes through
// this regardless of which of the non-Accumulator modes produced it —
// the execution step is mode-agnostic once the EA is known (§9).
func (c *CPU) operand(ro ResolvedOperand) uint8 {
	return c.bus.Read(ro.Address)
}

func (c *CPU) rmwLoad(ro ResolvedOperand) uint8 {
	if ro.Mode == Accumulator {
		return c.Reg.A
	}
	return c.bus.Read(ro.Address)
}

func (c *CPU) rmwStore(ro ResolvedOperand, v uint8) {
	if ro.Mode == Accumulator {
		c.Reg.A = v
		return
	}
	c.bus.Write(ro.Address, v)
}

// branch implements the shared logic for the eight conditional branch
// instructions (§4.F). If taken, PC moves to the resolved target and 1
// cycle is added, plus 1 more if that crossed a page; if not taken, PC
// is already correct since the resolver advanced it past the operand.
func (c *CPU) branch(ro ResolvedOperand, taken bool) uint8 {
	if !taken {
		return 0
	}
	c.Reg.PC = ro.Address
	if ro.PageCrossed {
		return 2
	}
	return 1
}

// dispatch executes one decoded instruction against its resolved
// operand and returns any cycle cost beyond the decode table's base
// (branch extras; interrupt-entry costs are accounted by the caller
// directly since they never go through dispatch).
func (c *CPU) dispatch(mn Mnemonic, ro ResolvedOperand) uint8 {
	switch mn {
	case ADC:
		c.doADC(c.operand(ro))
	case SBC:
		m, a := c.operand(ro), c.Reg.A
		borrow := int(^c.Reg.P & FlagC) // 1 when C is clear
		c.doADC(m ^ 0xFF)
		if c.Reg.GetFlag(FlagD) && !c.noBCD {
			al := int(a&0x0F) - int(m&0x0F) - borrow
			if al < 0 {
				al = ((al - 0x06) & 0x0F) - 0x10
			}
			s := int(a&0xF0) - int(m&0xF0) + al
			if s < 0 {
				s -= 0x60
			}
			c.Reg.SetFlag(FlagC, int(a)-int(m)-borrow >= 0)
			c.Reg.A = uint8(s)
		}
	case AND:
		c.Reg.A &= c.operand(ro)
		c.Reg.UpdateNZ(c.Reg.A)
	case ORA:
		c.Reg.A |= c.operand(ro)
		c.Reg.UpdateNZ(c.Reg.A)
	case EOR:
		c.Reg.A ^= c.operand(ro)
		c.Reg.UpdateNZ(c.Reg.A)
	case BIT:
		c.doBIT(c.operand(ro))
	case CMP:
		c.doCompare(c.Reg.A, c.operand(ro))
	case CPX:
		c.doCompare(c.Reg.X, c.operand(ro))
	case CPY:
		c.doCompare(c.Reg.Y, c.operand(ro))

	case ASL:
		v := c.rmwLoad(ro)
		c.Reg.SetFlag(FlagC, v&0x80 != 0)
		v <<= 1
		c.Reg.UpdateNZ(v)
		c.rmwStore(ro, v)
	case LSR:
		v := c.rmwLoad(ro)
		c.Reg.SetFlag(FlagC, v&0x01 != 0)
		v >>= 1
		c.Reg.UpdateNZ(v)
		c.rmwStore(ro, v)
	case ROL:
		v := c.rmwLoad(ro)
		carryIn := uint8(0)
		if c.Reg.GetFlag(FlagC) {
			carryIn = 1
		}
		c.Reg.SetFlag(FlagC, v&0x80 != 0)
		v = (v << 1) | carryIn
		c.Reg.UpdateNZ(v)
		c.rmwStore(ro, v)
	case ROR:
		v := c.rmwLoad(ro)
		carryIn := uint8(0)
		if c.Reg.GetFlag(FlagC) {
			carryIn = 0x80
		}
		c.Reg.SetFlag(FlagC, v&0x01 != 0)
		v = (v >> 1) | carryIn
		c.Reg.UpdateNZ(v)
		c.rmwStore(ro, v)

	case INC:
		v := c.bus.Read(ro.Address) + 1
		c.bus.Write(ro.Address, v)
		c.Reg.UpdateNZ(v)
	case DEC:
		v := c.bus.Read(ro.Address) - 1
		c.bus.Write(ro.Address, v)
		c.Reg.UpdateNZ(v)
	case INX:
		c.Reg.X++
		c.Reg.UpdateNZ(c.Reg.X)
	case INY:
		c.Reg.Y++
		c.Reg.UpdateNZ(c.Reg.Y)
	case DEX:
		c.Reg.X--
		c.Reg.UpdateNZ(c.Reg.X)
	case DEY:
		c.Reg.Y--
		c.Reg.UpdateNZ(c.Reg.Y)

	case LDA:
		c.Reg.A = c.operand(ro)
		c.Reg.UpdateNZ(c.Reg.A)
	case LDX:
		c.Reg.X = c.operand(ro)
		c.Reg.UpdateNZ(c.Reg.X)
	case LDY:
		c.Reg.Y = c.operand(ro)
		c.Reg.UpdateNZ(c.Reg.Y)
	case STA:
		c.bus.Write(ro.Address, c.Reg.A)
	case STX:
		c.bus.Write(ro.Address, c.Reg.X)
	case STY:
		c.bus.Write(ro.Address, c.Reg.Y)

	case TAX:
		c.Reg.X = c.Reg.A
		c.Reg.UpdateNZ(c.Reg.X)
	case TAY:
		c.Reg.Y = c.Reg.A
		c.Reg.UpdateNZ(c.Reg.Y)
	case TXA:
		c.Reg.A = c.Reg.X
		c.Reg.UpdateNZ(c.Reg.A)
	case TYA:
		c.Reg.A = c.Reg.Y
		c.Reg.UpdateNZ(c.Reg.A)
	case TSX:
		c.Reg.X = c.Reg.SP
		c.Reg.UpdateNZ(c.Reg.X)
	case TXS:
		// TXS does not touch any flag.
		c.Reg.SP = c.Reg.X

	case PHA:
		c.push8(c.Reg.A)
	case PHP:
		c.push8(c.Reg.PackedForPush(true))
	case PLA:
		c.Reg.A = c.pop8()
		c.Reg.UpdateNZ(c.Reg.A)
	case PLP:
		c.Reg.RestoreFromPull(c.pop8())

	case JMP:
		c.Reg.PC = ro.Address
	case JSR:
		c.push16(c.Reg.PC - 1)
		c.Reg.PC = ro.Address
	case RTS:
		c.Reg.PC = c.pop16() + 1
	case RTI:
		c.doRTI()
	case BRK:
		return c.doBRK()

	case BCC:
		return c.branch(ro, !c.Reg.GetFlag(FlagC))
	case BCS:
		return c.branch(ro, c.Reg.GetFlag(FlagC))
	case BEQ:
		return c.branch(ro, c.Reg.GetFlag(FlagZ))
	case BNE:
		return c.branch(ro, !c.Reg.GetFlag(FlagZ))
	case BMI:
		return c.branch(ro, c.Reg.GetFlag(FlagN))
	case BPL:
		return c.branch(ro, !c.Reg.GetFlag(FlagN))
	case BVC:
		return c.branch(ro, !c.Reg.GetFlag(FlagV))
	case BVS:
		return c.branch(ro, c.Reg.GetFlag(FlagV))

	case CLC:
		c.Reg.SetFlag(FlagC, false)
	case SEC:
		c.Reg.SetFlag(FlagC, true)
	case CLD:
		c.Reg.SetFlag(FlagD, false)
	case SED:
		c.Reg.SetFlag(FlagD, true)
	case CLI:
		c.Reg.SetFlag(FlagI, false)
	case SEI:
		c.Reg.SetFlag(FlagI, true)
	case CLV:
		c.Reg.SetFlag(FlagV, false)

	case NOP:
		// No architectural effect. Also the landing mnemonic for every
		// undocumented opcode in lenient mode (§1, §7).
	}
	return 0
}

// doADC implements ADC directly and SBC via operand^0xFF (§4.F: "SBC is
// equivalent to ADC of M XOR 0xFF"). N/V/Z always reflect the binary
// result; in decimal mode C and A are corrected to their BCD values per
// the standard nibble-correction algorithm for addition (the SBC case in
// dispatch then replaces C and A with the decimal difference).
func (c *CPU) doADC(operand uint8) {
	carry := uint8(0)
	if c.Reg.GetFlag(FlagC) {
		carry = 1
	}
	binSum := uint16(c.Reg.A) + uint16(operand) + uint16(carry)
	binResult := uint8(binSum)
	c.Reg.SetFlag(FlagV, (c.Reg.A^binResult)&(operand^binResult)&0x80 != 0)
	c.Reg.UpdateNZ(binResult)

	if c.Reg.GetFlag(FlagD) && !c.noBCD {
		al := (c.Reg.A & 0x0F) + (operand & 0x0F) + carry
		if al >= 0x0A {
			al = ((al + 0x06) & 0x0F) + 0x10
		}
		sum := uint16(c.Reg.A&0xF0) + uint16(operand&0xF0) + uint16(al)
		if sum >= 0xA0 {
			sum += 0x60
		}
		c.Reg.SetFlag(FlagC, sum > 0xFF)
		c.Reg.A = uint8(sum)
		return
	}

	c.Reg.SetFlag(FlagC, binSum > 0xFF)
	c.Reg.A = binResult
}

// doCompare implements CMP/CPX/CPY: C = reg>=operand, N/Z from the low
// 8 bits of reg-operand (§4.F).
func (c *CPU) doCompare(reg, operand uint8) {
	c.Reg.SetFlag(FlagC, reg >= operand)
	c.Reg.UpdateNZ(reg - operand)
}

// doBIT implements BIT: Z against A&M, N/V copied directly from bits
// 7/6 of M (§4.F).
func (c *CPU) doBIT(operand uint8) {
	c.Reg.SetFlag(FlagZ, c.Reg.A&operand == 0)
	c.Reg.SetFlag(FlagN, operand&0x80 != 0)
	c.Reg.SetFlag(FlagV, operand&0x40 != 0)
}
