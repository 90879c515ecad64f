package cpu

// Status flag bit positions within P (§3 StatusFlags).
const (
	FlagC uint8 = 1 << 0 // Carry
	FlagZ uint8 = 1 << 1 // Zero
	FlagI uint8 = 1 << 2 // IRQ disable
	FlagD uint8 = 1 << 3 // Decimal mode
	FlagB uint8 = 1 << 4 // Break source marker (stack image only)
	FlagU uint8 = 1 << 5 // Unused; always reads 1
	FlagV uint8 = 1 << 6 // Overflow
	FlagN uint8 = 1 << 7 // Negative
)

// Interrupt vectors (§3).
const (
	NMIVector   = uint16(0xFFFA)
	ResetVector = uint16(0xFFFC)
	IRQVector   = uint16(0xFFFE)
)

// RegisterFile holds the architectural state of a 6502: the three
// general registers, stack pointer, program counter and packed status
// byte (§3, §4.B). P is kept as a single bitfield rather than one bool
// per flag, per §9's re-architecture guidance: cross-cutting operations
// (PHP, PLP, interrupt entry) need the packed form directly.
type RegisterFile struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8
}

// freshRegisters returns a RegisterFile in its post-construction state: all
// registers zero except P, whose unused bit always reads 1 and whose
// IRQ-disable bit is set (§3 Invariant, §4.B construction contract).
func freshRegisters() RegisterFile {
	return RegisterFile{P: FlagU | FlagI}
}

// GetFlag reports whether bit f of P is set.
func (r *RegisterFile) GetFlag(f uint8) bool {
	return r.P&f != 0
}

// SetFlag sets or clears bit f of P.
func (r *RegisterFile) SetFlag(f uint8, v bool) {
	if v {
		r.P |= f
	} else {
		r.P &^= f
	}
}

// UpdateNZ sets N from bit 7 of value and Z iff value is zero, the
// update every load/transfer/logical/arithmetic/shift/inc/dec
// instruction applies to its result (§4.F flag-update conventions).
func (r *RegisterFile) UpdateNZ(value uint8) {
	r.SetFlag(FlagN, value&0x80 != 0)
	r.SetFlag(FlagZ, value == 0)
}

// PackedForPush returns P with bit 5 forced to 1 and bit 4 (B) set
// according to source: true for BRK/PHP (software-initiated push),
// false for hardware interrupt entry (§4.F, §9 open question on the
// BRK push value).
func (r *RegisterFile) PackedForPush(breakSource bool) uint8 {
	p := r.P | FlagU
	if breakSource {
		p |= FlagB
	} else {
		p &^= FlagB
	}
	return p
}

// RestoreFromPull sets P from a byte popped off the stack (PLP, RTI),
// forcing the unused bit to 1 and the break marker to 0 since B is never
// a physically stored bit (§3, §4.F RTI).
func (r *RegisterFile) RestoreFromPull(p uint8) {
	p |= FlagU
	p &^= FlagB
	r.P = p
}
