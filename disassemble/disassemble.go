// Package disassemble implements a single-instruction disassembler on
// top of cpu's decode table. It never executes anything; JMP/JSR
// targets, branch offsets etc. are printed as literal operands, not
// followed.
package disassemble

import (
	"fmt"

	"github.com/kestrel6502/sixtytwo/cpu"
	"github.com/kestrel6502/sixtytwo/memory"
)

// Step disassembles the instruction at pc and returns its text plus how
// many bytes it occupies (opcode + operand). Undocumented opcodes decode
// as NOP, matching lenient-mode Step in the cpu package. This always
// reads up to 2 bytes past pc so callers must ensure that range is
// addressable (reads past the end of a loaded image simply see
// whatever the bus returns there).
func Step(pc uint16, bus memory.Bus) (string, int) {
	op := bus.Read(pc)
	b1 := bus.Read(pc + 1)
	b2 := bus.Read(pc + 2)

	dec, _ := cpu.Decode(op, false)
	mnemonic := dec.Mnemonic.String()

	switch dec.Mode {
	case cpu.Immediate:
		return fmt.Sprintf("%04X  %02X %02X     %s #$%02X", pc, op, b1, mnemonic, b1), 2
	case cpu.ZeroPage:
		return fmt.Sprintf("%04X  %02X %02X     %s $%02X", pc, op, b1, mnemonic, b1), 2
	case cpu.ZeroPageX:
		return fmt.Sprintf("%04X  %02X %02X     %s $%02X,X", pc, op, b1, mnemonic, b1), 2
	case cpu.ZeroPageY:
		return fmt.Sprintf("%04X  %02X %02X     %s $%02X,Y", pc, op, b1, mnemonic, b1), 2
	case cpu.IndirectX:
		return fmt.Sprintf("%04X  %02X %02X     %s ($%02X,X)", pc, op, b1, mnemonic, b1), 2
	case cpu.IndirectY:
		return fmt.Sprintf("%04X  %02X %02X     %s ($%02X),Y", pc, op, b1, mnemonic, b1), 2
	case cpu.Relative:
		target := pc + 2 + uint16(int16(int8(b1)))
		return fmt.Sprintf("%04X  %02X %02X     %s $%02X ($%04X)", pc, op, b1, mnemonic, b1, target), 2
	case cpu.Absolute:
		return fmt.Sprintf("%04X  %02X %02X %02X  %s $%02X%02X", pc, op, b1, b2, mnemonic, b2, b1), 3
	case cpu.AbsoluteX:
		return fmt.Sprintf("%04X  %02X %02X %02X  %s $%02X%02X,X", pc, op, b1, b2, mnemonic, b2, b1), 3
	case cpu.AbsoluteY:
		return fmt.Sprintf("%04X  %02X %02X %02X  %s $%02X%02X,Y", pc, op, b1, b2, mnemonic, b2, b1), 3
	case cpu.Indirect:
		return fmt.Sprintf("%04X  %02X %02X %02X  %s ($%02X%02X)", pc, op, b1, b2, mnemonic, b2, b1), 3
	case cpu.Accumulator:
		return fmt.Sprintf("%04X  %02X        %s A", pc, op, mnemonic), 1
	default: // Implied
		return fmt.Sprintf("%04X  %02X        %s", pc, op, mnemonic), 1
	}
}
