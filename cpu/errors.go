package cpu

import "fmt"

// IllegalOpcode is returned by Step when Config.Strict is set and the
// fetched opcode has no documented 6502 instruction assigned (§7 item
// 2). In the default lenient mode undocumented opcodes never produce
// this error; they execute as a NOP instead.
type IllegalOpcode struct {
	Opcode  uint8
	PCAtFetch uint16
}

// Error implements the error interface.
func (e IllegalOpcode) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at PC=0x%04X", e.Opcode, e.PCAtFetch)
}

// ResetNotPerformed is returned by Step when called on a CPU that has
// never had Reset called (§7 item 3). It is fatal: CPU state is left
// unchanged.
type ResetNotPerformed struct{}

// Error implements the error interface.
func (e ResetNotPerformed) Error() string {
	return "cpu: Step called before Reset"
}
