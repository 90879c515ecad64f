package disassemble

import (
	"strings"
	"testing"

	"github.com/kestrel6502/sixtytwo/memory"
)

func TestStepImmediate(t *testing.T) {
	ram := memory.NewRAM()
	ram.Write(0x1000, 0xA9) // LDA #$42
	ram.Write(0x1001, 0x42)

	text, n := Step(0x1000, ram)
	if n != 2 {
		t.Errorf("byte count got %d want 2", n)
	}
	if !strings.Contains(text, "LDA #$42") {
		t.Errorf("disassembly got %q, want it to contain LDA #$42", text)
	}
}

func TestStepRelativeShowsTarget(t *testing.T) {
	ram := memory.NewRAM()
	ram.Write(0x2000, 0xD0) // BNE $10
	ram.Write(0x2001, 0x10)

	text, n := Step(0x2000, ram)
	if n != 2 {
		t.Errorf("byte count got %d want 2", n)
	}
	if !strings.Contains(text, "$2012") {
		t.Errorf("disassembly got %q, want target address $2012", text)
	}
}

func TestStepImplied(t *testing.T) {
	ram := memory.NewRAM()
	ram.Write(0x3000, 0xEA) // NOP

	text, n := Step(0x3000, ram)
	if n != 1 {
		t.Errorf("byte count got %d want 1", n)
	}
	if !strings.Contains(text, "NOP") {
		t.Errorf("disassembly got %q, want it to contain NOP", text)
	}
}
