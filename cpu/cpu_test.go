package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
)

// flatMemory implements memory.Bus directly over a 64KiB array, the
// same harness shape the teacher's tests use.
type flatMemory struct {
	addr [65536]uint8
}

func (r *flatMemory) Read(addr uint16) uint8       { return r.addr[addr] }
func (r *flatMemory) Write(addr uint16, val uint8) { r.addr[addr] = val }

func (r *flatMemory) setVector(addr uint16, val uint16) {
	r.addr[addr] = uint8(val)
	r.addr[addr+1] = uint8(val >> 8)
}

func newTestCPU(t *testing.T, cfg Config) (*CPU, *flatMemory) {
	t.Helper()
	mem := &flatMemory{}
	cfg.Bus = mem
	c := New(cfg)
	return c, mem
}

func TestResetVector(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0xCAFE)
	c.Reset()

	if got, want := c.PC(), uint16(0xCAFE); got != want {
		t.Errorf("PC after reset got %.4X want %.4X\nstate: %s", got, want, spew.Sdump(c.Reg))
	}
	if diff := deep.Equal(c.Reg, RegisterFile{PC: 0xCAFE, SP: 0xFD, P: FlagU | FlagI}); diff != nil {
		t.Errorf("RegisterFile mismatch: %v\nstate: %s", diff, spew.Sdump(c.Reg))
	}
	if got, want := c.CyclesTotal(), uint64(7); got != want {
		t.Errorf("cycles after reset got %d want %d", got, want)
	}
}

func TestStepBeforeReset(t *testing.T) {
	c, _ := newTestCPU(t, Config{})
	if _, err := c.Step(); err == nil {
		t.Fatalf("Step before Reset: got nil error, want ResetNotPerformed")
	} else if _, ok := err.(ResetNotPerformed); !ok {
		t.Fatalf("Step before Reset: got %T, want ResetNotPerformed", err)
	}
}

func TestBRK(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x1234)
	mem.setVector(IRQVector, 0xC0CA)
	c.Reset()
	c.Reg.P = 0x42 // V|Z
	mem.addr[0x1234] = 0x00 // BRK

	n, err := c.Step()
	if err != nil {
		t.Fatalf("BRK Step: %v\nstate: %s", err, spew.Sdump(c.Reg))
	}
	if got, want := n, uint8(7); got != want {
		t.Errorf("BRK cycles got %d want %d", got, want)
	}
	if got, want := c.PC(), uint16(0xC0CA); got != want {
		t.Errorf("PC after BRK got %.4X want %.4X", got, want)
	}
	p := c.pop8()
	if got, want := p, uint8(0x72); got != want {
		t.Errorf("pushed P got %.2X want %.2X", got, want)
	}
	ret := c.pop16()
	if got, want := ret, uint16(0x1236); got != want {
		t.Errorf("pushed return address got %.4X want %.4X", got, want)
	}
}

func TestADCOverflow(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x0000)
	c.Reset()
	mem.addr[0x0000] = 0xA9 // LDA #$50
	mem.addr[0x0001] = 0x50
	mem.addr[0x0002] = 0x69 // ADC #$50
	mem.addr[0x0003] = 0x50

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got, want := c.A(), uint8(0xA0); got != want {
		t.Errorf("A got %.2X want %.2X\nstate: %s", got, want, spew.Sdump(c.Reg))
	}
	if !c.Reg.GetFlag(FlagN) || !c.Reg.GetFlag(FlagV) || c.Reg.GetFlag(FlagC) || c.Reg.GetFlag(FlagZ) {
		t.Errorf("flags got N=%v V=%v C=%v Z=%v, want N=1 V=1 C=0 Z=0",
			c.Reg.GetFlag(FlagN), c.Reg.GetFlag(FlagV), c.Reg.GetFlag(FlagC), c.Reg.GetFlag(FlagZ))
	}
}

func TestJMPIndirectPageBug(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x0000)
	c.Reset()
	mem.addr[0x0000] = 0x6C // JMP ($30FF)
	mem.addr[0x0001] = 0xFF
	mem.addr[0x0002] = 0x30
	mem.addr[0x30FF] = 0x80
	mem.addr[0x3000] = 0x50
	mem.addr[0x3100] = 0x40

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got, want := c.PC(), uint16(0x5080); got != want {
		t.Errorf("JMP indirect got %.4X want %.4X (page bug not honored)", got, want)
	}
}

func TestBranchPageCross(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x00EE)
	c.Reset()
	mem.addr[0x00EE] = 0xD0 // BNE
	mem.addr[0x00EF] = 0x20 // offset, PC after operand = 0x00F0 -> target 0x0110
	c.Reg.SetFlag(FlagZ, false)

	n, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := c.PC(), uint16(0x0110); got != want {
		t.Errorf("branch target got %.4X want %.4X", got, want)
	}
	if got, want := n, uint8(4); got != want {
		t.Errorf("branch cycles got %d want %d (base 2 + taken 1 + page cross 1)", got, want)
	}
}

func TestIndirectYPageCross(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x0000)
	c.Reset()
	mem.addr[0x0000] = 0xB1 // LDA ($86),Y
	mem.addr[0x0001] = 0x86
	mem.addr[0x0086] = 0x28
	mem.addr[0x0087] = 0x40
	c.Reg.Y = 0xD8

	n, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := c.A(), mem.addr[0x4100]; got != want {
		t.Errorf("LDA ($86),Y got A=%.2X want %.2X", got, want)
	}
	if got, want := n, uint8(5); got != want {
		t.Errorf("cycles got %d want %d (base 4 + page cross 1)", got, want)
	}
}

func TestStackRoundTrip(t *testing.T) {
	c, _ := newTestCPU(t, Config{})
	c.Reg.SP = 0xFD

	spBefore := c.Reg.SP
	c.push8(0x42)
	if got := c.pop8(); got != 0x42 {
		t.Errorf("push8/pop8 round trip got %.2X want 0x42", got)
	}
	if c.Reg.SP != spBefore {
		t.Errorf("SP not restored after push8/pop8: got %.2X want %.2X", c.Reg.SP, spBefore)
	}

	c.push16(0xBEEF)
	if got := c.pop16(); got != 0xBEEF {
		t.Errorf("push16/pop16 round trip got %.4X want 0xBEEF", got)
	}
	if c.Reg.SP != spBefore {
		t.Errorf("SP not restored after push16/pop16: got %.2X want %.2X", c.Reg.SP, spBefore)
	}
}

func TestNMILatchFiresOnce(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x2000)
	mem.setVector(NMIVector, 0x3000)
	c.Reset()
	mem.addr[0x2000] = 0xEA // NOP
	mem.addr[0x2001] = 0xEA // NOP

	c.RaiseNMI()
	c.RaiseNMI() // Second pulse before service must not queue a second entry.

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got, want := c.PC(), uint16(0x3000); got != want {
		t.Fatalf("PC after NMI got %.4X want %.4X", got, want)
	}
	c.Reg.PC = 0x2000
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got, want := c.PC(), uint16(0x2001); got != want {
		t.Errorf("second Step serviced a stale NMI: PC got %.4X want %.4X", got, want)
	}
}

func TestIRQBlockedByI(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x2000)
	c.Reset()
	mem.addr[0x2000] = 0xEA // NOP
	c.Reg.SetFlag(FlagI, true)
	c.SetIRQ(true)

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got, want := c.PC(), uint16(0x2001); got != want {
		t.Errorf("IRQ serviced while I set: PC got %.4X want %.4X", got, want)
	}
}

func TestIllegalOpcodeStrictMode(t *testing.T) {
	c, mem := newTestCPU(t, Config{Strict: true})
	mem.setVector(ResetVector, 0x4000)
	c.Reset()
	mem.addr[0x4000] = 0x02 // undocumented

	pcBefore := c.PC()
	if _, err := c.Step(); err == nil {
		t.Fatalf("Step on illegal opcode in strict mode: got nil error")
	} else if _, ok := err.(IllegalOpcode); !ok {
		t.Fatalf("Step on illegal opcode: got %T, want IllegalOpcode", err)
	}
	if got := c.PC(); got != pcBefore {
		t.Errorf("PC mutated on illegal-opcode error: got %.4X want %.4X", got, pcBefore)
	}
}

func TestIllegalOpcodeLenientIsNOP(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x4000)
	c.Reset()
	mem.addr[0x4000] = 0x02 // undocumented, lenient mode => 1-byte NOP

	n, err := c.Step()
	if err != nil {
		t.Fatalf("lenient undocumented opcode: %v", err)
	}
	if got, want := n, uint8(2); got != want {
		t.Errorf("cycles got %d want %d", got, want)
	}
	if got, want := c.PC(), uint16(0x4001); got != want {
		t.Errorf("PC got %.4X want %.4X", got, want)
	}
}

func TestDisableDecimalMode(t *testing.T) {
	c, mem := newTestCPU(t, Config{DisableDecimalMode: true})
	mem.setVector(ResetVector, 0x0000)
	c.Reset()
	c.Reg.SetFlag(FlagD, true)
	mem.addr[0x0000] = 0xA9 // LDA #$09
	mem.addr[0x0001] = 0x09
	mem.addr[0x0002] = 0x69 // ADC #$01
	mem.addr[0x0003] = 0x01

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	// With BCD disabled, 0x09 + 0x01 stays pure binary (0x0A), not the
	// BCD-corrected 0x10.
	if got, want := c.A(), uint8(0x0A); got != want {
		t.Errorf("A got %.2X want %.2X (Ricoh variant must not apply BCD correction)", got, want)
	}
}

func TestTraceHookDoesNotAffectCycles(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.setVector(ResetVector, 0x0000)
	c.Reset()
	mem.addr[0x0000] = 0xEA // NOP

	var got TraceEvent
	c.RegisterTraceHook(func(ev TraceEvent) { got = ev })
	n, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if got.Mnemonic != NOP || got.PC != 0x0000 {
		t.Errorf("trace hook saw %+v", got)
	}
	if n != 2 {
		t.Errorf("trace hook changed cycle accounting: got %d want 2", n)
	}
}
