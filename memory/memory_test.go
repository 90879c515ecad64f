package memory

import "testing"

func TestFlatRAMReadWrite(t *testing.T) {
	r := NewRAM()
	r.Write(0x1234, 0x42)
	if got, want := r.Read(0x1234), uint8(0x42); got != want {
		t.Errorf("Read got %.2X want %.2X", got, want)
	}
	if got, want := r.DatabusVal(), uint8(0x42); got != want {
		t.Errorf("DatabusVal got %.2X want %.2X", got, want)
	}
}

func TestLatestDatabusValWalksChain(t *testing.T) {
	outer := NewRAM().(*flatRAM)
	outer.Write(0x0000, 0x99)
	inner := &flatRAM{parent: outer}

	if got, want := LatestDatabusVal(inner), uint8(0x99); got != want {
		t.Errorf("LatestDatabusVal got %.2X want %.2X", got, want)
	}
}

type stubBank struct {
	val uint8
}

func (s *stubBank) Read(addr uint16) uint8       { return s.val }
func (s *stubBank) Write(addr uint16, val uint8) { s.val = val }
func (s *stubBank) PowerOn()                     {}
func (s *stubBank) Parent() Bank                 { return nil }
func (s *stubBank) DatabusVal() uint8            { return s.val }

func TestMappedBusRoutesToRegion(t *testing.T) {
	m := NewMappedBus()
	io := &stubBank{}
	m.Map(0xD000, 0x10, io)

	m.Write(0xD005, 0x7E)
	if got, want := io.val, uint8(0x7E); got != want {
		t.Errorf("mapped region not written: got %.2X want %.2X", got, want)
	}

	m.Write(0x0000, 0x11)
	if got, want := m.Read(0x0000), uint8(0x11); got != want {
		t.Errorf("unmapped address should fall through to RAM: got %.2X want %.2X", got, want)
	}
}

func TestMappedBusOverlapPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("overlapping Map calls did not panic")
		}
	}()
	m := NewMappedBus()
	m.Map(0xD000, 0x100, &stubBank{})
	m.Map(0xD0FF, 0x10, &stubBank{})
}

func TestMappedBusParentAlwaysNil(t *testing.T) {
	m := NewMappedBus()
	if m.Parent() != nil {
		t.Error("MappedBus.Parent() must always be nil")
	}
}
