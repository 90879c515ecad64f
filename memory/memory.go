// Package memory defines the byte-addressable 16 bit memory map the
// cpu package is driven against. Since each host that embeds the core
// has its own mapping (RAM, ROM, memory-mapped I/O) this is defined as
// an interface the CPU consumes rather than a concrete type it owns.
package memory

import (
	"fmt"
	"math/rand"
	"time"
)

// Bus is the minimal capability the CPU requires: byte-addressable reads
// and writes over the full 16 bit address space. Both operations are
// infallible from the CPU's point of view; any device-level error must be
// absorbed or synthesized by the implementation.
type Bus interface {
	// Read returns the byte stored at addr.
	Read(addr uint16) uint8
	// Write stores val at addr.
	Write(addr uint16, val uint8)
}

// Bank extends Bus with the bookkeeping a layered memory map needs:
// power-on behavior and the ability to chain to a parent so peripherals
// mapped into a larger address space can find the outermost bus (for
// shared databus-latch semantics some memory-mapped chips depend on).
type Bank interface {
	Bus
	// PowerOn resets the bank to its power-on contents. Implementation
	// specific as to whether that's all zeros or randomized.
	PowerOn()
	// Parent holds a reference (if non-nil) to the next level memory
	// controller. A chain of these can be walked to find the outermost
	// bank and query bus-wide state such as DatabusVal.
	Parent() Bank
	// DatabusVal returns the last value seen to cross the bus.
	DatabusVal() uint8
}

// LatestDatabusVal walks up a chain of Banks until it finds the outermost
// one and returns its DatabusVal.
func LatestDatabusVal(b Bank) uint8 {
	if b.Parent() != nil {
		return LatestDatabusVal(b.Parent())
	}
	return b.DatabusVal()
}

// flatRAM implements a full 64KiB R/W address space.
type flatRAM struct {
	ram        [65536]uint8
	parent     Bank
	databusVal uint8
}

// NewRAM creates a flat 64KiB RAM bank with no parent. Used as the top
// level bus in tests and simple hosts.
func NewRAM() Bank {
	return &flatRAM{}
}

// Read implements Bus.
func (r *flatRAM) Read(addr uint16) uint8 {
	val := r.ram[addr]
	r.databusVal = val
	return val
}

// Write implements Bus.
func (r *flatRAM) Write(addr uint16, val uint8) {
	r.databusVal = val
	r.ram[addr] = val
}

// PowerOn implements Bank and randomizes RAM contents, matching real
// hardware power-on behavior where SRAM contents are not defined.
func (r *flatRAM) PowerOn() {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range r.ram {
		r.ram[i] = uint8(rnd.Intn(256))
	}
}

// Parent implements Bank.
func (r *flatRAM) Parent() Bank {
	return r.parent
}

// DatabusVal implements Bank.
func (r *flatRAM) DatabusVal() uint8 {
	return r.databusVal
}

// region describes one address-range mapping inside a MappedBus.
type region struct {
	base, size uint16
	bank       Bank
}

func (rg region) contains(addr uint16) bool {
	return addr >= rg.base && int(addr) < int(rg.base)+int(rg.size)
}

// MappedBus composes a background RAM bank with zero or more
// higher-priority regions (ROM windows, memory-mapped I/O) layered on
// top of it, matching the memory-map contract of §6: addresses not
// claimed by a region fall through to RAM.
type MappedBus struct {
	ram     Bank
	regions []region
}

// NewMappedBus creates a MappedBus backed by a fresh flat RAM bank.
func NewMappedBus() *MappedBus {
	return &MappedBus{ram: NewRAM()}
}

// Map installs bank to handle all addresses in [base, base+size). Panics
// if the region would overlap one already mapped, since that's a wiring
// bug in the host, not a runtime condition.
func (m *MappedBus) Map(base, size uint16, bank Bank) {
	newRg := region{base: base, size: size, bank: bank}
	for _, rg := range m.regions {
		if rangesOverlap(rg, newRg) {
			panic(fmt.Sprintf("memory: region [%#04x,%#04x) overlaps existing [%#04x,%#04x)",
				newRg.base, int(newRg.base)+int(newRg.size), rg.base, int(rg.base)+int(rg.size)))
		}
	}
	m.regions = append(m.regions, newRg)
}

func rangesOverlap(a, b region) bool {
	aEnd := int(a.base) + int(a.size)
	bEnd := int(b.base) + int(b.size)
	return int(a.base) < bEnd && int(b.base) < aEnd
}

func (m *MappedBus) find(addr uint16) Bank {
	for _, rg := range m.regions {
		if rg.contains(addr) {
			return rg.bank
		}
	}
	return nil
}

// Read implements Bus, dispatching to the narrowest matching region or
// falling through to RAM.
func (m *MappedBus) Read(addr uint16) uint8 {
	if b := m.find(addr); b != nil {
		return b.Read(addr)
	}
	return m.ram.Read(addr)
}

// Write implements Bus.
func (m *MappedBus) Write(addr uint16, val uint8) {
	if b := m.find(addr); b != nil {
		b.Write(addr, val)
		return
	}
	m.ram.Write(addr, val)
}

// PowerOn implements Bank, powering on RAM and every mapped region.
func (m *MappedBus) PowerOn() {
	m.ram.PowerOn()
	for _, rg := range m.regions {
		rg.bank.PowerOn()
	}
}

// Parent implements Bank. A MappedBus is always the outermost bus.
func (m *MappedBus) Parent() Bank {
	return nil
}

// DatabusVal implements Bank, returning RAM's last bus value; mapped
// regions with their own databus latch are reached via their own
// Parent() chain instead.
func (m *MappedBus) DatabusVal() uint8 {
	return m.ram.DatabusVal()
}
