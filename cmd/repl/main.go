// Command repl is an interactive terminal stepper: load a flat image,
// single-step the core with the space bar, and watch a page table plus
// register status update live. Grounded in the bubbletea/lipgloss
// debugger model: a tea.Model wrapping the CPU, Update doing one Step
// per keypress, View rendering a page table above the status panel.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/kestrel6502/sixtytwo/cpu"
	"github.com/kestrel6502/sixtytwo/disassemble"
	"github.com/kestrel6502/sixtytwo/memory"
)

var (
	cart   = flag.String("cart", "", "Path to flat binary image to load")
	offset = flag.Int("offset", 0, "Load address for the image")
)

type model struct {
	c      *cpu.CPU
	bank   memory.Bank
	prevPC uint16
	err    error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "j":
		m.prevPC = m.c.PC()
		if _, err := m.c.Step(); err != nil {
			m.err = err
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04X | ", start)
	for i := 0; i < 16; i++ {
		addr := start + uint16(i)
		b := m.bank.Read(addr)
		if addr == m.c.PC() {
			s += fmt.Sprintf("[%02X] ", b)
		} else {
			s += fmt.Sprintf(" %02X  ", b)
		}
	}
	return s
}

func (m model) pageTable() string {
	base := m.c.PC() &^ 0x000F
	lines := []string{"addr |  0   1   2   3   4   5   6   7   8   9   A   B   C   D   E   F"}
	for i := -2; i <= 2; i++ {
		lines = append(lines, m.renderPage(base+uint16(i*16)))
	}
	return strings.Join(lines, "\n")
}

func (m model) status() string {
	text, _ := disassemble.Step(m.c.PC(), m.bank)
	return fmt.Sprintf(`
PC: %04X (was %04X)
 A: %02X   X: %02X   Y: %02X  SP: %02X
 P: %02X  cycles: %d

%s`,
		m.c.PC(), m.prevPC, m.c.A(), m.c.X(), m.c.Y(), m.c.SP(), m.c.P(), m.c.CyclesTotal(), text)
}

func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.pageTable(),
		m.status(),
		"",
		"space/j: step   q: quit",
	)
}

func main() {
	flag.Parse()
	if *cart == "" {
		log.Fatal("--cart is required")
	}
	rom, err := ioutil.ReadFile(*cart)
	if err != nil {
		log.Fatalf("can't load image: %v", err)
	}
	bank := memory.NewRAM()
	for i, v := range rom {
		if *offset+i >= 65536 {
			break
		}
		bank.Write(uint16(*offset+i), v)
	}

	c := cpu.New(cpu.Config{Bus: bank})
	c.Reset()

	p := tea.NewProgram(model{c: c, bank: bank})
	finalModel, err := p.Run()
	if err != nil {
		log.Fatal(err)
	}
	if fm, ok := finalModel.(model); ok && fm.err != nil {
		fmt.Println("stopped:", fm.err)
		fmt.Println(spew.Sdump(fm.c.Reg))
	}
}
