// Command sixtytwo loads a flat 64KiB (or smaller, offset) binary image
// and drives the cpu package against it: run a cycle budget, disassemble
// a range, or snapshot state to a file. It is a thin external collaborator
// over the core, not part of it (the core has no notion of files, CLIs
// or flags).
package main

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v2"

	"github.com/kestrel6502/sixtytwo/cpu"
	"github.com/kestrel6502/sixtytwo/disassemble"
	"github.com/kestrel6502/sixtytwo/memory"
)

// snapshot is the optional persistence tuple: enough state to resume a
// run bit for bit, including the two interrupt lines since they carry
// state Reg/cycles alone don't capture.
type snapshot struct {
	Reg        cpu.RegisterFile
	Cycles     uint64
	Memory     [65536]uint8
	NMILatched bool
	IRQLevel   bool
}

func loadImage(path string, offset int) (memory.Bank, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image %q", path)
	}
	if offset < 0 || offset > 65536 {
		return nil, errors.Errorf("offset %d out of range [0,65536]", offset)
	}
	if offset+len(b) > 65536 {
		return nil, errors.Errorf("image of %d bytes at offset %d overruns 64KiB address space", len(b), offset)
	}
	ram := memory.NewRAM()
	for i, v := range b {
		ram.Write(uint16(offset+i), v)
	}
	return ram, nil
}

func newCPU(bank memory.Bank, strict, noBCD bool) *cpu.CPU {
	c := cpu.New(cpu.Config{Bus: bank, Strict: strict, DisableDecimalMode: noBCD})
	c.Reset()
	return c
}

func runAction(ctx *cli.Context) error {
	bank, err := loadImage(ctx.String("image"), ctx.Int("offset"))
	if err != nil {
		return err
	}
	c := newCPU(bank, ctx.Bool("strict"), ctx.Bool("no-bcd"))

	if ctx.Bool("trace") {
		c.RegisterTraceHook(func(ev cpu.TraceEvent) {
			fmt.Fprintf(os.Stderr, "%04X  %-4s  A=%02X X=%02X Y=%02X SP=%02X P=%02X cyc=%d\n",
				ev.PC, ev.Mnemonic, ev.A, ev.X, ev.Y, ev.SP, ev.P, ev.CyclesSoFar)
		})
	}

	spent, err := c.StepFor(uint64(ctx.Int64("cycles")))
	fmt.Printf("ran %d cycles: A=%02X X=%02X Y=%02X SP=%02X PC=%04X P=%02X\n",
		spent, c.A(), c.X(), c.Y(), c.SP(), c.PC(), c.P())
	if err != nil {
		return errors.Wrap(err, "execution stopped early")
	}

	if out := ctx.String("snapshot-out"); out != "" {
		return saveSnapshot(out, c, bank)
	}
	return nil
}

func disassembleAction(ctx *cli.Context) error {
	bank, err := loadImage(ctx.String("image"), ctx.Int("offset"))
	if err != nil {
		return err
	}
	pc := uint16(ctx.Int("start"))
	count := ctx.Int("count")
	for i := 0; i < count; i++ {
		text, n := disassemble.Step(pc, bank)
		fmt.Println(text)
		pc += uint16(n)
	}
	return nil
}

func saveSnapshot(path string, c *cpu.CPU, bank memory.Bank) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating snapshot %q", path)
	}
	defer f.Close()

	snap := snapshot{Reg: c.Reg, Cycles: c.CyclesTotal()}
	for addr := 0; addr < 65536; addr++ {
		snap.Memory[addr] = bank.Read(uint16(addr))
	}

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	return errors.Wrap(w.Flush(), "flushing snapshot")
}

func main() {
	app := &cli.App{
		Name:  "sixtytwo",
		Usage: "load and drive a 6502 core over a flat memory image",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "load an image and execute a cycle budget",
				Action: runAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "image", Required: true, Usage: "path to flat binary image"},
					&cli.IntFlag{Name: "offset", Value: 0, Usage: "load address for the image"},
					&cli.Int64Flag{Name: "cycles", Value: 1000, Usage: "minimum cycle budget to execute"},
					&cli.BoolFlag{Name: "strict", Usage: "reject undocumented opcodes instead of treating them as NOP"},
					&cli.BoolFlag{Name: "no-bcd", Usage: "disable decimal-mode ADC/SBC correction (2A03 variant)"},
					&cli.BoolFlag{Name: "trace", Usage: "print one line per executed instruction to stderr"},
					&cli.StringFlag{Name: "snapshot-out", Usage: "if set, write a gob snapshot here after the run"},
				},
			},
			{
				Name:   "disassemble",
				Usage:  "disassemble a range of an image without executing it",
				Action: disassembleAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "image", Required: true, Usage: "path to flat binary image"},
					&cli.IntFlag{Name: "offset", Value: 0, Usage: "load address for the image"},
					&cli.IntFlag{Name: "start", Required: true, Usage: "address to start disassembling at"},
					&cli.IntFlag{Name: "count", Value: 20, Usage: "number of instructions to print"},
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
