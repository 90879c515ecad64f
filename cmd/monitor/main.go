// Command monitor is a live SDL2 debugger window: it steps a cpu.CPU
// against a flat image, renders register state as text over the window
// surface and dumps full state to stderr on request. The direct-pixel
// surface technique and sdl.Main/sdl.Do split follow the same shape the
// teacher's video frontend used for its display, generalized here to
// draw text instead of a pixel framebuffer (this core has no video chip
// to render).
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/ioutil"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kestrel6502/sixtytwo/cpu"
	"github.com/kestrel6502/sixtytwo/memory"
)

var (
	cart        = flag.String("cart", "", "Path to flat binary image to load")
	offset      = flag.Int("offset", 0, "Load address for the image")
	scale       = flag.Int("scale", 2, "Scale factor for the window")
	stepsPerTic = flag.Int("steps_per_tic", 1, "Instructions to Step() per rendered frame")
	dump        = flag.Bool("dump_on_quit", false, "spew.Dump full register state to stderr when the window closes")
)

const (
	winW, winH = 480, 160
)

// textSurface adapts an sdl.Surface to the draw.Image interface so
// golang.org/x/image/font's drawer can blit glyphs directly into SDL's
// pixel buffer, the same "avoid color.Color boxing on the hot path"
// technique the original display code used for its framebuffer.
type textSurface struct {
	surface *sdl.Surface
	data    []byte
}

func (f *textSurface) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || int32(x) >= f.surface.W || int32(y) >= f.surface.H {
		return
	}
	i := int32(y)*f.surface.Pitch + int32(x)*int32(f.surface.Format.BytesPerPixel)
	r, g, b, a := c.RGBA()
	f.data[i+0] = uint8(b >> 8)
	f.data[i+1] = uint8(g >> 8)
	f.data[i+2] = uint8(r >> 8)
	f.data[i+3] = uint8(a >> 8)
}

func (f *textSurface) ColorModel() color.Model { return f.surface.ColorModel() }
func (f *textSurface) Bounds() image.Rectangle { return f.surface.Bounds() }
func (f *textSurface) At(x, y int) color.Color { return f.surface.At(x, y) }

func drawLine(img draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
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

	sdl.Main(func() {
		var window *sdl.Window
		var ts *textSurface
		sdl.Do(func() {
			if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
				log.Fatalf("can't init SDL: %v", err)
			}
			window, err = sdl.CreateWindow("sixtytwo monitor", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
				int32(winW**scale), int32(winH**scale), sdl.WINDOW_SHOWN)
			if err != nil {
				log.Fatalf("can't create window: %v", err)
			}
			surf, err := window.GetSurface()
			if err != nil {
				log.Fatalf("can't get window surface: %v", err)
			}
			ts = &textSurface{surface: surf, data: surf.Pixels()}
		})
		defer func() {
			if *dump {
				spew.Fdump(os.Stderr, c.Reg)
			}
			sdl.Do(func() {
				window.Destroy()
				sdl.Quit()
			})
		}()

		running := true
		for running {
			sdl.Do(func() {
				for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
					if _, ok := event.(*sdl.QuitEvent); ok {
						running = false
					}
				}
			})
			if !running {
				break
			}

			for i := 0; i < *stepsPerTic; i++ {
				if _, err := c.Step(); err != nil {
					fmt.Fprintf(os.Stderr, "step error: %v\n", err)
					running = false
					break
				}
			}

			sdl.Do(func() {
				draw.Draw(ts, ts.Bounds(), image.NewUniform(colornames.Black), image.Point{}, draw.Src)
				drawLine(ts, 4, 16, fmt.Sprintf("PC=%04X A=%02X X=%02X Y=%02X SP=%02X", c.PC(), c.A(), c.X(), c.Y(), c.SP()), colornames.Limegreen)
				drawLine(ts, 4, 32, fmt.Sprintf("P=%02X cycles=%d", c.P(), c.CyclesTotal()), colornames.Limegreen)
				window.UpdateSurface()
			})
		}
	})
}
