// Package display is in-memory RGBA frame for OLED panel with text rendering
// and flush to linux framebuffer. Display implements drivers.Displayer
// so tinyfont draws straight into it.
package display

import (
	"image"
	"image/color"
	"strings"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display/framebuffer"
	"github.com/juju/errors"
	"tinygo.org/x/drivers"
)

// Panels up to this height are monochrome 1bpp, bigger are RGB565.
const SmallMaxHeight = 64

var (
	Black = color.RGBA{0, 0, 0, 0xff}
	White = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

type Config struct {
	Framebuffer    string `hcl:"framebuffer"`
	Width          int    `hcl:"width"`
	Height         int    `hcl:"height"`
	PowerPin       string `hcl:"power_pin"`
	PowerPinInvert bool   `hcl:"power_pin_invert"`
}

func (c *Config) Size() image.Point {
	size := image.Point{X: c.Width, Y: c.Height}
	if size.X <= 0 {
		size.X = 128
	}
	if size.Y <= 0 {
		size.Y = 128
	}
	return size
}

type Display struct {
	fb       *framebuffer.Framebuffer
	pin      *powerPin
	pix      []color.RGBA
	size     image.Point
	power    bool
	presents int
	fonts    fonts
}

var _ drivers.Displayer = &Display{} // compile-time interface test

func NewFb(config Config) (*Display, error) {
	fb, err := framebuffer.New(config.Framebuffer)
	if err != nil {
		return nil, errors.Annotatef(err, "framebuffer device=%s", config.Framebuffer)
	}
	d := newDisplay(fb.Size())
	d.fb = fb
	if config.PowerPin != "" {
		if d.pin, err = openPowerPin(config.PowerPin, config.PowerPinInvert); err != nil {
			_ = fb.Close()
			return nil, errors.Annotatef(err, "power_pin=%s", config.PowerPin)
		}
	}
	return d, nil
}

func NewMock(size image.Point) *Display {
	return newDisplay(size)
}

func newDisplay(size image.Point) *Display {
	d := &Display{
		pix:   make([]color.RGBA, size.X*size.Y),
		size:  size,
		power: true,
		fonts: defaultFonts(),
	}
	d.Clear()
	return d
}

func (d *Display) Close() error {
	if d.fb != nil {
		return d.fb.Close()
	}
	return nil
}

func (d *Display) Bounds() image.Point { return d.size }
func (d *Display) Small() bool         { return d.size.Y <= SmallMaxHeight }
func (d *Display) Power() bool         { return d.power }

// Presents counts successful Present calls.
func (d *Display) Presents() int { return d.presents }

// Size is drivers.Displayer.
func (d *Display) Size() (x, y int16) { return int16(d.size.X), int16(d.size.Y) }

// SetPixel is drivers.Displayer, out of bounds is ignored.
func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || iy < 0 || ix >= d.size.X || iy >= d.size.Y {
		return
	}
	d.set(ix, iy, c)
}

// Display is drivers.Displayer.
func (d *Display) Display() error { return d.Present() }

func (d *Display) Clear() {
	for i := range d.pix {
		d.pix[i] = Black
	}
}

func (d *Display) Rect(x, y, w, h int, c color.RGBA) {
	for iy := y; iy < y+h; iy++ {
		for ix := x; ix < x+w; ix++ {
			d.SetPixel(int16(ix), int16(iy), c)
		}
	}
}

// Triangle draws filled down pointing triangle with top edge at y.
func (d *Display) Triangle(x, y, w int, c color.RGBA) {
	for row := 0; row*2 < w; row++ {
		for ix := x + row; ix < x+w-row; ix++ {
			d.SetPixel(int16(ix), int16(y+row), c)
		}
	}
}

// RawSize is expected length of frame passed to Raw.
func (d *Display) RawSize() int {
	if d.Small() {
		return d.size.X * d.size.Y / 8
	}
	return d.size.X * d.size.Y * 2
}

// Raw replaces whole picture with frame in panel native format:
// small panel 1bpp MSB first, otherwise RGB565 big endian.
func (d *Display) Raw(frame []byte) error {
	if len(frame) < d.RawSize() {
		return errors.Errorf("raw frame length=%d expected=%d", len(frame), d.RawSize())
	}
	n := d.size.X * d.size.Y
	if d.Small() {
		for i := 0; i < n; i++ {
			c := Black
			if frame[i/8]&(0x80>>uint(i%8)) != 0 {
				c = White
			}
			d.pix[i] = c
		}
		return nil
	}
	for i := 0; i < n; i++ {
		d.pix[i] = framebuffer.Decode565(uint16(frame[i*2])<<8 | uint16(frame[i*2+1]))
	}
	return nil
}

// Present flushes frame to panel.
func (d *Display) Present() error {
	if d.fb != nil {
		if err := d.fb.Update(d.pix); err != nil {
			return errors.Annotate(err, "display present")
		}
		if err := d.fb.Flush(); err != nil {
			return errors.Annotate(err, "display present")
		}
	}
	d.presents++
	return nil
}

func (d *Display) SetPower(on bool) error {
	if d.fb != nil {
		if err := d.fb.Blank(!on); err != nil {
			return errors.Annotatef(err, "display power=%t", on)
		}
	}
	if d.pin != nil {
		if err := d.pin.Set(on); err != nil {
			return errors.Annotatef(err, "display power=%t", on)
		}
	}
	d.power = on
	return nil
}

// String2 renders frame as text, two chars per pixel. Useful in console and tests.
func (d *Display) String2() string {
	b := strings.Builder{}
	b.Grow((d.size.X*2 + 1) * d.size.Y) // +1 for \n
	for y := 0; y < d.size.Y; y++ {
		for x := 0; x < d.size.X; x++ {
			if d.lit(x, y) {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// Lit reports whether pixel is not black.
func (d *Display) Lit(x, y int) bool {
	if x < 0 || y < 0 || x >= d.size.X || y >= d.size.Y {
		return false
	}
	return d.lit(x, y)
}

func (d *Display) lit(x, y int) bool {
	c := d.get(x, y)
	return c.R|c.G|c.B != 0
}

func (d *Display) get(x, y int) color.RGBA    { return d.pix[y*d.size.X+x] }
func (d *Display) set(x, y int, c color.RGBA) { d.pix[y*d.size.X+x] = c }
