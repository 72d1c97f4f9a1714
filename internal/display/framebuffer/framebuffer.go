// Package framebuffer is minimal linux fbdev access: 16bpp RGB565 and 1bpp mono panels.
package framebuffer

import (
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

const (
	ioctlGetVariableScreenInfo = 0x4600
	ioctlBlank                 = 0x4611

	blankUnblank   = 0
	blankPowerdown = 4
)

// linux/fb.h struct fb_bitfield
type bitField struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// linux/fb.h struct fb_var_screeninfo
type variableScreenInfo struct {
	Xres, Yres               uint32
	XresVirtual, YresVirtual uint32
	Xoffset, Yoffset         uint32
	BitsPerPixel             uint32
	Grayscale                uint32
	Red, Green, Blue, Transp bitField
	Nonstd                   uint32
	Activate                 uint32
	Height, Width            uint32
	AccelFlags               uint32
	Pixclock                 uint32
	LeftMargin, RightMargin  uint32
	UpperMargin, LowerMargin uint32
	HsyncLen, VsyncLen       uint32
	Sync, Vmode, Rotate      uint32
	Colorspace               uint32
	Reserved                 [4]uint32
}

type Framebuffer struct {
	buf   []byte
	dev   *os.File
	vinfo variableScreenInfo
}

func New(dev string) (*Framebuffer, error) {
	devFile, err := os.OpenFile(dev, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.Annotate(err, "open")
	}
	fb := &Framebuffer{dev: devFile}
	if err = ioctl(devFile.Fd(), ioctlGetVariableScreenInfo, uintptr(unsafe.Pointer(&fb.vinfo))); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "get variable screen info")
	}
	switch fb.vinfo.BitsPerPixel {
	case 1, 16:
	default:
		fb.dev.Close()
		return nil, errors.NotSupportedf("bits_per_pixel=%d", fb.vinfo.BitsPerPixel)
	}
	fb.buf = make([]byte, bufferSize(fb.vinfo))
	return fb, nil
}

func (fb *Framebuffer) Close() error {
	return fb.dev.Close()
}

func (fb *Framebuffer) Flush() error {
	_, err := fb.dev.WriteAt(fb.buf, 0)
	return errors.Annotate(err, "framebuffer write")
}

func (fb *Framebuffer) Size() image.Point {
	return image.Point{X: int(fb.vinfo.Xres), Y: int(fb.vinfo.Yres)}
}

// Blank powers panel down or up.
func (fb *Framebuffer) Blank(blank bool) error {
	arg := blankUnblank
	if blank {
		arg = blankPowerdown
	}
	return errors.Annotate(unix.IoctlSetInt(int(fb.dev.Fd()), ioctlBlank, arg), "FBIOBLANK")
}

// Update sets all pixels in internal buffer, call Flush() to write to hardware.
func (fb *Framebuffer) Update(cs []color.RGBA) error {
	n := int(fb.vinfo.Xres * fb.vinfo.Yres)
	if len(cs) < n {
		return errors.Errorf("framebuffer update pixels=%d expected=%d", len(cs), n)
	}
	cs = cs[:n]
	switch fb.vinfo.BitsPerPixel {
	case 16:
		if !isRGB565(fb.vinfo) {
			return errors.NotSupportedf("color model")
		}
		for i, c := range cs {
			binary.BigEndian.PutUint16(fb.buf[i*2:], Encode565(c))
		}
	case 1:
		EncodeMono(fb.buf, cs)
	}
	return nil
}

func bufferSize(v variableScreenInfo) int {
	if v.BitsPerPixel == 1 {
		return int(v.Xres*v.Yres+7) / 8
	}
	return int(v.Xres * v.Yres * (v.BitsPerPixel / 8))
}

func isRGB565(v variableScreenInfo) bool {
	return v.Red.Offset == 11 && v.Red.Length == 5 &&
		v.Green.Offset == 5 && v.Green.Length == 6 &&
		v.Blue.Offset == 0 && v.Blue.Length == 5
}

func Encode565(c color.RGBA) uint16 {
	return (uint16(c.R) & 0xf8 << 8) | (uint16(c.G) & 0xfc << 3) | (uint16(c.B) & 0xf8 >> 3)
}

func Decode565(w uint16) color.RGBA {
	r := uint8(w>>11) & 0x1f
	g := uint8(w>>5) & 0x3f
	b := uint8(w) & 0x1f
	return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xff}
}

// EncodeMono packs pixels MSB first, any non-black pixel is lit.
func EncodeMono(dst []byte, cs []color.RGBA) {
	for i := range dst {
		dst[i] = 0
	}
	for i, c := range cs {
		if c.R|c.G|c.B != 0 {
			dst[i/8] |= 0x80 >> uint(i%8)
		}
	}
}

func ioctl(fd uintptr, cmd uintptr, data uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, data); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
