// Package pixmap holds the canonical raster produced by the decoders. It is
// independent of the wire encoding and implements image.Image so it can be
// handed straight to image/png and friends.
package pixmap

import (
	"image"
	"image/color"

	"github.com/gear6io/plvclient/pkg/errors"
)

var ErrInvalidGeometry = errors.MustNewCode("pixmap.invalid_geometry")

// Format describes the pixel layout of an Image.
type Format int

const (
	FormatInvalid Format = iota
	// Gray8 stores one byte per pixel.
	Gray8
	// RGB32 stores A,R,G,B bytes per pixel with alpha forced opaque.
	RGB32
	// ARGB32 stores A,R,G,B bytes per pixel.
	ARGB32
)

func (f Format) String() string {
	switch f {
	case Gray8:
		return "Gray8"
	case RGB32:
		return "RGB32"
	case ARGB32:
		return "ARGB32"
	default:
		return "Invalid"
	}
}

// BytesPerPixel returns the sample size for f, zero for unknown formats
func (f Format) BytesPerPixel() int {
	switch f {
	case Gray8:
		return 1
	case RGB32, ARGB32:
		return 4
	default:
		return 0
	}
}

// Image is a decoded frame. Pix is owned by the image; nothing else keeps a
// reference to the buffer it was decoded from.
type Image struct {
	Width  int
	Height int
	Stride int
	Format Format
	Pix    []byte
}

// New allocates a zeroed image with a tightly packed stride
func New(width, height int, format Format) (*Image, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, errors.Newf(ErrInvalidGeometry, "unsupported format %s", format)
	}
	if width < 0 || height < 0 {
		return nil, errors.Newf(ErrInvalidGeometry, "negative dimensions %dx%d", width, height)
	}
	return &Image{
		Width:  width,
		Height: height,
		Stride: width * bpp,
		Format: format,
		Pix:    make([]byte, width*height*bpp),
	}, nil
}

// PixOffset returns the index of the first byte of pixel (x, y)
func (m *Image) PixOffset(x, y int) int {
	return y*m.Stride + x*m.Format.BytesPerPixel()
}

// ARGB returns the packed 0xAARRGGBB sample at (x, y). Gray8 pixels are
// expanded to opaque grey.
func (m *Image) ARGB(x, y int) uint32 {
	i := m.PixOffset(x, y)
	if m.Format == Gray8 {
		g := uint32(m.Pix[i])
		return 0xff<<24 | g<<16 | g<<8 | g
	}
	return uint32(m.Pix[i])<<24 | uint32(m.Pix[i+1])<<16 | uint32(m.Pix[i+2])<<8 | uint32(m.Pix[i+3])
}

// SetARGB stores a packed sample at (x, y) in a 32-bit image
func (m *Image) SetARGB(x, y int, argb uint32) {
	i := m.PixOffset(x, y)
	m.Pix[i] = byte(argb >> 24)
	m.Pix[i+1] = byte(argb >> 16)
	m.Pix[i+2] = byte(argb >> 8)
	m.Pix[i+3] = byte(argb)
}

func (m *Image) ColorModel() color.Model {
	if m.Format == Gray8 {
		return color.GrayModel
	}
	return color.NRGBAModel
}

func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		if m.Format == Gray8 {
			return color.Gray{}
		}
		return color.NRGBA{}
	}
	if m.Format == Gray8 {
		return color.Gray{Y: m.Pix[m.PixOffset(x, y)]}
	}
	argb := m.ARGB(x, y)
	a := uint8(argb >> 24)
	if m.Format == RGB32 {
		a = 0xff
	}
	return color.NRGBA{R: uint8(argb >> 16), G: uint8(argb >> 8), B: uint8(argb), A: a}
}

// FromImage converts any image.Image into an ARGB32 Image
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	dst, _ := New(b.Dx(), b.Dy(), ARGB32)
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetARGB(x, y, uint32(c.A)<<24|uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B))
		}
	}
	return dst
}
