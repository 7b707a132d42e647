package pixmap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStride(t *testing.T) {
	gray, err := New(3, 2, Gray8)
	require.NoError(t, err)
	assert.Equal(t, 3, gray.Stride)
	assert.Len(t, gray.Pix, 6)

	argb, err := New(3, 2, ARGB32)
	require.NoError(t, err)
	assert.Equal(t, 12, argb.Stride)
	assert.Len(t, argb.Pix, 24)

	_, err = New(1, 1, FormatInvalid)
	assert.Error(t, err)
	_, err = New(-1, 1, Gray8)
	assert.Error(t, err)
}

func TestARGBRoundTrip(t *testing.T) {
	m, err := New(2, 1, RGB32)
	require.NoError(t, err)

	m.SetARGB(1, 0, 0xff010302)
	assert.Equal(t, uint32(0xff010302), m.ARGB(1, 0))
	assert.Equal(t, []byte{0, 0, 0, 0, 0xff, 1, 3, 2}, m.Pix)
}

func TestAtConvertsPerFormat(t *testing.T) {
	gray := &Image{Width: 2, Height: 1, Stride: 2, Format: Gray8, Pix: []byte{10, 20}}
	assert.Equal(t, color.Gray{Y: 20}, gray.At(1, 0))
	assert.Equal(t, uint32(0xff0a0a0a), gray.ARGB(0, 0))
	assert.Equal(t, color.GrayModel, gray.ColorModel())

	rgb := &Image{Width: 1, Height: 1, Stride: 4, Format: RGB32, Pix: []byte{0, 1, 2, 3}}
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 0xff}, rgb.At(0, 0))

	argb := &Image{Width: 1, Height: 1, Stride: 4, Format: ARGB32, Pix: []byte{0x80, 1, 2, 3}}
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 0x80}, argb.At(0, 0))

	assert.Equal(t, color.NRGBA{}, argb.At(5, 5))
}

func TestPNGEncodeAndBack(t *testing.T) {
	m, err := New(2, 2, ARGB32)
	require.NoError(t, err)
	m.SetARGB(0, 0, 0xffff0000)
	m.SetARGB(1, 1, 0xff00ff00)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	back := FromImage(decoded)
	assert.Equal(t, m.Pix, back.Pix)
	assert.Equal(t, image.Rect(0, 0, 2, 2), back.Bounds())
}
