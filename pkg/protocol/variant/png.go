package variant

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"

	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/pixmap"
	"github.com/gear6io/plvclient/pkg/protocol"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// maxChunkLength is the PNG limit on a single chunk (2^31-1).
const maxChunkLength = 1<<31 - 1

// MaxImagePixels bounds the width*height an Image variant may declare.
// image/png allocates the full pixel buffer from the IHDR header before it
// reads any pixel data, so the header is checked first.
const MaxImagePixels = protocol.DefaultMaxFrameSize

// pngLength walks the chunk list of a PNG stream at the head of data and
// returns its total length through the IEND chunk. QDataStream writes the
// image without a length prefix, so this is the only way to find its end.
func pngLength(data []byte) (int, error) {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return 0, errors.New(ErrInvalidImage, "missing PNG signature", nil)
	}

	off := len(pngSignature)
	for {
		if len(data)-off < 8 {
			return 0, errors.Newf(ErrInvalidImage, "truncated PNG chunk header at offset %d", off)
		}
		n := binary.BigEndian.Uint32(data[off:])
		if n > maxChunkLength {
			return 0, errors.Newf(ErrInvalidImage, "PNG chunk length %d out of range", n)
		}
		kind := string(data[off+4 : off+8])

		// header, data, crc
		end := int64(off) + 8 + int64(n) + 4
		if end > int64(len(data)) {
			return 0, errors.Newf(ErrInvalidImage, "truncated PNG chunk %q", kind)
		}
		off = int(end)

		if kind == "IEND" {
			return off, nil
		}
	}
}

// readImage consumes one PNG-encoded QImage from r.
func readImage(r *protocol.Reader) (*pixmap.Image, error) {
	n, err := pngLength(r.Peek(r.Remaining()))
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidImage, err, "decode PNG header")
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxImagePixels {
		return nil, errors.Newf(ErrInvalidImage, "PNG image %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxImagePixels).
			AddContextf("width", "%d", cfg.Width).
			AddContextf("height", "%d", cfg.Height)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidImage, err, "decode PNG image")
	}
	return toPixmap(decoded), nil
}

func toPixmap(src image.Image) *pixmap.Image {
	if g, ok := src.(*image.Gray); ok {
		b := g.Bounds()
		dst, _ := pixmap.New(b.Dx(), b.Dy(), pixmap.Gray8)
		for y := 0; y < dst.Height; y++ {
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}
	return pixmap.FromImage(src)
}
