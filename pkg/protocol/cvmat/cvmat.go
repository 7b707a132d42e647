// Package cvmat decodes the plv::CvMatData user type: an OpenCV matrix
// header followed by the raw sample bytes.
package cvmat

import (
	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/pixmap"
	"github.com/gear6io/plvclient/pkg/protocol"
)

// OpenCV type flag layout
const (
	cnShift   = 3
	depthMask = 7
	cnMask    = 63 << cnShift
)

// Depth values as packed by OpenCV
const (
	Depth8U      = 0
	Depth8S      = 1
	Depth16U     = 2
	Depth16S     = 3
	Depth32S     = 4
	Depth32F     = 5
	Depth64F     = 6
	DepthUsrType = 7
)

var depthNames = map[int]string{
	Depth8U:      "CV_8U",
	Depth8S:      "CV_8S",
	Depth16U:     "CV_16U",
	Depth16S:     "CV_16S",
	Depth32S:     "CV_32S",
	Depth32F:     "CV_32F",
	Depth64F:     "CV_64F",
	DepthUsrType: "CV_USRTYPE1",
}

// DepthName returns the OpenCV name of a depth value
func DepthName(depth int) string {
	if name, ok := depthNames[depth]; ok {
		return name
	}
	return "Invalid"
}

// TypeFlags packs depth and channel count the way cv::Mat::type does
func TypeFlags(depth, channels int) int32 {
	return int32(depth&depthMask | ((channels - 1) << cnShift & cnMask))
}

// Matrix is the wire header plus the sample bytes. Raw aliases the frame it
// was read from.
type Matrix struct {
	TypeFlags  int32
	Height     int32
	Width      int32
	ByteLength int32
	Raw        []byte
}

func (m Matrix) Depth() int {
	return int(m.TypeFlags) & depthMask
}

func (m Matrix) Channels() int {
	return ((int(m.TypeFlags) & cnMask) >> cnShift) + 1
}

// Diagnostic describes a matrix that could not be turned into an image
type Diagnostic struct {
	DepthName  string
	Width      int
	Height     int
	Channels   int
	ByteLength int
}

// Diagnose builds the diagnostic fields for m
func (m Matrix) Diagnose() Diagnostic {
	return Diagnostic{
		DepthName:  DepthName(m.Depth()),
		Width:      int(m.Width),
		Height:     int(m.Height),
		Channels:   m.Channels(),
		ByteLength: len(m.Raw),
	}
}

// ReadFrom reads one matrix payload. It always consumes exactly ByteLength
// sample bytes, so a matrix that later fails Decode leaves the cursor at the
// next argument.
func ReadFrom(r *protocol.Reader) (Matrix, error) {
	var m Matrix
	var err error

	if m.TypeFlags, err = r.ReadInt32(); err != nil {
		return Matrix{}, errors.Wrap(ErrMalformed, err, "read matrix type")
	}
	if m.Height, err = r.ReadInt32(); err != nil {
		return Matrix{}, errors.Wrap(ErrMalformed, err, "read matrix height")
	}
	if m.Width, err = r.ReadInt32(); err != nil {
		return Matrix{}, errors.Wrap(ErrMalformed, err, "read matrix width")
	}
	if m.ByteLength, err = r.ReadInt32(); err != nil {
		return Matrix{}, errors.Wrap(ErrMalformed, err, "read matrix byte length")
	}
	if m.ByteLength < 0 {
		return Matrix{}, errors.Newf(ErrMalformed, "negative matrix byte length %d", m.ByteLength)
	}
	if m.Raw, err = r.ReadBytes(int(m.ByteLength)); err != nil {
		return Matrix{}, errors.Wrap(ErrMalformed, err, "read matrix data").
			AddContextf("byte_length", "%d", m.ByteLength)
	}
	return m, nil
}

// Decode converts an 8-bit matrix with 1, 3 or 4 channels into a freshly
// allocated image. Anything else yields a *ShapeError.
//
// Channel order on the wire is not plain RGB: three channel pixels (c0,c1,c2)
// become R=c0 G=c2 B=c1, four channel pixels become R=c2 G=c1 B=c0 with c3
// dropped. Both are what the server emits.
func Decode(m Matrix) (*pixmap.Image, error) {
	if m.Depth() != Depth8U {
		return nil, newShapeError(m, "only CV_8U matrices are supported")
	}
	if m.Width < 0 || m.Height < 0 {
		return nil, newShapeError(m, "negative dimensions")
	}

	channels := m.Channels()
	switch channels {
	case 1, 3, 4:
	default:
		return nil, newShapeError(m, "unsupported channel count")
	}

	w, h := int(m.Width), int(m.Height)
	if int64(w)*int64(h)*int64(channels) != int64(len(m.Raw)) {
		return nil, newShapeError(m, "data length does not match dimensions")
	}

	switch channels {
	case 1:
		img, err := pixmap.New(w, h, pixmap.Gray8)
		if err != nil {
			return nil, err
		}
		copy(img.Pix, m.Raw)
		return img, nil

	case 3:
		img, err := pixmap.New(w, h, pixmap.RGB32)
		if err != nil {
			return nil, err
		}
		for i, j := 0, 0; j < len(m.Raw); i, j = i+4, j+3 {
			img.Pix[i] = 0xff
			img.Pix[i+1] = m.Raw[j]
			img.Pix[i+2] = m.Raw[j+2]
			img.Pix[i+3] = m.Raw[j+1]
		}
		return img, nil

	default:
		img, err := pixmap.New(w, h, pixmap.ARGB32)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(m.Raw); i += 4 {
			img.Pix[i] = 0xff
			img.Pix[i+1] = m.Raw[i+2]
			img.Pix[i+2] = m.Raw[i+1]
			img.Pix[i+3] = m.Raw[i]
		}
		return img, nil
	}
}

// Encode writes the matrix payload (everything after the user type name).
// ByteLength is taken from Raw.
func Encode(w *protocol.Writer, m Matrix) {
	w.WriteInt32(m.TypeFlags)
	w.WriteInt32(m.Height)
	w.WriteInt32(m.Width)
	w.WriteInt32(int32(len(m.Raw)))
	w.WriteBytes(m.Raw)
}
