package variant

import (
	"bytes"
	"image"
	"image/png"

	"github.com/gear6io/plvclient/pkg/protocol"
	"github.com/gear6io/plvclient/pkg/protocol/cvmat"
)

// Encoder writes variants in the layout Decoder expects. The client never
// sends variants; this exists to build server-side streams for tests and the
// replay tooling.
type Encoder struct {
	w *protocol.Writer
}

// NewEncoder wraps w
func NewEncoder(w *protocol.Writer) *Encoder {
	return &Encoder{w: w}
}

// Header writes a tag and a cleared null marker
func (e *Encoder) Header(tag protocol.VariantTag) {
	e.w.WriteInt32(int32(tag))
	e.w.WriteUint8(0)
}

func (e *Encoder) Int(v int32) {
	e.Header(protocol.TagInt)
	e.w.WriteInt32(v)
}

func (e *Encoder) UInt(v uint32) {
	e.Header(protocol.TagUInt)
	e.w.WriteUint32(v)
}

func (e *Encoder) Bool(v bool) {
	e.Header(protocol.TagBool)
	e.w.WriteBool(v)
}

func (e *Encoder) Double(v float64) {
	e.Header(protocol.TagDouble)
	e.w.WriteFloat64(v)
}

func (e *Encoder) String(s string) {
	e.Header(protocol.TagString)
	e.w.WriteString(s)
}

func (e *Encoder) Bytes(b []byte) {
	e.Header(protocol.TagByteArray)
	e.w.WriteByteArray(b)
}

// Bits writes a QBitArray of n bits, LSB first within each byte
func (e *Encoder) Bits(n int, data []byte) {
	e.Header(protocol.TagBitArray)
	e.w.WriteUint32(uint32(n))
	e.w.WriteBytes(data[:(n+7)/8])
}

// Image writes a QImage as PNG. A nil image is written as the null image.
func (e *Encoder) Image(img image.Image) error {
	e.Header(protocol.TagImage)
	if img == nil {
		e.w.WriteInt32(0)
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	e.w.WriteInt32(1)
	e.w.WriteBytes(buf.Bytes())
	return nil
}

// UserType writes a user type header. The name is written NUL terminated,
// the caller appends the payload.
func (e *Encoder) UserType(name string) {
	e.Header(protocol.TagUserType)
	e.w.WriteByteArray(append([]byte(name), 0))
}

// Matrix writes a plv::CvMatData value
func (e *Encoder) Matrix(m cvmat.Matrix) {
	e.UserType(protocol.MatrixTypeName)
	cvmat.Encode(e.w, m)
}
