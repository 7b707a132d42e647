package protocol

import (
	"encoding/binary"
	"math"

	"github.com/gear6io/plvclient/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// nullLength marks a null QString or QByteArray.
const nullLength = 0xFFFFFFFF

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// Reader is a big-endian cursor over one frame body. Every read checks the
// remaining length first and fails with ErrShortRead instead of panicking.
type Reader struct {
	data   []byte
	offset int
}

// NewReader creates a reader positioned at the start of data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Offset returns the current read position
func (r *Reader) Offset() int {
	return r.offset
}

func (r *Reader) need(n int) error {
	if n < 0 || r.Remaining() < n {
		return errors.Newf(ErrShortRead, "need %d bytes at offset %d, have %d", n, r.offset, r.Remaining()).
			AddContextf("offset", "%d", r.offset)
	}
	return nil
}

// ReadUint8 reads one byte
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

// ReadBool reads one byte, any non-zero value is true
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	return b != 0, err
}

// ReadUint32 reads a 32-bit unsigned integer (big endian)
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

// ReadInt32 reads a 32-bit two's complement integer (big endian)
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadFloat64 reads an IEEE-754 double (big endian)
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return math.Float64frombits(v), nil
}

// ReadBytes consumes n raw bytes. The result aliases the underlying buffer
// and is only valid while the frame is being decoded.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	return b, nil
}

// Peek returns up to the next n bytes without consuming them.
func (r *Reader) Peek(n int) []byte {
	if n > r.Remaining() {
		n = r.Remaining()
	}
	return r.data[r.offset : r.offset+n]
}

// Skip advances the cursor by n bytes
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.offset += n
	return nil
}

// ReadByteArray reads a QByteArray. A null array comes back as nil, an empty
// one as a non-nil empty slice. The result is a copy.
func (r *Reader) ReadByteArray() ([]byte, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length == nullLength {
		return nil, nil
	}
	raw, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// ReadString reads a QString: u32 byte length then UTF-16BE code units.
// A null string decodes as "".
func (r *Reader) ReadString() (string, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if length == nullLength || length == 0 {
		return "", nil
	}
	if length%2 != 0 {
		return "", errors.Newf(ErrInvalidString, "odd UTF-16 byte length %d", length)
	}
	raw, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	s, err := utf16be.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrap(ErrInvalidString, err, "decode UTF-16 string")
	}
	return string(s), nil
}
