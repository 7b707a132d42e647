package protocol

import (
	"encoding/binary"
	"math"
)

// Writer mirrors Reader. It appends to an in-memory buffer and never fails,
// callers take the result with Bytes.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty writer
func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// WriteInt32 always emits 4 big-endian bytes
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteBytes appends raw bytes without a length prefix
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteByteArray writes a QByteArray, nil is written as the null array
func (w *Writer) WriteByteArray(b []byte) {
	if b == nil {
		w.WriteUint32(nullLength)
		return
	}
	w.WriteUint32(uint32(len(b)))
	w.WriteBytes(b)
}

// WriteString writes a QString as UTF-16BE
func (w *Writer) WriteString(s string) {
	encoded, err := utf16be.NewEncoder().String(s)
	if err != nil {
		// invalid UTF-8 input, encode what the replacement encoder produces
		encoded, _ = utf16be.NewEncoder().String(string([]rune(s)))
	}
	w.WriteUint32(uint32(len(encoded)))
	w.buf = append(w.buf, encoded...)
}

// WriteNullString writes the null QString marker
func (w *Writer) WriteNullString() {
	w.WriteUint32(nullLength)
}
