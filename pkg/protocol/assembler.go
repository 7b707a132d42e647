package protocol

import (
	"encoding/binary"

	"github.com/gear6io/plvclient/pkg/errors"
)

// AssemblerState is the position of the assembler in the current frame.
type AssemblerState int

const (
	AwaitingLength AssemblerState = iota
	AwaitingBody
)

func (s AssemblerState) String() string {
	switch s {
	case AwaitingLength:
		return "AwaitingLength"
	case AwaitingBody:
		return "AwaitingBody"
	default:
		return "Unknown"
	}
}

// Assembler turns an arbitrarily fragmented byte stream into complete frame
// payloads. It holds every byte it has not yet emitted; nothing is dropped or
// duplicated no matter how the stream is split.
type Assembler struct {
	buf      []byte
	off      int
	state    AssemblerState
	expected int
	maxFrame int
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithMaxFrameSize overrides DefaultMaxFrameSize. Zero or negative keeps the default.
func WithMaxFrameSize(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.maxFrame = n
		}
	}
}

// NewAssembler creates an assembler waiting for a length prefix
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{maxFrame: DefaultMaxFrameSize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Write appends a chunk to the reassembly buffer
func (a *Assembler) Write(chunk []byte) {
	switch {
	case a.off == len(a.buf):
		a.buf = a.buf[:0]
		a.off = 0
	case a.off > len(a.buf)/2:
		n := copy(a.buf, a.buf[a.off:])
		a.buf = a.buf[:n]
		a.off = 0
	}
	a.buf = append(a.buf, chunk...)
}

// Next returns the next complete payload. ok is false when more input is
// needed. An error means the declared length exceeded the maximum frame size;
// the stream cannot be resynchronised after that.
func (a *Assembler) Next() (payload []byte, ok bool, err error) {
	if a.state == AwaitingLength {
		if a.Buffered() < LengthPrefixSize {
			return nil, false, nil
		}
		n := binary.BigEndian.Uint32(a.buf[a.off:])
		if uint64(n) > uint64(a.maxFrame) {
			return nil, false, errors.Newf(ErrFrameTooLarge, "declared frame length %d exceeds maximum %d", n, a.maxFrame).
				AddContextf("length", "%d", n).
				AddContextf("limit", "%d", a.maxFrame)
		}
		a.off += LengthPrefixSize
		a.expected = int(n)
		a.state = AwaitingBody
	}

	if a.Buffered() < a.expected {
		return nil, false, nil
	}

	payload = make([]byte, a.expected)
	copy(payload, a.buf[a.off:a.off+a.expected])
	a.off += a.expected
	a.expected = 0
	a.state = AwaitingLength
	return payload, true, nil
}

// Feed writes chunk and drains every frame it completes.
func (a *Assembler) Feed(chunk []byte) ([][]byte, error) {
	a.Write(chunk)

	var frames [][]byte
	for {
		payload, ok, err := a.Next()
		if err != nil {
			return frames, err
		}
		if !ok {
			return frames, nil
		}
		frames = append(frames, payload)
	}
}

// Reset discards any partially assembled frame
func (a *Assembler) Reset() {
	a.buf = nil
	a.off = 0
	a.expected = 0
	a.state = AwaitingLength
}

// Buffered returns the number of bytes held but not yet emitted
func (a *Assembler) Buffered() int {
	return len(a.buf) - a.off
}

func (a *Assembler) State() AssemblerState {
	return a.state
}

// Expected returns the body length being waited for, zero while awaiting a prefix
func (a *Assembler) Expected() int {
	return a.expected
}

// AppendFrame appends body to dst behind its u32 length prefix
func AppendFrame(dst, body []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)))
	return append(dst, body...)
}
