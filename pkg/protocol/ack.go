package protocol

import (
	"encoding/binary"

	"github.com/gear6io/plvclient/pkg/errors"
)

// EncodeAck builds the 12-byte acknowledgement for serial
func EncodeAck(serial int32) []byte {
	return AppendAck(make([]byte, 0, AckSize), serial)
}

// AppendAck appends the acknowledgement for serial to dst
func AppendAck(dst []byte, serial int32) []byte {
	dst = binary.BigEndian.AppendUint32(dst, HeaderSize)
	dst = binary.BigEndian.AppendUint32(dst, uint32(MessageAck))
	return binary.BigEndian.AppendUint32(dst, uint32(serial))
}

// DecodeAck parses a full ack frame, prefix included, and returns its serial.
func DecodeAck(frame []byte) (int32, error) {
	if len(frame) != AckSize {
		return 0, errors.Newf(ErrInvalidAck, "ack must be %d bytes, got %d", AckSize, len(frame))
	}
	r := NewReader(frame)
	length, _ := r.ReadUint32()
	msgType, _ := r.ReadInt32()
	serial, _ := r.ReadInt32()
	if length != HeaderSize {
		return 0, errors.Newf(ErrInvalidAck, "ack length prefix %d, want %d", length, HeaderSize)
	}
	if MessageType(msgType) != MessageAck {
		return 0, errors.Newf(ErrInvalidAck, "message type %s is not an ack", MessageType(msgType))
	}
	return serial, nil
}
