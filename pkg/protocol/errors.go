package protocol

import "github.com/gear6io/plvclient/pkg/errors"

// Protocol-specific error codes
var (
	ErrShortRead     = errors.MustNewCode("protocol.short_read")
	ErrInvalidString = errors.MustNewCode("protocol.invalid_string")
	ErrFrameTooLarge = errors.MustNewCode("protocol.frame_too_large")
	ErrInvalidAck    = errors.MustNewCode("protocol.invalid_ack")
)
