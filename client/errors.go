package client

import "github.com/gear6io/plvclient/pkg/errors"

// Error codes for client package
var (
	// Connection errors
	ErrClientNotConnected = errors.MustNewCode("client.not_connected")
	ErrConnectionFailed   = errors.MustNewCode("client.connection_failed")
	ErrReadFailed         = errors.MustNewCode("client.read_failed")
	ErrAckWriteFailed     = errors.MustNewCode("client.ack_write_failed")

	// Stream errors, all connection-fatal
	ErrProtocolCorrupt = errors.MustNewCode("client.protocol_corrupt")
)

// Status texts shown to the user
const (
	StatusCorrupt       = "Datastream corrupt"
	StatusFrameTooLarge = "Frame of %s bytes rejected, limit is %s bytes"
	StatusHostNotFound  = "The host was not found. Please check the host name and port settings."
	StatusConnRefused   = "The connection was refused by the peer. Make sure the ParleVision server is running, and check that the host name and port settings are correct."
	StatusErrorPrefix   = "The following error occurred: "
	StatusConnected     = "Connected"
	StatusDisconnected  = "Disconnected"
)
