package client

import (
	"github.com/gear6io/plvclient/client/display"
	"github.com/gear6io/plvclient/client/metrics"
	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/protocol"
	"github.com/gear6io/plvclient/pkg/protocol/variant"
	"github.com/rs/zerolog"
)

// Result describes what routing one frame payload did
type Result struct {
	Type      protocol.MessageType
	Serial    int32
	HasSerial bool
	ArgCount  int32
	// Decoded is the number of arguments decoded before the loop ended
	Decoded int
	// Ack is the acknowledgement to send, nil when no serial could be read
	Ack []byte
	// Err is set when the frame was corrupt; it carries ErrProtocolCorrupt
	Err error
}

// Router parses frame headers, decodes FRAME arguments and hands the results
// to a display sink. Every frame whose serial could be read is acknowledged,
// including frames abandoned half way.
type Router struct {
	decoder *variant.Decoder
	sink    display.Sink
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRouter creates a router. A nil decoder gets the default one, a nil sink
// discards, a nil metrics records nothing.
func NewRouter(decoder *variant.Decoder, sink display.Sink, m *metrics.Metrics, logger zerolog.Logger) *Router {
	if decoder == nil {
		decoder = variant.NewDecoder()
	}
	if sink == nil {
		sink = display.Discard
	}
	return &Router{
		decoder: decoder,
		sink:    sink,
		metrics: m,
		logger:  logger.With().Str("component", "router").Logger(),
	}
}

// Route processes one complete frame payload
func (rt *Router) Route(payload []byte) Result {
	var res Result
	r := protocol.NewReader(payload)

	if len(payload) < protocol.HeaderSize {
		res.Err = errors.Newf(ErrProtocolCorrupt, "frame of %d bytes is too short for a header", len(payload))
		rt.metrics.Corrupt()
		return res
	}

	msgType, _ := r.ReadInt32()
	serial, _ := r.ReadInt32()
	res.Type = protocol.MessageType(msgType)
	res.Serial = serial
	res.HasSerial = true

	rt.metrics.Frame(res.Type.String(), len(payload))

	switch res.Type {
	case protocol.MessageFrame:
		rt.routeFrame(r, &res)
	case protocol.MessageInit, protocol.MessageAck:
		rt.logger.Debug().
			Str("type", res.Type.String()).
			Int32("serial", serial).
			Msg("Message not supported")
	default:
		rt.logger.Warn().
			Int32("type", msgType).
			Int32("serial", serial).
			Msg("Unknown message type received")
	}

	res.Ack = protocol.EncodeAck(serial)
	rt.metrics.Ack()
	if res.Err != nil {
		rt.metrics.Corrupt()
	}
	return res
}

func (rt *Router) routeFrame(r *protocol.Reader, res *Result) {
	argCount, err := r.ReadInt32()
	if err != nil {
		res.Err = rt.corrupt(err, "read argument count", res.Serial, 0)
		return
	}
	res.ArgCount = argCount
	if argCount < 0 {
		res.Err = errors.Newf(ErrProtocolCorrupt, "negative argument count %d", argCount).
			AddContextf("serial", "%d", res.Serial)
		return
	}

	rt.logger.Debug().
		Int32("serial", res.Serial).
		Int("size", r.Remaining()+protocol.FrameHeaderSize).
		Int32("args", argCount).
		Msg("Loading frame")

	for i := int32(0); i < argCount; i++ {
		v, err := rt.decoder.Decode(r)
		if err != nil {
			res.Err = rt.corrupt(err, "decode frame argument", res.Serial, int(i))
			return
		}
		res.Decoded++
		rt.dispatch(v, res.Serial)
	}

	if r.Remaining() > 0 {
		rt.logger.Debug().
			Int32("serial", res.Serial).
			Int("trailing", r.Remaining()).
			Msg("Ignoring trailing frame bytes")
	}
}

func (rt *Router) dispatch(v variant.Value, serial int32) {
	rt.metrics.Value(v.Kind().String())

	switch v := v.(type) {
	case variant.Image:
		rt.sink.ShowImage(v.Image)
	case variant.Text:
		rt.sink.ShowStatus(v.Value)
	case variant.Rejected:
		rt.metrics.MatrixRejected()
		rt.logger.Warn().
			Int32("serial", serial).
			Str("depth", v.Diagnostic.DepthName).
			Int("width", v.Diagnostic.Width).
			Int("height", v.Diagnostic.Height).
			Int("channels", v.Diagnostic.Channels).
			Int("byte_length", v.Diagnostic.ByteLength).
			Str("reason", v.Reason).
			Msg("Matrix data rejected")
	case variant.Int:
		rt.logger.Debug().Int32("serial", serial).Int32("value", v.Value).Msg("Int argument")
	case variant.Bool:
		rt.logger.Debug().Int32("serial", serial).Bool("value", v.Value).Msg("Bool argument")
	case variant.Double:
		rt.logger.Debug().Int32("serial", serial).Float64("value", v.Value).Msg("Double argument")
	case variant.Bytes:
		rt.logger.Debug().Int32("serial", serial).Int("length", len(v.Value)).Msg("ByteArray argument")
	case variant.Bits:
		rt.logger.Debug().Int32("serial", serial).Int("bits", v.Len).Msg("BitArray argument")
	case variant.Discarded:
		rt.logger.Debug().Int32("serial", serial).Str("tag", v.Tag.String()).Msg("Argument discarded")
	}
}

func (rt *Router) corrupt(cause error, message string, serial int32, arg int) error {
	rt.logger.Error().
		Err(cause).
		Int32("serial", serial).
		Int("arg", arg).
		Msg("Datastream corrupt")
	return errors.Wrap(ErrProtocolCorrupt, cause, message).
		AddContextf("serial", "%d", serial).
		AddContextf("arg", "%d", arg)
}
