package client

import (
	"fmt"
	"sync/atomic"

	"github.com/gear6io/plvclient/client/display"
	"github.com/gear6io/plvclient/client/metrics"
	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/protocol"
	"github.com/rs/zerolog"
)

// Stats counts what a session has processed
type Stats struct {
	BytesReceived uint64
	FramesRouted  uint64
	AcksSent      uint64
	CorruptFrames uint64
}

// Session ties an assembler to a router for one connection. It does no I/O:
// the transport hands it whatever bytes arrived and writes back the acks it
// returns. A session is used from a single goroutine; Stats may be read from
// any goroutine.
type Session struct {
	assembler *protocol.Assembler
	router    *Router
	sink      display.Sink
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	// set on the first connection-fatal error, cleared by Reset
	failed error

	bytesReceived atomic.Uint64
	framesRouted  atomic.Uint64
	acksSent      atomic.Uint64
	corruptFrames atomic.Uint64
}

// NewSession creates a session routing through router. maxFrameSize of zero
// keeps protocol.DefaultMaxFrameSize.
func NewSession(router *Router, sink display.Sink, m *metrics.Metrics, logger zerolog.Logger, maxFrameSize int) *Session {
	if sink == nil {
		sink = display.Discard
	}
	return &Session{
		assembler: protocol.NewAssembler(protocol.WithMaxFrameSize(maxFrameSize)),
		router:    router,
		sink:      sink,
		metrics:   m,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// DeliverBytes feeds chunk to the assembler and routes every frame it
// completes. It returns the acks to write, in frame order. A non-nil error
// is connection-fatal: the acks returned alongside it, up to and including
// the corrupt frame's, should still be written before closing.
func (s *Session) DeliverBytes(chunk []byte) ([]byte, error) {
	if s.failed != nil {
		return nil, s.failed
	}

	s.bytesReceived.Add(uint64(len(chunk)))
	s.metrics.BytesReceived(len(chunk))
	s.assembler.Write(chunk)

	var acks []byte
	for {
		payload, ok, err := s.assembler.Next()
		if err != nil {
			s.logger.Error().Err(err).Msg("Rejecting oversized frame")
			return acks, s.fail(err)
		}
		if !ok {
			return acks, nil
		}

		res := s.router.Route(payload)
		s.framesRouted.Add(1)
		if res.Ack != nil {
			acks = append(acks, res.Ack...)
			s.acksSent.Add(1)
		}
		if res.Err != nil {
			s.corruptFrames.Add(1)
			return acks, s.fail(res.Err)
		}
	}
}

func (s *Session) fail(err error) error {
	s.failed = err
	s.sink.ShowStatus(statusFor(err))
	return err
}

// statusFor picks the text shown for a connection-fatal stream error
func statusFor(err error) string {
	if errors.HasCode(err, protocol.ErrFrameTooLarge) {
		ctx := errors.GetContext(err)
		return fmt.Sprintf(StatusFrameTooLarge, ctx["length"], ctx["limit"])
	}
	return StatusCorrupt
}

// Reset discards any partial frame and clears a previous failure
func (s *Session) Reset() {
	s.assembler.Reset()
	s.failed = nil
}

// Buffered returns the number of bytes held for an incomplete frame
func (s *Session) Buffered() int {
	return s.assembler.Buffered()
}

func (s *Session) Stats() Stats {
	return Stats{
		BytesReceived: s.bytesReceived.Load(),
		FramesRouted:  s.framesRouted.Load(),
		AcksSent:      s.acksSent.Load(),
		CorruptFrames: s.corruptFrames.Load(),
	}
}
