package client

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"sync"
	"syscall"

	"github.com/gear6io/plvclient/client/config"
	"github.com/gear6io/plvclient/client/display"
	"github.com/gear6io/plvclient/client/metrics"
	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/protocol/variant"
	"github.com/gear6io/plvclient/utils"
	goerrors "github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// DialFunc opens the transport connection
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client owns the TCP connection to a plv server. It pumps received bytes
// into a Session and writes the acknowledgements back.
type Client struct {
	config  *config.Config
	sink    display.Sink
	logger  zerolog.Logger
	metrics *metrics.Metrics
	decoder *variant.Decoder
	dial    DialFunc

	mu        sync.Mutex
	conn      net.Conn
	session   *Session
	sessionID string
	lastStats Stats
}

// Option configures a Client
type Option func(*Client)

// WithMetrics records session metrics on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithDecoder replaces the default variant decoder, for extra user types
func WithDecoder(d *variant.Decoder) Option {
	return func(c *Client) {
		c.decoder = d
	}
}

// WithDialer replaces net.Dialer
func WithDialer(dial DialFunc) Option {
	return func(c *Client) {
		c.dial = dial
	}
}

// New creates a client. Nothing is dialed until Connect.
func New(cfg *config.Config, sink display.Sink, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = display.Discard
	}

	c := &Client{
		config: cfg,
		sink:   sink,
		logger: logger.With().Str("component", "client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder = variant.NewDecoder()
	}
	if c.dial == nil {
		d := &net.Dialer{Timeout: cfg.Server.DialTimeout}
		c.dial = d.DialContext
	}
	return c, nil
}

// Connect dials the server and starts a fresh session. Any previous
// connection is closed first.
func (c *Client) Connect(ctx context.Context) error {
	_ = c.Close()

	addr := c.config.ServerAddr()
	c.logger.Debug().Str("addr", addr).Msg("Connecting to plv server")

	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		status := StatusForError(err)
		c.sink.ShowStatus(status)
		return errors.New(ErrConnectionFailed, "failed to connect to server", goerrors.Wrap(err, "dial")).
			AddContext("addr", addr).
			AddContext("status", status)
	}

	sessionID := utils.GenerateULIDString()
	logger := c.logger.With().Str("session", sessionID).Logger()
	router := NewRouter(c.decoder, c.sink, c.metrics, logger)
	session := NewSession(router, c.sink, c.metrics, logger, c.config.Protocol.MaxFrameSize)

	c.mu.Lock()
	c.conn = conn
	c.session = session
	c.sessionID = sessionID
	c.mu.Unlock()

	c.sink.ShowStatus(StatusConnected)
	logger.Info().Str("addr", addr).Msg("Connected to plv server")
	return nil
}

// Run reads from the connection until the server disconnects, ctx is
// cancelled or the stream turns out to be corrupt. A clean disconnect or
// cancellation returns nil. The connection is closed on return.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	conn, session, sessionID := c.conn, c.session, c.sessionID
	c.mu.Unlock()
	if conn == nil {
		return errors.New(ErrClientNotConnected, "client not connected to server", nil)
	}

	logger := c.logger.With().Str("session", sessionID).Logger()
	defer func() {
		c.mu.Lock()
		c.lastStats = session.Stats()
		c.mu.Unlock()
		c.closeConn(conn)
	}()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	bufSize, maxBuf := c.config.Server.ReadBuffer, c.config.Server.MaxReadBuffer
	buf := make([]byte, bufSize)
	for {
		n, readErr := conn.Read(buf)
		if n > 0 {
			acks, err := session.DeliverBytes(buf[:n])
			if len(acks) > 0 {
				if _, werr := conn.Write(acks); werr != nil && err == nil {
					return errors.New(ErrAckWriteFailed, "failed to write ack", goerrors.Wrap(werr, "write ack"))
				}
			}
			if err != nil {
				logger.Error().Err(err).Msg("Closing connection on corrupt stream")
				return err
			}
			if n == len(buf) && len(buf) < maxBuf {
				next := len(buf) * 2
				if next > maxBuf {
					next = maxBuf
				}
				buf = make([]byte, next)
			}
		}

		if readErr != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("Session cancelled")
				return nil
			}
			if stderrors.Is(readErr, io.EOF) {
				logger.Info().Msg("Server closed the connection")
				c.sink.ShowStatus(StatusDisconnected)
				return nil
			}
			if c.closedLocally(conn) {
				return nil
			}
			return errors.New(ErrReadFailed, "failed to read from server", goerrors.Wrap(readErr, "read frame data"))
		}
	}
}

// Close aborts the connection. The session is dropped with it so no partial
// frame survives into the next Connect.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return c.closeConn(conn)
}

func (c *Client) closeConn(conn net.Conn) error {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return nil
	}
	if c.session != nil {
		c.lastStats = c.session.Stats()
	}
	c.conn = nil
	c.session = nil
	c.mu.Unlock()

	c.logger.Debug().Msg("Closing client connection")
	return conn.Close()
}

func (c *Client) closedLocally(conn net.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != conn
}

// Connected reports whether a connection is open
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SessionID returns the ULID of the current or most recent session
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Stats returns the counters of the current session, or of the last one
// once it has ended
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session.Stats()
	}
	return c.lastStats
}

// StatusForError maps a dial error to the text shown to the user
func StatusForError(err error) string {
	var dnsErr *net.DNSError
	switch {
	case stderrors.As(err, &dnsErr):
		return StatusHostNotFound
	case stderrors.Is(err, syscall.ECONNREFUSED):
		return StatusConnRefused
	default:
		return StatusErrorPrefix + err.Error()
	}
}
