package client

import (
	"io"
	"net"
	"sync"
	"time"
)

// MockPipelineServer plays the server side of a single connection: it writes
// a canned byte stream, optionally in small chunks, and records every byte the
// client sends back.
type MockPipelineServer struct {
	listener net.Listener
	addr     string
	quit     chan struct{}

	stream    []byte
	chunkSize int
	holdOpen  bool

	mu       sync.Mutex
	received []byte
	done     chan struct{}
}

// NewMockPipelineServer starts a server that sends stream. A chunkSize of
// zero sends it in one write. With holdOpen the connection stays up until
// the client closes it.
func NewMockPipelineServer(stream []byte, chunkSize int, holdOpen bool) (*MockPipelineServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	server := &MockPipelineServer{
		listener:  listener,
		addr:      listener.Addr().String(),
		quit:      make(chan struct{}),
		stream:    stream,
		chunkSize: chunkSize,
		holdOpen:  holdOpen,
		done:      make(chan struct{}),
	}

	go server.serve()
	return server, nil
}

// Addr returns the server address
func (s *MockPipelineServer) Addr() string {
	return s.addr
}

// Close stops the server
func (s *MockPipelineServer) Close() error {
	close(s.quit)
	return s.listener.Close()
}

// Received waits for the connection to finish and returns what the client sent
func (s *MockPipelineServer) Received(timeout time.Duration) ([]byte, bool) {
	select {
	case <-s.done:
	case <-time.After(timeout):
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.received...), true
}

func (s *MockPipelineServer) serve() {
	conn, err := s.listener.Accept()
	if err != nil {
		close(s.done)
		return
	}
	defer close(s.done)
	defer conn.Close()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				s.mu.Lock()
				s.received = append(s.received, buf[:n]...)
				s.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	s.write(conn)

	if s.holdOpen {
		<-readDone
		return
	}

	// half-close so the client sees EOF but its acks still arrive
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}
	select {
	case <-readDone:
	case <-s.quit:
	}
}

func (s *MockPipelineServer) write(w io.Writer) {
	data := s.stream
	if s.chunkSize <= 0 {
		_, _ = w.Write(data)
		return
	}
	for len(data) > 0 {
		n := s.chunkSize
		if n > len(data) {
			n = len(data)
		}
		if _, err := w.Write(data[:n]); err != nil {
			return
		}
		data = data[n:]
	}
}
