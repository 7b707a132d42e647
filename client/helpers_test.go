package client

import (
	"sync"
	"testing"

	"github.com/gear6io/plvclient/pkg/pixmap"
	"github.com/gear6io/plvclient/pkg/protocol"
	"github.com/gear6io/plvclient/pkg/protocol/variant"
	"github.com/rs/zerolog"
)

// recordingSink collects everything routed to it
type recordingSink struct {
	mu       sync.Mutex
	images   []*pixmap.Image
	statuses []string
}

func (r *recordingSink) ShowImage(img *pixmap.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, img)
}

func (r *recordingSink) ShowStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingSink) Images() []*pixmap.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*pixmap.Image(nil), r.images...)
}

func (r *recordingSink) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}

// frameBody builds a message body; args writes the arguments and returns
// how many it wrote
func frameBody(msgType protocol.MessageType, serial int32, args func(e *variant.Encoder) int) []byte {
	argw := protocol.NewWriter()
	n := 0
	if args != nil {
		n = args(variant.NewEncoder(argw))
	}

	w := protocol.NewWriter()
	w.WriteInt32(int32(msgType))
	w.WriteInt32(serial)
	w.WriteInt32(int32(n))
	w.WriteBytes(argw.Bytes())
	return w.Bytes()
}

// frame wraps a body with its length prefix
func frame(body []byte) []byte {
	return protocol.AppendFrame(nil, body)
}

func testLogger(t *testing.T) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.WarnLevel)
}

func ackSerials(t *testing.T, acks []byte) []int32 {
	t.Helper()
	if len(acks)%protocol.AckSize != 0 {
		t.Fatalf("ack stream of %d bytes is not a whole number of acks", len(acks))
	}
	var serials []int32
	for off := 0; off < len(acks); off += protocol.AckSize {
		serial, err := protocol.DecodeAck(acks[off : off+protocol.AckSize])
		if err != nil {
			t.Fatalf("bad ack at offset %d: %v", off, err)
		}
		serials = append(serials, serial)
	}
	return serials
}
