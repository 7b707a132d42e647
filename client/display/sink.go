// Package display holds the collaborators that receive decoded frames: an
// in-memory latest-frame store, an HTTP viewer on top of it and an optional
// object storage archive.
package display

import (
	"sync"
	"time"

	"github.com/gear6io/plvclient/pkg/pixmap"
)

// Sink receives what the router decodes. Ownership of the image passes to the
// sink; the router keeps no reference.
type Sink interface {
	ShowImage(img *pixmap.Image)
	ShowStatus(status string)
}

// Discard is a Sink that drops everything
var Discard Sink = discard{}

type discard struct{}

func (discard) ShowImage(*pixmap.Image) {}
func (discard) ShowStatus(string)       {}

// Snapshot is a consistent view of a Latest store
type Snapshot struct {
	Image    *pixmap.Image
	Status   string
	Sequence uint64
	Updated  time.Time
}

// Latest keeps the most recent image and status. A new image replaces the
// previous one, which is then released to the garbage collector.
type Latest struct {
	mu       sync.RWMutex
	image    *pixmap.Image
	status   string
	sequence uint64
	updated  time.Time
}

func NewLatest() *Latest {
	return &Latest{}
}

func (l *Latest) ShowImage(img *pixmap.Image) {
	if img == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.image = img
	l.sequence++
	l.updated = time.Now()
}

func (l *Latest) ShowStatus(status string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = status
	l.updated = time.Now()
}

// Snapshot returns the current state. The image must be treated as read-only.
func (l *Latest) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Image:    l.image,
		Status:   l.status,
		Sequence: l.sequence,
		Updated:  l.updated,
	}
}

// Fanout forwards to every sink in order
type Fanout []Sink

func (f Fanout) ShowImage(img *pixmap.Image) {
	for _, s := range f {
		s.ShowImage(img)
	}
}

func (f Fanout) ShowStatus(status string) {
	for _, s := range f {
		s.ShowStatus(status)
	}
}
