// Package metrics exposes prometheus collectors for a client session.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors
type Config struct {
	// Namespace prefixes every metric name (default: "plvclient").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets for the frame size histogram, in bytes.
	Buckets []float64

	// Registry to register on (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// Option configures Metrics
type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry registers the collectors on registry instead of the default
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "plvclient",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	framesTotal    *prometheus.CounterVec
	acksTotal      prometheus.Counter
	corruptFrames  prometheus.Counter
	valuesTotal    *prometheus.CounterVec
	matrixRejects  prometheus.Counter
	bytesReceived  prometheus.Counter
	frameSize      prometheus.Histogram
	archiveDropped prometheus.Counter
	archiveStored  prometheus.Counter
}

// New creates and registers the collectors
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_total",
			Help:        "Frames received, by message type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		acksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "acks_total",
			Help:        "Acknowledgements produced",
			ConstLabels: config.ConstLabels,
		}),

		corruptFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "corrupt_frames_total",
			Help:        "Frames whose arguments could not be decoded",
			ConstLabels: config.ConstLabels,
		}),

		valuesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "values_total",
			Help:        "Decoded frame arguments, by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		matrixRejects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "matrix_rejects_total",
			Help:        "Matrix arguments with an unsupported shape",
			ConstLabels: config.ConstLabels,
		}),

		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "bytes_received_total",
			Help:        "Bytes read from the server",
			ConstLabels: config.ConstLabels,
		}),

		frameSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "frame_size_bytes",
			Help:        "Size of complete frame payloads",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		archiveDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "archive_dropped_total",
			Help:        "Images dropped because the archive queue was full",
			ConstLabels: config.ConstLabels,
		}),

		archiveStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "archive_stored_total",
			Help:        "Images uploaded to the archive",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) Frame(msgType string, size int) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(msgType).Inc()
	m.frameSize.Observe(float64(size))
}

func (m *Metrics) Ack() {
	if m == nil {
		return
	}
	m.acksTotal.Inc()
}

func (m *Metrics) Corrupt() {
	if m == nil {
		return
	}
	m.corruptFrames.Inc()
}

func (m *Metrics) Value(kind string) {
	if m == nil {
		return
	}
	m.valuesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) MatrixRejected() {
	if m == nil {
		return
	}
	m.matrixRejects.Inc()
}

func (m *Metrics) BytesReceived(n int) {
	if m == nil {
		return
	}
	m.bytesReceived.Add(float64(n))
}

func (m *Metrics) ArchiveDropped() {
	if m == nil {
		return
	}
	m.archiveDropped.Inc()
}

func (m *Metrics) ArchiveStored() {
	if m == nil {
		return
	}
	m.archiveStored.Inc()
}
