package display

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"path"
	"sync"
	"time"

	"github.com/gear6io/plvclient/client/config"
	"github.com/gear6io/plvclient/client/metrics"
	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/pixmap"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Archive error codes
var (
	ErrArchiveClient = errors.MustNewCode("archive.client_setup_failed")
	ErrArchiveBucket = errors.MustNewCode("archive.bucket_unavailable")
	ErrArchiveUpload = errors.MustNewCode("archive.upload_failed")
)

const uploadTimeout = 30 * time.Second

// NewMinioClient builds an S3 client from the archive config
func NewMinioClient(cfg config.ArchiveConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.New(ErrArchiveClient, "failed to create object storage client", err).
			AddContext("endpoint", cfg.Endpoint)
	}
	return client, nil
}

type archiveJob struct {
	img      *pixmap.Image
	session  string
	sequence uint64
}

// Archive is a Sink that uploads every Nth image as PNG to object storage.
// Uploads happen on a worker goroutine; when its queue is full new images
// are dropped rather than stalling the connection.
type Archive struct {
	client  *minio.Client
	bucket  string
	prefix  string
	region  string
	everyN  uint64
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu      sync.Mutex
	session string
	seen    uint64
	closed  bool
	queue   chan archiveJob
	wg      sync.WaitGroup
}

// NewArchive starts the upload worker
func NewArchive(client *minio.Client, cfg config.ArchiveConfig, m *metrics.Metrics, logger zerolog.Logger) *Archive {
	everyN := cfg.EveryN
	if everyN <= 0 {
		everyN = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}

	a := &Archive{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		region:  cfg.Region,
		everyN:  uint64(everyN),
		metrics: m,
		logger:  logger.With().Str("component", "archive").Str("bucket", cfg.Bucket).Logger(),
		queue:   make(chan archiveJob, queueSize),
	}

	a.wg.Add(1)
	go a.run()
	return a
}

// EnsureBucket creates the bucket if it does not exist
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return errors.New(ErrArchiveBucket, "failed to check bucket", err).AddContext("bucket", a.bucket)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return errors.New(ErrArchiveBucket, "failed to create bucket", err).AddContext("bucket", a.bucket)
	}
	a.logger.Info().Msg("Created archive bucket")
	return nil
}

// SetSession sets the session id used in object keys
func (a *Archive) SetSession(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = id
}

// Key returns the object key for an image of a session
func (a *Archive) Key(session string, sequence uint64) string {
	if session == "" {
		session = "unknown"
	}
	return path.Join(a.prefix, session, fmt.Sprintf("%08d.png", sequence))
}

func (a *Archive) ShowImage(img *pixmap.Image) {
	if img == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.seen++
	if (a.seen-1)%a.everyN != 0 {
		return
	}

	job := archiveJob{img: img, session: a.session, sequence: a.seen}
	select {
	case a.queue <- job:
	default:
		a.metrics.ArchiveDropped()
		a.logger.Warn().Uint64("sequence", job.sequence).Msg("Archive queue full, dropping frame")
	}
}

func (a *Archive) ShowStatus(string) {}

// Close stops accepting images and waits for queued uploads to finish
func (a *Archive) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}

func (a *Archive) run() {
	defer a.wg.Done()
	for job := range a.queue {
		if err := a.upload(job); err != nil {
			a.logger.Error().Err(err).Uint64("sequence", job.sequence).Msg("Archive upload failed")
			continue
		}
		a.metrics.ArchiveStored()
	}
}

func (a *Archive) upload(job archiveJob) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, job.img); err != nil {
		return errors.New(ErrArchiveUpload, "failed to encode frame", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	key := a.Key(job.session, job.sequence)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return errors.New(ErrArchiveUpload, "failed to put object", err).AddContext("key", key)
	}

	a.logger.Debug().Str("key", key).Int("bytes", buf.Len()).Msg("Archived frame")
	return nil
}
