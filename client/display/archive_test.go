package display

import (
	"context"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gear6io/plvclient/client/config"
	"github.com/gear6io/plvclient/client/metrics"
	"github.com/gear6io/plvclient/pkg/pixmap"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeS3(t *testing.T) config.ArchiveConfig {
	t.Helper()
	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig().Archive
	cfg.Enabled = true
	cfg.Endpoint = strings.TrimPrefix(ts.URL, "http://")
	cfg.AccessKey = "test-access"
	cfg.SecretKey = "test-secret"
	cfg.Bucket = "frames"
	cfg.Prefix = "archive"
	return cfg
}

func listKeys(t *testing.T, client *minio.Client, bucket string) []string {
	t.Helper()
	var keys []string
	for obj := range client.ListObjects(context.Background(), bucket, minio.ListObjectsOptions{Recursive: true}) {
		require.NoError(t, obj.Err)
		keys = append(keys, obj.Key)
	}
	return keys
}

func TestArchiveUploadsPNG(t *testing.T) {
	cfg := newFakeS3(t)
	client, err := NewMinioClient(cfg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	a := NewArchive(client, cfg, m, zerolog.Nop())
	require.NoError(t, a.EnsureBucket(context.Background()))
	// second call finds the bucket
	require.NoError(t, a.EnsureBucket(context.Background()))

	a.SetSession("01HSESSION")
	img, err := pixmap.New(2, 2, pixmap.Gray8)
	require.NoError(t, err)
	copy(img.Pix, []byte{1, 2, 3, 4})
	a.ShowImage(img)
	a.ShowImage(nil)
	a.ShowStatus("ignored")
	require.NoError(t, a.Close())

	keys := listKeys(t, client, cfg.Bucket)
	require.Equal(t, []string{"archive/01HSESSION/00000001.png"}, keys)

	obj, err := client.GetObject(context.Background(), cfg.Bucket, keys[0], minio.GetObjectOptions{})
	require.NoError(t, err)
	defer obj.Close()
	decoded, err := png.Decode(obj)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())

	assert.Equal(t, 1.0, gatheredValue(t, reg, "plvclient_archive_stored_total"))
}

func TestArchiveEveryN(t *testing.T) {
	cfg := newFakeS3(t)
	cfg.EveryN = 3
	cfg.QueueSize = 16
	client, err := NewMinioClient(cfg)
	require.NoError(t, err)

	a := NewArchive(client, cfg, nil, zerolog.Nop())
	require.NoError(t, a.EnsureBucket(context.Background()))
	a.SetSession("s")

	for i := 0; i < 7; i++ {
		img, err := pixmap.New(1, 1, pixmap.Gray8)
		require.NoError(t, err)
		a.ShowImage(img)
	}
	require.NoError(t, a.Close())

	assert.ElementsMatch(t, []string{
		"archive/s/00000001.png",
		"archive/s/00000004.png",
		"archive/s/00000007.png",
	}, listKeys(t, client, cfg.Bucket))
}

func TestArchiveDropsWhenQueueFull(t *testing.T) {
	cfg := config.DefaultConfig().Archive
	cfg.Bucket = "frames"
	cfg.QueueSize = 1

	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))

	// no worker drains the queue, so the second image must be dropped
	a := &Archive{
		bucket:  cfg.Bucket,
		everyN:  1,
		metrics: m,
		logger:  zerolog.Nop(),
		queue:   make(chan archiveJob, cfg.QueueSize),
	}
	img, err := pixmap.New(1, 1, pixmap.Gray8)
	require.NoError(t, err)
	a.ShowImage(img)
	a.ShowImage(img)

	assert.Len(t, a.queue, 1)
	assert.Equal(t, 1.0, gatheredValue(t, reg, "plvclient_archive_dropped_total"))
}

func TestArchiveIgnoresImagesAfterClose(t *testing.T) {
	cfg := newFakeS3(t)
	client, err := NewMinioClient(cfg)
	require.NoError(t, err)

	a := NewArchive(client, cfg, nil, zerolog.Nop())
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	img, err := pixmap.New(1, 1, pixmap.Gray8)
	require.NoError(t, err)
	assert.NotPanics(t, func() { a.ShowImage(img) })
}

func TestArchiveKey(t *testing.T) {
	a := &Archive{prefix: "frames"}
	assert.Equal(t, "frames/abc/00000012.png", a.Key("abc", 12))
	assert.Equal(t, "frames/unknown/00000001.png", a.Key("", 1))
}

func gatheredValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
