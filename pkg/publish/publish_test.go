package publish

import (
	"context"
	"crypto/md5"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expose/pkg/logging"
)

type memBucket struct {
	mu       sync.Mutex
	objects  map[string]Object
	types    map[string]string
	failFor  string
	listErr  error
	uploaded []string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string]Object{}, types: map[string]string{}}
}

func (b *memBucket) List(_ context.Context, prefix string) (map[string]Object, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[string]Object{}
	for k, v := range b.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out[k] = v
		}
	}
	return out, nil
}

func (b *memBucket) Upload(_ context.Context, src, object, contentType string) error {
	if object == b.failFor {
		return errors.New("permission denied")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[object] = stored(string(data))
	b.types[object] = contentType
	b.uploaded = append(b.uploaded, object)
	return nil
}

func stored(content string) Object {
	sum := md5.Sum([]byte(content))
	return Object{Size: int64(len(content)), MD5: sum[:]}
}

func writeSite(t *testing.T) string {
	t.Helper()
	site := t.TempDir()
	files := map[string]string{
		"index.html":              "<html></html>",
		"css/style.css":           "body{}",
		"trip/index.html":         "<html>trip</html>",
		"trip/wave/1024.jpg":      "jpegdata",
		"trip/wave/1024-h264.mp4": "mp4data",
	}
	for rel, data := range files {
		path := filepath.Join(site, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}
	return site
}

func TestPublishUploadsEverythingOnce(t *testing.T) {
	site := writeSite(t)
	bucket := newMemBucket()
	p := New(bucket, "/gallery/", logging.Discard())

	summary, err := p.Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Uploaded)
	assert.Zero(t, summary.Skipped)

	sort.Strings(bucket.uploaded)
	assert.Equal(t, []string{
		"gallery/css/style.css",
		"gallery/index.html",
		"gallery/trip/index.html",
		"gallery/trip/wave/1024-h264.mp4",
		"gallery/trip/wave/1024.jpg",
	}, bucket.uploaded)
	assert.Equal(t, "image/jpeg", bucket.types["gallery/trip/wave/1024.jpg"])

	summary, err = p.Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Zero(t, summary.Uploaded)
	assert.Equal(t, 5, summary.Skipped)
}

func TestPublishReuploadsChangedSize(t *testing.T) {
	site := writeSite(t)
	bucket := newMemBucket()
	bucket.objects["trip/index.html"] = Object{Size: 1}
	bucket.objects["index.html"] = stored("<html></html>")

	summary, err := New(bucket, "", logging.Discard()).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Uploaded)
	assert.Equal(t, 1, summary.Skipped)
}

func TestPublishReuploadsSameSizeEdit(t *testing.T) {
	site := writeSite(t)
	bucket := newMemBucket()
	// a caption edit that keeps the page length
	bucket.objects["trip/index.html"] = stored("<html>ship</html>")
	bucket.objects["index.html"] = stored("<html></html>")
	// no checksum recorded for this one
	bucket.objects["css/style.css"] = Object{Size: int64(len("body{}"))}

	summary, err := New(bucket, "", logging.Discard()).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Uploaded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Contains(t, bucket.uploaded, "trip/index.html")
	assert.Contains(t, bucket.uploaded, "css/style.css")
	assert.NotContains(t, bucket.uploaded, "index.html")
}

func TestPublishCountsFailures(t *testing.T) {
	site := writeSite(t)
	bucket := newMemBucket()
	bucket.failFor = "index.html"

	summary, err := New(bucket, "", logging.Discard()).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 4, summary.Uploaded)
}

func TestPublishListError(t *testing.T) {
	bucket := newMemBucket()
	bucket.listErr = errors.New("no such bucket")

	_, err := New(bucket, "", logging.Discard()).Publish(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentType("a/1024-h264.MP4"))
	assert.Contains(t, ContentType("index.html"), "text/html")
	assert.Equal(t, "video/webm", ContentType("640-vp9.webm"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}
