// Package publish uploads a generated site to a Cloud Storage bucket.
package publish

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dustin/go-humanize"
	"google.golang.org/api/iterator"
)

// Object is what the bucket reports about a stored object
type Object struct {
	Size int64
	MD5  []byte
}

// Bucket is the object store a site is published to
type Bucket interface {
	// List returns every object under prefix by name
	List(ctx context.Context, prefix string) (map[string]Object, error)
	Upload(ctx context.Context, src, object, contentType string) error
}

// Summary counts what a publish run did
type Summary struct {
	Uploaded int
	Skipped  int
	Failed   int
	Bytes    int64
}

// Publisher mirrors a site directory into a bucket
type Publisher struct {
	bucket Bucket
	prefix string
	logger *slog.Logger
}

// New creates a publisher. Objects are written below prefix.
func New(bucket Bucket, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With("component", "publish"),
	}
}

// ObjectName maps a site-relative path to its object name
func (p *Publisher) ObjectName(rel string) string {
	rel = filepath.ToSlash(rel)
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

// Publish uploads every file of siteDir whose object is missing or whose
// content differs. Individual upload failures are counted, not returned.
func (p *Publisher) Publish(ctx context.Context, siteDir string) (Summary, error) {
	var summary Summary

	listPrefix := p.prefix
	if listPrefix != "" {
		listPrefix += "/"
	}
	existing, err := p.bucket.List(ctx, listPrefix)
	if err != nil {
		return summary, fmt.Errorf("list bucket: %w", err)
	}

	err = filepath.WalkDir(siteDir, func(local string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(siteDir, local)
		if err != nil {
			return err
		}
		object := p.ObjectName(rel)

		if remote, ok := existing[object]; ok && unchanged(local, info.Size(), remote) {
			summary.Skipped++
			return nil
		}

		p.logger.Info("uploading", "object", object, "size", humanize.Bytes(uint64(info.Size())))
		if err := p.bucket.Upload(ctx, local, object, ContentType(local)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("upload failed", "object", object, "error", err)
			summary.Failed++
			return nil
		}
		summary.Uploaded++
		summary.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("publish %s: %w", siteDir, err)
	}

	p.logger.Info("publish finished",
		"uploaded", summary.Uploaded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"bytes", humanize.Bytes(uint64(summary.Bytes)))
	return summary, nil
}

// unchanged compares size first so large videos of a different size are
// never hashed. Objects without an MD5 are always re-uploaded.
func unchanged(local string, size int64, remote Object) bool {
	if remote.Size != size || len(remote.MD5) == 0 {
		return false
	}
	sum, err := fileMD5(local)
	if err != nil {
		return false
	}
	return bytes.Equal(sum, remote.MD5)
}

func fileMD5(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// site artifacts the system mime table does not always know
var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogv":  "video/ogg",
	".zip":  "application/zip",
}

// ContentType guesses the object content type from the file extension
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := contentTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// GCSBucket is a Bucket backed by Cloud Storage
type GCSBucket struct {
	client *storage.Client
	handle *storage.BucketHandle
}

// NewGCSBucket opens a bucket with application default credentials
func NewGCSBucket(ctx context.Context, name string) (*GCSBucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSBucket{client: client, handle: client.Bucket(name)}, nil
}

// Close releases the storage client
func (b *GCSBucket) Close() error {
	return b.client.Close()
}

// List implements Bucket
func (b *GCSBucket) List(ctx context.Context, prefix string) (map[string]Object, error) {
	objects := make(map[string]Object)
	it := b.handle.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		objects[attrs.Name] = Object{Size: attrs.Size, MD5: attrs.MD5}
	}
	return objects, nil
}

// Upload implements Bucket
func (b *GCSBucket) Upload(ctx context.Context, src, object, contentType string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	writer := b.handle.Object(object).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, f); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish %s: %w", object, err)
	}
	return nil
}
