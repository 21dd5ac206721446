// Package archive uploads grid exports to a Cloud Storage bucket.
package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

type GCSUploader struct {
	client *storage.Client
	bucket string
}

// NewGCS uses application default credentials.
func NewGCS(ctx context.Context, bucket string) (*GCSUploader, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, object, contentType string, r io.Reader) error {
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("archive: upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("archive: finalize %s: %w", object, err)
	}
	return nil
}

func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// ObjectName builds exports/grids-20060102T150405Z.<ext> when name is empty.
func ObjectName(name, ext string, now time.Time) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	return fmt.Sprintf("exports/grids-%s.%s", now.UTC().Format("20060102T150405Z"), ext)
}
