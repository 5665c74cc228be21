package blob

import (
	"context"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/storage"
)

// GCSStore persists artifacts as write-once objects in a Google Cloud
// Storage bucket. The object precondition rejects overwrites so references
// stay immutable.
type GCSStore struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// NewGCSStore connects to GCS and returns a store targeting bucket.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, now: time.Now}, nil
}

// Save uploads data and returns the object reference path.
func (s *GCSStore) Save(ctx context.Context, folder, filename string, data []byte) (string, error) {
	objectName := path.Join(folder, fmt.Sprintf("%d-%s", s.now().UnixMilli(), path.Base(filename)))
	object := s.client.Bucket(s.bucket).Object(objectName)

	w := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", objectName, err)
	}

	return "/" + objectName, nil
}

// Close releases the underlying GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
