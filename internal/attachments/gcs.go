package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSStore keeps attachments as objects under prefix in one bucket.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS or
// the metadata server).
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStore(ctx context.Context, bucket string, prefix string) (*GCSStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) object(ref string) string {
	if s.prefix == "" {
		return ref
	}
	return s.prefix + "/" + ref
}

func (s *GCSStore) Put(ctx context.Context, name string, contentType string, data []byte) (string, error) {
	ref, err := cleanName(name)
	if err != nil {
		return "", err
	}
	w := s.client.Bucket(s.bucket).Object(s.object(ref)).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs object: %w", err)
	}
	return ref, nil
}

func (s *GCSStore) Get(ctx context.Context, ref string) ([]byte, error) {
	cleaned, err := cleanName(ref)
	if err != nil {
		return nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(s.object(cleaned)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open gcs object: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
