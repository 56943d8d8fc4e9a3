// Package blob stores uploaded profile images behind a bucket URL, so local
// disk (file://), memory (mem://, used in tests) and cloud buckets are
// interchangeable through configuration.
package blob

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

type Store struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

func Open(ctx context.Context, bucketURL, publicBaseURL string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	if ok, err := bucket.IsAccessible(ctx); err != nil {
		_ = bucket.Close()
		return nil, fmt.Errorf("check bucket %s: %w", bucketURL, err)
	} else if !ok {
		_ = bucket.Close()
		return nil, fmt.Errorf("bucket %s is not accessible", bucketURL)
	}
	return &Store{bucket: bucket, publicBaseURL: publicBaseURL}, nil
}

func (s *Store) Close() error {
	return s.bucket.Close()
}

// Upload writes the object under key and returns its public URL.
func (s *Store) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.bucket.Delete(ctx, key)
}

func (s *Store) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}
