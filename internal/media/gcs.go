package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"Social_Hub/internal/config"

	"cloud.google.com/go/storage"
)

// GCSStore writes objects with application default credentials.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewGCSStore(ctx context.Context, cfg config.GCSConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, baseURL: base}, nil
}

func (s *GCSStore) Save(ctx context.Context, obj Object) (string, error) {
	key := withPrefix(s.prefix, obj.Key)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	if _, err := io.Copy(w, obj.Body); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", key, err)
	}
	return joinURL(s.baseURL, key), nil
}

func (s *GCSStore) Delete(ctx context.Context, u string) error {
	key, err := keyFromURL(s.baseURL, u)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}
