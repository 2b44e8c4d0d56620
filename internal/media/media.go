// Package media stores uploaded post and profile media and hands back the
// public URL the rest of the system records.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"Social_Hub/internal/config"
	"Social_Hub/internal/model"

	"github.com/gabriel-vasile/mimetype"
)

const (
	KindImage = "image"
	KindVideo = "video"
)

// ErrNotManaged is returned by Delete for URLs the store did not produce.
var ErrNotManaged = errors.New("media: url not managed by this store")

// Object is an upload ready to be written. Key is unique and carries the
// file extension.
type Object struct {
	Key         string
	ContentType string
	Kind        string
	Size        int64
	Body        io.Reader
}

type Store interface {
	Save(ctx context.Context, obj Object) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.MediaConfig) (Store, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalStore(cfg.Local.Dir, cfg.Local.BaseURL)
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary.URL, cfg.Cloudinary.Folder)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown media driver: %s", cfg.Driver)
	}
}

// sniffLen matches the header size mimetype inspects.
const sniffLen = 3072

// Sniff detects the content type of r from its first bytes. The returned
// reader replays the whole stream.
func Sniff(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	return mimetype.Detect(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// KindOfMIME reports image or video, or "" for anything else.
func KindOfMIME(m *mimetype.MIME) string {
	switch {
	case strings.HasPrefix(m.String(), "image/"):
		return KindImage
	case strings.HasPrefix(m.String(), "video/"):
		return KindVideo
	}
	return ""
}

// Prepare sniffs an upload and builds the Object for it. Kind is empty for
// uploads that are neither images nor videos.
func Prepare(name string, size int64, r io.Reader) (Object, error) {
	m, body, err := Sniff(r)
	if err != nil {
		return Object{}, err
	}
	ext := m.Extension()
	if ext == "" {
		ext = strings.ToLower(path.Ext(name))
	}
	return Object{
		Key:         model.NewID() + ext,
		ContentType: m.String(),
		Kind:        KindOfMIME(m),
		Size:        size,
		Body:        body,
	}, nil
}

var videoExts = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".m4v":  true,
	".ogv":  true,
}

// KindFromURL classifies a stored media URL by extension. Any non-empty URL
// that is not a known video is an image.
func KindFromURL(u string) string {
	if u == "" {
		return ""
	}
	p := u
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if videoExts[strings.ToLower(path.Ext(p))] {
		return KindVideo
	}
	return KindImage
}

// joinURL joins a base URL and an object key.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// keyFromURL is the inverse of joinURL for the stores that address objects
// by key under a fixed base.
func keyFromURL(base, u string) (string, error) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(u, prefix) || len(u) == len(prefix) {
		return "", ErrNotManaged
	}
	return strings.TrimPrefix(u, prefix), nil
}

func withPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.Trim(prefix, "/") + "/" + key
}
