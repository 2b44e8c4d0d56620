package service

import (
	"context"
	"io"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/media"
)

// Upload is a file received from a client.
type Upload struct {
	Name string
	Size int64
	Body io.Reader
}

// mediaSaver validates an upload and writes it to the media store.
type mediaSaver struct {
	store    media.Store
	maxBytes int64
}

func (m mediaSaver) save(ctx context.Context, up *Upload) (string, error) {
	if m.maxBytes > 0 && up.Size > m.maxBytes {
		return "", errs.Invalidf("file is larger than %d bytes", m.maxBytes)
	}
	obj, err := media.Prepare(up.Name, up.Size, up.Body)
	if err != nil {
		return "", errs.Invalid("could not read upload")
	}
	if obj.Kind == "" {
		return "", errs.Invalid("only images and videos are accepted")
	}
	url, err := m.store.Save(ctx, obj)
	if err != nil {
		return "", errs.Upstream("media upload failed", err)
	}
	return url, nil
}
