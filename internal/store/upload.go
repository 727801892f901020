package store

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Prefix is the logical folder every generated image is stored under.
const Prefix = "generated-images/"

const ContentTypePNG = "image/png"

type UploadParams struct {
	Key         string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// NewKey returns a fresh object key of the form generated-images/<uuid>.png.
func NewKey() string {
	return Prefix + uuid.NewString() + ".png"
}

// URLBuilder derives public URLs from object keys.
type URLBuilder struct {
	Scheme string
	Host   string
}

func (b URLBuilder) URL(key string) string {
	u := url.URL{
		Scheme: b.Scheme,
		Host:   b.Host,
		Path:   "/" + strings.TrimPrefix(key, "/"),
	}
	return u.String()
}
