package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ThumbnailResolver turns a stored thumbnail name into a URL a browser can load.
type ThumbnailResolver interface {
	URL(ctx context.Context, name string) (string, error)
}

// StaticResolver serves thumbnails from the backend's uploads directory.
type StaticResolver struct {
	BaseURL string
}

func (r StaticResolver) URL(_ context.Context, name string) (string, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return "", fmt.Errorf("thumbnail name is required")
	}
	base := strings.TrimRight(r.BaseURL, "/")
	if base == "" {
		return "", fmt.Errorf("uploads base url is required")
	}
	return base + "/" + url.PathEscape(name), nil
}

var _ ThumbnailResolver = StaticResolver{}
