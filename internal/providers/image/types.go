// Package image fetches generated images from the text-to-image service.
package image

import (
	"context"
	"errors"

	"imagecraft/internal/styles"
)

var (
	// ErrImageLoad is returned when an image fails to load after the
	// cache-busting retry.
	ErrImageLoad = errors.New("image: failed to load")
	// ErrSourceNotAllowed rejects download URLs outside the host allowlist.
	ErrSourceNotAllowed = errors.New("image: source host not allowed")
)

const (
	DefaultDimension = 1024
	MaxDimension     = 1536
	maxImageBytes    = 32 << 20
)

// Asset is a fetched and decodable image.
type Asset struct {
	ID      string `json:"id"`
	StyleID string `json:"style"`
	Prompt  string `json:"prompt"`
	Seed    int64  `json:"seed"`
	URL     string `json:"url"`
	MIME    string `json:"mime"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Data    []byte `json:"-"`
}

// Generator produces one image per styled request.
type Generator interface {
	Generate(ctx context.Context, req styles.Request) (*Asset, error)
}

// ClampDimension applies the proxy defaults: non-positive values become 1024
// and anything larger than 1536 is capped.
func ClampDimension(v int) int {
	if v <= 0 {
		return DefaultDimension
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}
