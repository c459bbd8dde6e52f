package canvas

import (
	"errors"
	"image"
	"image/color"
	"io"
)

// ErrSurfaceUnavailable is returned when a drawing surface cannot be allocated.
var ErrSurfaceUnavailable = errors.New("canvas: surface unavailable")

// MaxPixels bounds the area of a single surface (8192x8192).
const MaxPixels = 8192 * 8192

// RectF is a destination rectangle in surface coordinates.
type RectF struct {
	X, Y, W, H float64
}

// Shadow describes a blurred drop shadow painted behind text.
type Shadow struct {
	Color color.Color
	Blur  int
}

// Surface is the 2D drawing capability the watermark and video pipelines
// depend on. Operations issued while a clip is active only touch pixels
// inside the clip path.
type Surface interface {
	Bounds() image.Rectangle
	Clear(c color.Color)
	DrawImage(src image.Image, dst RectF)
	DrawBlurred(src image.Image, sr image.Rectangle, dp image.Point, sigma float64)
	ClipRoundedRect(r image.Rectangle, radius int)
	ResetClip()
	Fill(c color.Color)
	MeasureText(text string, size int) (float64, error)
	FillText(text string, size int, center image.Point, c color.Color, shadow *Shadow) error
	Image() *image.RGBA
	EncodePNG(w io.Writer) error
}

// Factory allocates a surface of the given size.
type Factory func(width, height int) (Surface, error)

// RasterFactory returns a Factory producing in-memory raster surfaces that
// render text with the given font. A nil font selects the bundled bold face.
func RasterFactory(f *Font) Factory {
	return func(width, height int) (Surface, error) {
		r, err := NewRaster(width, height)
		if err != nil {
			return nil, err
		}
		if f != nil {
			r.SetFont(f)
		}
		return r, nil
	}
}
