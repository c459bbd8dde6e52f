package watermark

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"imagecraft/internal/canvas"
)

// Label is the product mark rendered onto exported images.
const Label = "ARABISH IMAGE CRAFT"

const (
	// MinFontSize is the smallest label size the fitter will select.
	MinFontSize = 10
	eraseSigma  = 12
)

var (
	// ErrRenderingUnavailable reports that no drawing surface could be used.
	// Callers fall back to the unmodified source bytes.
	ErrRenderingUnavailable = errors.New("watermark: rendering unavailable")
	// ErrDecode reports source bytes that are not a supported image.
	ErrDecode = errors.New("watermark: decode source image")
)

var (
	baseColor   = color.NRGBA{A: 166}
	shadowColor = color.NRGBA{A: 89}
	labelColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Options configures a Compositor.
type Options struct {
	Label   string
	Font    *canvas.Font
	Factory canvas.Factory
}

// Compositor stamps the product mark onto images.
type Compositor struct {
	label   string
	factory canvas.Factory
}

// New constructs a Compositor. Zero options select the default label and
// the in-memory raster surface.
func New(opts Options) *Compositor {
	label := opts.Label
	if label == "" {
		label = Label
	}
	factory := opts.Factory
	if factory == nil {
		factory = canvas.RasterFactory(opts.Font)
	}
	return &Compositor{label: label, factory: factory}
}

// Render composites the mark over src and returns the surface holding the
// result. The surface has the same dimensions as src.
func (c *Compositor) Render(src image.Image) (canvas.Surface, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty source", ErrRenderingUnavailable)
	}
	surface, err := c.factory(w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	surface.DrawImage(src, canvas.RectF{W: float64(w), H: float64(h)})

	region := ComputeRegion(w, h)
	surface.ClipRoundedRect(region.Rect(), region.Radius)
	defer surface.ResetClip()

	erase := region.EraseRect(w, h)
	surface.DrawBlurred(src, erase.Add(b.Min), erase.Min, eraseSigma)

	surface.Fill(baseColor)

	size, err := FitFontSize(region, func(size int) (float64, error) {
		return surface.MeasureText(c.label, size)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	shadow := &canvas.Shadow{Color: shadowColor, Blur: max(2, size/10)}
	if err := surface.FillText(c.label, size, region.Center(), labelColor, shadow); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	return surface, nil
}

// Apply renders the mark and encodes the result as PNG.
func (c *Compositor) Apply(src image.Image) ([]byte, error) {
	surface, err := c.Render(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := surface.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	return buf.Bytes(), nil
}

// ApplyBytes decodes an encoded image and applies the mark.
func (c *Compositor) ApplyBytes(data []byte) ([]byte, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return c.Apply(src)
}

// Decode decodes JPEG, PNG, GIF, BMP or TIFF bytes.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
