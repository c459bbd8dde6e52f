package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Raster is an in-memory RGBA surface.
type Raster struct {
	img    *image.RGBA
	clip   *image.Alpha
	font   *Font
	faces  map[int]font.Face
	Interp xdraw.Interpolator
}

// NewRaster allocates a transparent surface of the given size.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrSurfaceUnavailable, width, height)
	}
	if width*height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds pixel budget", ErrSurfaceUnavailable, width, height)
	}
	return &Raster{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		faces:  make(map[int]font.Face),
		Interp: xdraw.ApproxBiLinear,
	}, nil
}

// SetFont replaces the font used by MeasureText and FillText.
func (r *Raster) SetFont(f *Font) {
	r.font = f
	for size, face := range r.faces {
		_ = face.Close()
		delete(r.faces, size)
	}
}

func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }

func (r *Raster) Image() *image.RGBA { return r.img }

// Clear resets every pixel to c, ignoring any active clip.
func (r *Raster) Clear(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// DrawImage scales src into dst. Edges are rounded to whole pixels.
func (r *Raster) DrawImage(src image.Image, dst RectF) {
	dr := image.Rect(
		int(math.Round(dst.X)),
		int(math.Round(dst.Y)),
		int(math.Round(dst.X+dst.W)),
		int(math.Round(dst.Y+dst.H)),
	)
	visible := dr.Intersect(r.img.Bounds())
	if visible.Empty() {
		return
	}
	if dr.Size() == src.Bounds().Size() {
		r.drawOver(dr, src, src.Bounds().Min, nil)
		return
	}
	interp := r.Interp
	if interp == nil {
		interp = xdraw.ApproxBiLinear
	}
	scaled := image.NewRGBA(visible)
	interp.Scale(scaled, dr, src, src.Bounds(), xdraw.Src, nil)
	r.drawOver(visible, scaled, visible.Min, nil)
}

// DrawBlurred draws the sr region of src through a gaussian blur with the
// given sigma, placing sr.Min at dp.
func (r *Raster) DrawBlurred(src image.Image, sr image.Rectangle, dp image.Point, sigma float64) {
	sr = sr.Intersect(src.Bounds())
	if sr.Empty() {
		return
	}
	blurred := imaging.Blur(imaging.Crop(src, sr), sigma)
	dr := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}
	r.drawOver(dr, blurred, image.Point{}, nil)
}

// ClipRoundedRect restricts subsequent drawing to a rounded rectangle.
func (r *Raster) ClipRoundedRect(rect image.Rectangle, radius int) {
	rect = rect.Intersect(r.img.Bounds())
	if rect.Empty() {
		r.clip = image.NewAlpha(image.Rectangle{})
		return
	}
	r.clip = roundedRectMask(rect, radius)
}

func (r *Raster) ResetClip() { r.clip = nil }

// Fill paints c over the clip area, or the whole surface without a clip.
func (r *Raster) Fill(c color.Color) {
	r.drawOver(r.img.Bounds(), image.NewUniform(c), image.Point{}, nil)
}

// MeasureText returns the advance width of text at the given pixel size.
func (r *Raster) MeasureText(text string, size int) (float64, error) {
	face, err := r.face(size)
	if err != nil {
		return 0, err
	}
	adv := font.MeasureString(face, text)
	return float64(adv) / 64, nil
}

// FillText renders text centered horizontally and vertically on center.
func (r *Raster) FillText(text string, size int, center image.Point, c color.Color, shadow *Shadow) error {
	face, err := r.face(size)
	if err != nil {
		return err
	}
	bounds, adv := font.BoundString(face, text)
	metrics := face.Metrics()
	dot := fixed.Point26_6{
		X: fixed.I(center.X) - adv/2,
		Y: fixed.I(center.Y) + (metrics.Ascent-metrics.Descent)/2,
	}
	glyphRect := image.Rect(
		(dot.X + bounds.Min.X).Floor(),
		(dot.Y + bounds.Min.Y).Floor(),
		(dot.X + bounds.Max.X).Ceil(),
		(dot.Y + bounds.Max.Y).Ceil(),
	)
	if glyphRect.Empty() {
		return nil
	}

	if shadow != nil && shadow.Color != nil {
		blur := shadow.Blur
		if blur < 0 {
			blur = 0
		}
		margin := blur * 2
		shadowRect := glyphRect.Inset(-margin)
		raw := image.NewAlpha(shadowRect)
		(&font.Drawer{Dst: raw, Src: image.Opaque, Face: face, Dot: dot}).DrawString(text)
		mask := raw
		if blur > 0 {
			mask = alphaFromNRGBA(imaging.Blur(raw, float64(blur)/2), shadowRect)
		}
		r.drawOver(shadowRect, image.NewUniform(shadow.Color), image.Point{}, mask)
	}

	glyphs := image.NewAlpha(glyphRect)
	(&font.Drawer{Dst: glyphs, Src: image.Opaque, Face: face, Dot: dot}).DrawString(text)
	r.drawOver(glyphRect, image.NewUniform(c), image.Point{}, glyphs)
	return nil
}

// EncodePNG writes the surface as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := imaging.Encode(w, r.img, imaging.PNG); err != nil {
		return fmt.Errorf("canvas: encode png: %w", err)
	}
	return nil
}

func (r *Raster) face(size int) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("canvas: invalid font size %d", size)
	}
	if face, ok := r.faces[size]; ok {
		return face, nil
	}
	if r.font == nil {
		f, err := DefaultFont()
		if err != nil {
			return nil, err
		}
		r.font = f
	}
	face, err := r.font.newFace(size)
	if err != nil {
		return nil, err
	}
	r.faces[size] = face
	return face, nil
}

// drawOver composites src onto dr with the combined glyph and clip mask.
// sp is the src point aligned with dr.Min; masks use surface coordinates.
func (r *Raster) drawOver(dr image.Rectangle, src image.Image, sp image.Point, mask *image.Alpha) {
	m := r.combineMask(mask)
	clipped := dr.Intersect(r.img.Bounds())
	if m != nil {
		clipped = clipped.Intersect(m.Bounds())
	}
	if clipped.Empty() {
		return
	}
	sp = sp.Add(clipped.Min.Sub(dr.Min))
	if m == nil {
		draw.Draw(r.img, clipped, src, sp, draw.Over)
		return
	}
	draw.DrawMask(r.img, clipped, src, sp, m, clipped.Min, draw.Over)
}

func (r *Raster) combineMask(mask *image.Alpha) *image.Alpha {
	if r.clip == nil {
		return mask
	}
	if mask == nil {
		return r.clip
	}
	inter := mask.Bounds().Intersect(r.clip.Bounds())
	out := image.NewAlpha(inter)
	for y := inter.Min.Y; y < inter.Max.Y; y++ {
		for x := inter.Min.X; x < inter.Max.X; x++ {
			a := uint16(mask.AlphaAt(x, y).A)
			b := uint16(r.clip.AlphaAt(x, y).A)
			out.SetAlpha(x, y, color.Alpha{A: uint8(a * b / 255)})
		}
	}
	return out
}

func roundedRectMask(rect image.Rectangle, radius int) *image.Alpha {
	w, h := rect.Dx(), rect.Dy()
	rad := float32(min(radius, w/2, h/2))
	if rad < 0 {
		rad = 0
	}
	fw, fh := float32(w), float32(h)

	z := vector.NewRasterizer(w, h)
	z.MoveTo(rad, 0)
	z.LineTo(fw-rad, 0)
	z.QuadTo(fw, 0, fw, rad)
	z.LineTo(fw, fh-rad)
	z.QuadTo(fw, fh, fw-rad, fh)
	z.LineTo(rad, fh)
	z.QuadTo(0, fh, 0, fh-rad)
	z.LineTo(0, rad)
	z.QuadTo(0, 0, rad, 0)
	z.ClosePath()

	mask := image.NewAlpha(rect)
	z.Draw(mask, rect, image.Opaque, image.Point{})
	return mask
}

func alphaFromNRGBA(src *image.NRGBA, at image.Rectangle) *image.Alpha {
	out := image.NewAlpha(at)
	size := src.Bounds().Size()
	for y := 0; y < size.Y && y < at.Dy(); y++ {
		for x := 0; x < size.X && x < at.Dx(); x++ {
			out.Pix[y*out.Stride+x] = src.Pix[y*src.Stride+x*4+3]
		}
	}
	return out
}

var _ Surface = (*Raster)(nil)
