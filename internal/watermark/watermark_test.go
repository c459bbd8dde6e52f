package watermark

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"imagecraft/internal/canvas"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func TestComputeRegionStaysInsideImage(t *testing.T) {
	sizes := []int{1, 2, 17, 64, 65, 99, 100, 257, 640, 1000, 1024, 1263, 2048, 4096}
	for _, w := range sizes {
		for _, h := range sizes {
			r := ComputeRegion(w, h)
			maxW := math.Min(float64(w)*0.38, 480)
			maxH := math.Min(float64(h)*0.12, 140)
			if r.W <= 0 || r.H <= 0 {
				t.Fatalf("%dx%d: region %+v has empty size", w, h, r)
			}
			// Rounding may lift a fractional bound by at most half a pixel.
			if w >= 64 && float64(r.W) > maxW+0.5 {
				t.Fatalf("%dx%d: rectW = %d, limit %.2f", w, h, r.W, maxW)
			}
			if h >= 64 && float64(r.H) > maxH+0.5 {
				t.Fatalf("%dx%d: rectH = %d, limit %.2f", w, h, r.H, maxH)
			}
			if r.X < 0 || r.Y < 0 || r.X+r.W > w || r.Y+r.H > h {
				t.Fatalf("%dx%d: region %+v outside image", w, h, r)
			}
			if r.Radius < 6 {
				t.Fatalf("%dx%d: radius = %d, want >= 6", w, h, r.Radius)
			}
		}
	}
}

func TestComputeRegionAnchorsBottomRight(t *testing.T) {
	r := ComputeRegion(1024, 1024)
	want := Region{X: 1024 - 389 - 20, Y: 1024 - 123 - 20, W: 389, H: 123, Radius: 15, Pad: 20}
	if r != want {
		t.Fatalf("ComputeRegion(1024, 1024) = %+v, want %+v", r, want)
	}
	large := ComputeRegion(4000, 3000)
	if large.W != 480 || large.H != 140 {
		t.Fatalf("large region size = %dx%d, want 480x140", large.W, large.H)
	}
}

func TestFitFontSize(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		width  func(size int) float64
		want   int
	}{
		{
			name:   "first fit wins",
			region: Region{W: 220, H: 100, Pad: 10},
			width:  func(size int) float64 { return float64(size) * 10 },
			want:   20,
		},
		{
			name:   "starting size fits",
			region: Region{W: 480, H: 140, Pad: 20},
			width:  func(size int) float64 { return float64(size) },
			want:   63,
		},
		{
			name:   "nothing fits clamps to floor",
			region: Region{W: 40, H: 100, Pad: 2},
			width:  func(size int) float64 { return 1000 },
			want:   MinFontSize,
		},
		{
			name:   "tiny region clamps to floor",
			region: Region{W: 30, H: 8, Pad: 1},
			width:  func(size int) float64 { return 0 },
			want:   MinFontSize,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FitFontSize(tc.region, func(size int) (float64, error) {
				return tc.width(size), nil
			})
			if err != nil {
				t.Fatalf("FitFontSize error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("FitFontSize() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFitFontSizePropagatesMeasureError(t *testing.T) {
	boom := errors.New("boom")
	_, err := FitFontSize(Region{W: 300, H: 100}, func(int) (float64, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestFitFontSizeWithRealFont(t *testing.T) {
	surface, err := canvas.NewRaster(1, 1)
	if err != nil {
		t.Fatalf("new raster: %v", err)
	}
	measure := func(size int) (float64, error) { return surface.MeasureText(Label, size) }
	floorWidth, err := measure(MinFontSize)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	for rectW := 40; rectW <= 480; rectW += 4 {
		side := int(math.Ceil(float64(rectW) / 0.38))
		region := ComputeRegion(side, side)
		size, err := FitFontSize(region, measure)
		if err != nil {
			t.Fatalf("rectW %d: %v", rectW, err)
		}
		if size < MinFontSize {
			t.Fatalf("rectW %d: size %d below floor", rectW, size)
		}
		width, err := measure(size)
		if err != nil {
			t.Fatalf("rectW %d: %v", rectW, err)
		}
		fitsAtFloor := floorWidth <= region.MaxLabelWidth()
		if fitsAtFloor && width > region.MaxLabelWidth() {
			t.Fatalf("rectW %d: size %d measures %.1f, limit %.1f", rectW, size, width, region.MaxLabelWidth())
		}
		if region.W >= 200 && !fitsAtFloor {
			t.Fatalf("rectW %d: label does not fit at %dpx (%.1f > %.1f)", region.W, MinFontSize, floorWidth, region.MaxLabelWidth())
		}
	}
}

func TestRenderKeepsDimensions(t *testing.T) {
	sizes := []image.Point{{64, 64}, {64, 300}, {300, 64}, {1024, 768}, {1536, 1536}, {4096, 4096}}
	c := New(Options{})
	for _, sz := range sizes {
		if testing.Short() && sz.X*sz.Y > 2048*2048 {
			continue
		}
		src := solidImage(sz.X, sz.Y, color.RGBA{R: 40, G: 120, B: 200, A: 0xff})
		surface, err := c.Render(src)
		if err != nil {
			t.Fatalf("%v: render: %v", sz, err)
		}
		if got := surface.Bounds().Size(); got != sz {
			t.Fatalf("output size = %v, want %v", got, sz)
		}
	}
}

func TestApplyStampsRegionOnly(t *testing.T) {
	src := solidImage(400, 300, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	out, err := New(Options{}).Apply(src)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", decoded.Bounds(), src.Bounds())
	}
	r, _, _, _ := decoded.At(5, 5).RGBA()
	if r>>8 != 0xff {
		t.Fatalf("pixel outside region changed: r=%d", r>>8)
	}
	region := ComputeRegion(400, 300)
	inside := image.Pt(region.X+region.W/2, region.Y+2)
	r, _, _, _ = decoded.At(inside.X, inside.Y).RGBA()
	if r>>8 > 0x70 {
		t.Fatalf("pixel inside region not darkened: r=%d", r>>8)
	}
}

func TestRenderUnavailable(t *testing.T) {
	c := New(Options{Factory: func(int, int) (canvas.Surface, error) {
		return nil, canvas.ErrSurfaceUnavailable
	}})
	_, err := c.Apply(solidImage(64, 64, color.RGBA{A: 0xff}))
	if !errors.Is(err, ErrRenderingUnavailable) {
		t.Fatalf("error = %v, want ErrRenderingUnavailable", err)
	}
}

func TestApplyBytesRejectsGarbage(t *testing.T) {
	_, err := New(Options{}).ApplyBytes([]byte("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}
