package watermark

import (
	"image"
	"math"
)

// Region is the bottom-right rounded rectangle that carries the mark.
type Region struct {
	X, Y   int
	W, H   int
	Radius int
	Pad    int
}

// Rect returns the region as an image rectangle relative to the image origin.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Center returns the midpoint used to anchor the label.
func (r Region) Center() image.Point {
	return image.Pt(
		int(math.Round(float64(r.X)+float64(r.W)/2)),
		int(math.Round(float64(r.Y)+float64(r.H)/2)),
	)
}

// EraseRect is the source area resampled through the blur, grown by 15% of
// the shorter side and clamped to the image.
func (r Region) EraseRect(width, height int) image.Rectangle {
	expand := int(math.Round(float64(min(r.W, r.H)) * 0.15))
	return image.Rect(r.X-expand, r.Y-expand, r.X+r.W+expand, r.Y+r.H+expand).
		Intersect(image.Rect(0, 0, width, height))
}

// ComputeRegion sizes the mark proportionally to a width x height image.
func ComputeRegion(width, height int) Region {
	w, h := float64(width), float64(height)
	pad := int(math.Round(math.Min(w, h) * 0.02))
	rectW := max(1, int(math.Round(math.Min(w*0.38, 480))))
	rectH := max(1, int(math.Round(math.Min(h*0.12, 140))))
	radius := max(6, int(math.Round(float64(min(rectW, rectH))*0.12)))
	return Region{
		X:      max(0, width-rectW-pad),
		Y:      max(0, height-rectH-pad),
		W:      rectW,
		H:      rectH,
		Radius: radius,
		Pad:    pad,
	}
}

// MaxLabelWidth is the widest the label may render inside the region.
func (r Region) MaxLabelWidth() float64 {
	return float64(r.W) - float64(r.Pad)*1.5
}

// FitFontSize walks down from 45% of the region height and returns the
// first size whose measured width fits. It never returns less than
// MinFontSize.
func FitFontSize(r Region, measure func(size int) (float64, error)) (int, error) {
	size := int(math.Floor(float64(r.H) * 0.45))
	if size <= MinFontSize {
		return MinFontSize, nil
	}
	limit := r.MaxLabelWidth()
	for ; size > MinFontSize; size-- {
		width, err := measure(size)
		if err != nil {
			return 0, err
		}
		if width <= limit {
			return size, nil
		}
	}
	return MinFontSize, nil
}
