package canvas

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Font is a parsed OpenType font. Faces derived from it are not safe for
// concurrent use, so each surface keeps its own face cache.
type Font struct {
	otf *opentype.Font
}

var (
	defaultFontOnce sync.Once
	defaultFont     *Font
	defaultFontErr  error
)

// ParseFont parses TrueType or OpenType font data.
func ParseFont(data []byte) (*Font, error) {
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("canvas: parse font: %w", err)
	}
	return &Font{otf: otf}, nil
}

// DefaultFont returns the bundled Go Bold face.
func DefaultFont() (*Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = ParseFont(gobold.TTF)
	})
	return defaultFont, defaultFontErr
}

func (f *Font) newFace(size int) (font.Face, error) {
	face, err := opentype.NewFace(f.otf, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("canvas: font face %dpx: %w", size, err)
	}
	return face, nil
}
