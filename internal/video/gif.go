package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"math"
	"time"
)

// GIFProfile is the platform default recorder. It needs no external tools.
func GIFProfile() Profile {
	return Profile{
		MIMEType: MIMEGIF,
		New: func(cfg RecorderConfig) (Recorder, error) {
			if cfg.Width <= 0 || cfg.Height <= 0 {
				return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
			}
			return &gifRecorder{cfg: cfg}, nil
		},
	}
}

type gifRecorder struct {
	cfg     RecorderConfig
	frames  []*image.Paletted
	stamps  []time.Duration
	started bool
}

func (r *gifRecorder) MIMEType() string { return MIMEGIF }

func (r *gifRecorder) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.started = true
	return nil
}

func (r *gifRecorder) PushFrame(frame *image.RGBA, ts time.Duration) error {
	if !r.started {
		return errors.New("gif recorder not started")
	}
	r.frames = append(r.frames, quantizeWebSafe(frame))
	r.stamps = append(r.stamps, ts)
	return nil
}

func (r *gifRecorder) Stop() ([]byte, error) {
	if len(r.frames) == 0 {
		return nil, ErrNoFrames
	}
	anim := &gif.GIF{
		Image: r.frames,
		Delay: frameDelays(r.stamps, r.cfg.FrameInterval),
		Config: image.Config{
			ColorModel: color.Palette(palette.WebSafe),
			Width:      r.cfg.Width,
			Height:     r.cfg.Height,
		},
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("gif encode: %w", err)
	}
	r.frames = nil
	return buf.Bytes(), nil
}

func (r *gifRecorder) Abort() {
	r.frames = nil
	r.stamps = nil
}

// frameDelays converts capture timestamps into centisecond delays. The last
// frame is held for one nominal interval.
func frameDelays(stamps []time.Duration, interval time.Duration) []int {
	delays := make([]int, len(stamps))
	for i := range stamps {
		d := interval
		if i+1 < len(stamps) {
			d = stamps[i+1] - stamps[i]
		}
		cs := int(math.Round(float64(d) / float64(10*time.Millisecond)))
		delays[i] = max(2, cs)
	}
	return delays
}

// quantizeWebSafe maps each pixel to the 6x6x6 web-safe cube by arithmetic
// instead of a nearest-colour search.
func quantizeWebSafe(src *image.RGBA) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.WebSafe)
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+3]
			r := (int(p[0]) + 0x19) / 0x33
			g := (int(p[1]) + 0x19) / 0x33
			bl := (int(p[2]) + 0x19) / 0x33
			out[x] = uint8(r*36 + g*6 + bl)
		}
	}
	return dst
}
