package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"imagecraft/internal/canvas"
	"imagecraft/internal/infra"
)

var (
	// ErrRecordingUnsupported reports that no recorder profile could be constructed.
	ErrRecordingUnsupported = errors.New("video: recording unsupported")
	// ErrNoFrames reports a recording that stopped before any frame was captured.
	ErrNoFrames = errors.New("video: no frames captured")
)

const (
	DefaultWidth    = 1280
	DefaultHeight   = 720
	DefaultFPS      = 30
	DefaultDuration = 6000 * time.Millisecond

	// DefaultMaxConcurrent bounds simultaneous exports; each holds a full
	// clip of frames in memory while recording.
	DefaultMaxConcurrent = 2

	safetyMargin = 400 * time.Millisecond
	zoomAmount   = 0.12
	panFactor    = -0.2
)

// Options configures an Exporter.
type Options struct {
	Width    int
	Height   int
	FPS      int
	Duration time.Duration
	Profiles []Profile
	Clock    Clock
	Factory  canvas.Factory
	Logger   *infra.Logger

	// MaxConcurrent caps exports running at once. Zero means DefaultMaxConcurrent.
	MaxConcurrent int
}

// Exporter turns a still image into a short zooming clip.
type Exporter struct {
	width    int
	height   int
	fps      int
	duration time.Duration
	profiles []Profile
	clock    Clock
	factory  canvas.Factory
	logger   *infra.Logger
	slots    *semaphore.Weighted
}

// Result is an encoded clip.
type Result struct {
	Data     []byte
	MIMEType string
	Frames   int
	// Stopped is true when the safety timer ended the recording.
	Stopped bool
}

// NewExporter applies defaults for unset options.
func NewExporter(opts Options) *Exporter {
	e := &Exporter{
		width:    opts.Width,
		height:   opts.Height,
		fps:      opts.FPS,
		duration: opts.Duration,
		profiles: opts.Profiles,
		clock:    opts.Clock,
		factory:  opts.Factory,
		logger:   opts.Logger,
	}
	if e.width <= 0 {
		e.width = DefaultWidth
	}
	if e.height <= 0 {
		e.height = DefaultHeight
	}
	if e.fps <= 0 {
		e.fps = DefaultFPS
	}
	if e.duration <= 0 {
		e.duration = DefaultDuration
	}
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	e.slots = semaphore.NewWeighted(int64(limit))
	if e.profiles == nil {
		e.profiles = DefaultProfiles("ffmpeg")
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.factory == nil {
		e.factory = canvas.RasterFactory(nil)
	}
	if e.logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		e.logger = &l
	}
	return e
}

// TotalFrames is the number of frames a healthy recording captures.
func (e *Exporter) TotalFrames() int {
	return int(math.Round(float64(e.fps) * float64(e.duration.Milliseconds()) / 1000))
}

// Interval is the redraw period of the frame loop.
func (e *Exporter) Interval() time.Duration {
	ms := max(4, int(math.Round(1000/float64(e.fps))))
	return time.Duration(ms) * time.Millisecond
}

// CoverRect scales a srcW x srcH image to fill a width x height frame
// without distortion, centring the overflow.
func CoverRect(srcW, srcH, width, height int) canvas.RectF {
	imgAspect := float64(srcW) / float64(srcH)
	frameAspect := float64(width) / float64(height)
	if imgAspect > frameAspect {
		dh := float64(height)
		dw := dh * imgAspect
		return canvas.RectF{X: (float64(width) - dw) / 2, W: dw, H: dh}
	}
	dw := float64(width)
	dh := dw / imgAspect
	return canvas.RectF{Y: (float64(height) - dh) / 2, W: dw, H: dh}
}

// FrameTransform returns the zoom and pan for frame i of total.
func FrameTransform(i, total, width, height int) (scale, panX, panY float64) {
	t := math.Min(1, float64(i)/float64(max(1, total-1)))
	scale = 1 + zoomAmount*t
	panX = panFactor * float64(width) * (scale - 1)
	panY = panFactor * float64(height) * (scale - 1)
	return scale, panX, panY
}

// Project applies translate(panX, panY) then scale to r.
func Project(r canvas.RectF, scale, panX, panY float64) canvas.RectF {
	return canvas.RectF{
		X: panX + scale*r.X,
		Y: panY + scale*r.Y,
		W: scale * r.W,
		H: scale * r.H,
	}
}

// Export records the clip. It returns ErrRecordingUnsupported when neither a
// surface nor any recorder profile is available, and never returns partial
// output on failure.
func (e *Exporter) Export(ctx context.Context, src image.Image) (*Result, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.New("video: empty source image")
	}
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("video: waiting for export slot: %w", err)
	}
	defer e.slots.Release(1)
	surface, err := e.factory(e.width, e.height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordingUnsupported, err)
	}
	cfg := RecorderConfig{Width: e.width, Height: e.height, FPS: e.fps, FrameInterval: e.Interval()}
	rec, err := SelectRecorder(e.profiles, cfg)
	if err != nil {
		return nil, err
	}
	log := e.logger.With().Str("component", "video").Str("mime", rec.MIMEType()).Logger()
	if err := rec.Start(ctx); err != nil {
		rec.Abort()
		return nil, fmt.Errorf("%w: start: %v", ErrRecordingUnsupported, err)
	}

	frameSrc := toRGBA(src)
	cover := CoverRect(b.Dx(), b.Dy(), e.width, e.height)
	total := e.TotalFrames()

	ticker := e.clock.NewTicker(e.Interval())
	defer ticker.Stop()
	safety := e.clock.NewTimer(e.duration + safetyMargin)
	defer safety.Stop()

	start := e.clock.Now()
	frame := 0
	stopped := false
loop:
	for frame < total {
		select {
		case <-ctx.Done():
			rec.Abort()
			return nil, fmt.Errorf("video: export cancelled: %w", ctx.Err())
		case <-safety.C():
			stopped = true
			log.Warn().Int("frames", frame).Int("total", total).Msg("video safety timer fired")
			break loop
		case now := <-ticker.C():
			scale, panX, panY := FrameTransform(frame, total, e.width, e.height)
			surface.Clear(color.Black)
			surface.DrawImage(frameSrc, Project(cover, scale, panX, panY))
			if err := rec.PushFrame(surface.Image(), now.Sub(start)); err != nil {
				rec.Abort()
				return nil, fmt.Errorf("video: push frame %d: %w", frame, err)
			}
			frame++
		}
	}
	if frame == 0 {
		rec.Abort()
		return nil, ErrNoFrames
	}
	data, err := rec.Stop()
	if err != nil {
		return nil, fmt.Errorf("video: finalize: %w", err)
	}
	log.Debug().Int("frames", frame).Int("bytes", len(data)).Msg("video exported")
	return &Result{Data: data, MIMEType: rec.MIMEType(), Frames: frame, Stopped: stopped}, nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
