package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
)

// Recorder consumes rendered frames and produces an encoded clip.
type Recorder interface {
	MIMEType() string
	Start(ctx context.Context) error
	// PushFrame encodes frame, captured ts after the recording started. The
	// frame buffer is reused by the caller once PushFrame returns.
	PushFrame(frame *image.RGBA, ts time.Duration) error
	Stop() ([]byte, error)
	Abort()
}

// RecorderConfig is passed to every profile constructor.
type RecorderConfig struct {
	Width         int
	Height        int
	FPS           int
	FrameInterval time.Duration
}

// Profile is one entry of the codec preference list.
type Profile struct {
	MIMEType string
	New      func(cfg RecorderConfig) (Recorder, error)
}

// Codec profiles in preference order.
const (
	MIMEWebMVP9 = "video/webm;codecs=vp9"
	MIMEWebMVP8 = "video/webm;codecs=vp8"
	MIMEWebM    = "video/webm"
	MIMEGIF     = "image/gif"
)

// DefaultProfiles returns vp9, vp8 and plain webm through ffmpeg followed by
// the pure Go GIF encoder as the platform default.
func DefaultProfiles(ffmpegPath string) []Profile {
	return []Profile{
		FFmpegProfile(ffmpegPath, MIMEWebMVP9, "libvpx-vp9"),
		FFmpegProfile(ffmpegPath, MIMEWebMVP8, "libvpx"),
		FFmpegProfile(ffmpegPath, MIMEWebM, ""),
		GIFProfile(),
	}
}

// SelectRecorder returns a recorder from the first profile that can be
// constructed.
func SelectRecorder(profiles []Profile, cfg RecorderConfig) (Recorder, error) {
	var errs []error
	for _, p := range profiles {
		if p.New == nil {
			continue
		}
		rec, err := p.New(cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.MIMEType, err))
			continue
		}
		return rec, nil
	}
	if len(errs) == 0 {
		return nil, ErrRecordingUnsupported
	}
	return nil, fmt.Errorf("%w: %w", ErrRecordingUnsupported, errors.Join(errs...))
}

// FileExtension maps a recorder MIME type to a download extension.
func FileExtension(mime string) string {
	switch {
	case strings.HasPrefix(mime, "video/webm"):
		return ".webm"
	case mime == MIMEGIF:
		return ".gif"
	default:
		return ".bin"
	}
}
