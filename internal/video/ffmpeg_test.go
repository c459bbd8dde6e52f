package video

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"
)

type frameSink struct {
	bytes.Buffer
	closed bool
}

func (s *frameSink) Close() error {
	s.closed = true
	return nil
}

func solidFrame(w, h int, r uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: r, A: 0xff})
		}
	}
	return img
}

func TestFFmpegRecorderFollowsTimestamps(t *testing.T) {
	sink := &frameSink{}
	rec := &ffmpegRecorder{
		cfg:   RecorderConfig{Width: 2, Height: 2, FPS: 10, FrameInterval: 300 * time.Millisecond},
		stdin: sink,
	}
	pushes := []struct {
		tag uint8
		ts  time.Duration
	}{
		{'A', 100 * time.Millisecond},
		{'B', 200 * time.Millisecond},
		{'C', 600 * time.Millisecond},
	}
	for _, p := range pushes {
		if err := rec.PushFrame(solidFrame(2, 2, p.tag), p.ts); err != nil {
			t.Fatalf("push %c: %v", p.tag, err)
		}
	}
	if rec.written != 6 {
		t.Fatalf("written after pushes = %d, want 6", rec.written)
	}
	if err := rec.pad(); err != nil {
		t.Fatalf("pad: %v", err)
	}

	const frameLen = 2 * 2 * 4
	data := sink.Bytes()
	if len(data)%frameLen != 0 {
		t.Fatalf("stream length %d is not a whole number of frames", len(data))
	}
	var got strings.Builder
	for off := 0; off < len(data); off += frameLen {
		got.WriteByte(data[off])
	}
	if got.String() != "ABBBBCCC" {
		t.Fatalf("frame sequence = %q, want ABBBBCCC", got.String())
	}
}

func TestFFmpegRecorderKeepsLateFrames(t *testing.T) {
	sink := &frameSink{}
	rec := &ffmpegRecorder{
		cfg:   RecorderConfig{Width: 2, Height: 2, FPS: 30, FrameInterval: 33 * time.Millisecond},
		stdin: sink,
	}
	for i, ts := range []time.Duration{40 * time.Millisecond, 40 * time.Millisecond, 30 * time.Millisecond} {
		if err := rec.PushFrame(solidFrame(2, 2, uint8(i+1)), ts); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if rec.written != 3 {
		t.Fatalf("written = %d, want every pushed frame once", rec.written)
	}
}

func TestFFmpegRecorderRejectsWrongSize(t *testing.T) {
	rec := &ffmpegRecorder{cfg: RecorderConfig{Width: 4, Height: 4, FPS: 30}, stdin: &frameSink{}}
	if err := rec.PushFrame(solidFrame(2, 2, 1), 0); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}
