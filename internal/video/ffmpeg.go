package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

var encoderCache sync.Map // ffmpeg path -> encoderList

type encoderList struct {
	once   sync.Once
	output string
	err    error
}

// FFmpegProfile records WebM through an ffmpeg binary reading raw RGBA frames
// on stdin. An empty codec leaves the choice to ffmpeg's webm muxer.
func FFmpegProfile(path, mime, codec string) Profile {
	return Profile{
		MIMEType: mime,
		New: func(cfg RecorderConfig) (Recorder, error) {
			if strings.TrimSpace(path) == "" {
				return nil, errors.New("ffmpeg path not configured")
			}
			if err := probeEncoder(path, codec); err != nil {
				return nil, err
			}
			return &ffmpegRecorder{path: path, mime: mime, codec: codec, cfg: cfg}, nil
		},
	}
}

func probeEncoder(path, codec string) error {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	if codec == "" {
		return nil
	}
	v, _ := encoderCache.LoadOrStore(resolved, &encoderList{})
	list := v.(*encoderList)
	list.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		out, err := exec.CommandContext(ctx, resolved, "-hide_banner", "-encoders").Output()
		list.output, list.err = string(out), err
	})
	if list.err != nil {
		return fmt.Errorf("ffmpeg list encoders: %w", list.err)
	}
	if !strings.Contains(list.output, " "+codec+" ") {
		return fmt.Errorf("ffmpeg encoder %s unavailable", codec)
	}
	return nil
}

type ffmpegRecorder struct {
	path  string
	mime  string
	codec string
	cfg   RecorderConfig

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout bytes.Buffer
	stderr bytes.Buffer

	// ffmpeg reads a constant-rate stream, so capture gaps are filled by
	// repeating the previous frame.
	last    []byte
	written int
	first   time.Duration
	latest  time.Duration
}

func (r *ffmpegRecorder) MIMEType() string { return r.mime }

func (r *ffmpegRecorder) args() []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", r.cfg.Width, r.cfg.Height),
		"-r", strconv.Itoa(r.cfg.FPS),
		"-i", "pipe:0",
	}
	if r.codec != "" {
		args = append(args, "-c:v", r.codec)
	}
	return append(args, "-b:v", "2M", "-pix_fmt", "yuv420p", "-an", "-f", "webm", "pipe:1")
}

func (r *ffmpegRecorder) Start(ctx context.Context) error {
	r.cmd = exec.CommandContext(ctx, r.path, r.args()...)
	r.cmd.Stdout = &r.stdout
	r.cmd.Stderr = &r.stderr
	stdin, err := r.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	r.stdin = stdin
	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start: %w", err)
	}
	return nil
}

func (r *ffmpegRecorder) PushFrame(frame *image.RGBA, ts time.Duration) error {
	if r.stdin == nil {
		return errors.New("ffmpeg recorder not started")
	}
	size := frame.Bounds().Size()
	if size.X != r.cfg.Width || size.Y != r.cfg.Height {
		return fmt.Errorf("frame size %v, want %dx%d", size, r.cfg.Width, r.cfg.Height)
	}
	if r.written == 0 {
		r.first = ts
	}
	want := r.slot(ts-r.first) + 1
	if err := r.repeat(want - 1); err != nil {
		return err
	}
	r.pack(frame)
	r.latest = ts
	return r.writeLast()
}

// slot is the index of the output frame that covers offset d.
func (r *ffmpegRecorder) slot(d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(r.cfg.FPS)))
}

// repeat writes the previous frame until n frames have been written.
func (r *ffmpegRecorder) repeat(n int) error {
	for r.last != nil && r.written < n {
		if err := r.writeLast(); err != nil {
			return err
		}
	}
	return nil
}

func (r *ffmpegRecorder) pack(frame *image.RGBA) {
	size := frame.Bounds().Size()
	rowLen := size.X * 4
	if len(r.last) != rowLen*size.Y {
		r.last = make([]byte, rowLen*size.Y)
	}
	for y := 0; y < size.Y; y++ {
		off := y * frame.Stride
		copy(r.last[y*rowLen:(y+1)*rowLen], frame.Pix[off:off+rowLen])
	}
}

func (r *ffmpegRecorder) writeLast() error {
	if _, err := r.stdin.Write(r.last); err != nil {
		return err
	}
	r.written++
	return nil
}

// pad holds the last frame for one capture interval so the clip lasts as
// long as the recording did.
func (r *ffmpegRecorder) pad() error {
	if r.written == 0 {
		return nil
	}
	return r.repeat(r.slot(r.latest - r.first + r.cfg.FrameInterval))
}

func (r *ffmpegRecorder) Stop() ([]byte, error) {
	if r.cmd == nil {
		return nil, errors.New("ffmpeg recorder not started")
	}
	if err := r.pad(); err != nil {
		r.Abort()
		return nil, fmt.Errorf("ffmpeg pad: %w", err)
	}
	_ = r.stdin.Close()
	if err := r.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(r.stderr.String()))
	}
	if r.stdout.Len() == 0 {
		return nil, errors.New("ffmpeg produced no output")
	}
	return r.stdout.Bytes(), nil
}

func (r *ffmpegRecorder) Abort() {
	if r.cmd == nil || r.cmd.Process == nil {
		return
	}
	if r.stdin != nil {
		_ = r.stdin.Close()
	}
	_ = r.cmd.Process.Kill()
	_ = r.cmd.Wait()
}
