package handlers

import (
	"context"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"imagecraft/internal/apikey"
	"imagecraft/internal/history"
	"imagecraft/internal/i18n"
	"imagecraft/internal/infra"
	"imagecraft/internal/middleware"
	imageprov "imagecraft/internal/providers/image"
	"imagecraft/internal/stats"
	"imagecraft/internal/storage"
	"imagecraft/internal/video"
)

const (
	maxJSONBody   = 1 << 20
	deviceHeader  = "X-Device-ID"
	warningHeader = "X-Imagecraft-Warning"
	objectHeader  = "X-Imagecraft-Object-Key"
)

// KeyIssuer creates API keys for a device.
type KeyIssuer interface {
	Create(ctx context.Context, deviceID, name string) (apikey.Issued, error)
}

// Translator turns the user's prompt into the generation language.
type Translator interface {
	TranslateStrict(ctx context.Context, text string) (string, error)
}

// ImageSource generates and fetches images from the upstream service.
type ImageSource interface {
	imageprov.Generator
	FetchProxy(ctx context.Context, prompt string, width, height int) (*imageprov.Asset, error)
	Download(ctx context.Context, raw string) (*imageprov.Asset, error)
}

// Watermarker stamps the product mark onto encoded images.
type Watermarker interface {
	ApplyBytes(data []byte) ([]byte, error)
}

// VideoExporter renders a still into a short clip.
type VideoExporter interface {
	Export(ctx context.Context, src image.Image) (*video.Result, error)
}

// App carries the dependencies shared by every handler.
type App struct {
	Config     *infra.Config
	Logger     *infra.Logger
	Keys       KeyIssuer
	Translator Translator
	Images     ImageSource
	Watermark  Watermarker
	Exporter   VideoExporter
	History    *history.Store
	// Exports is optional; without it downloads are never persisted.
	Exports storage.Store
	Stats   *stats.Calculator
	Now     func() time.Time
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = jsonEncoder(w).Encode(v)
}

// jsonEncoder keeps Arabic text and URLs readable in responses.
func jsonEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: msg}})
}

// errorT is error with a message from the request's language catalog.
func (a *App) errorT(w http.ResponseWriter, r *http.Request, code int, errCode, key string) {
	a.error(w, code, errCode, i18n.FromContext(r.Context()).T(key))
}

// functionError is the flat {"error": "..."} shape of the /functions endpoints.
func (a *App) functionError(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

func (a *App) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	return dec.Decode(v)
}

func (a *App) log() *infra.Logger {
	if a.Logger == nil {
		return infra.DiscardLogger()
	}
	return a.Logger
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func deviceID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(deviceHeader))
}

func requestID(r *http.Request) string {
	return middleware.RequestIDFromContext(r.Context())
}
