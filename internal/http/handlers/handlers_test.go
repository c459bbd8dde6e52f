package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"imagecraft/internal/apikey"
	"imagecraft/internal/history"
	"imagecraft/internal/i18n"
	"imagecraft/internal/infra"
	imageprov "imagecraft/internal/providers/image"
	"imagecraft/internal/stats"
	"imagecraft/internal/storage"
	"imagecraft/internal/styles"
	"imagecraft/internal/video"
	"imagecraft/internal/watermark"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type stubImages struct {
	mu       sync.Mutex
	data     []byte
	failFor  map[string]bool
	calls    []styles.Request
	proxyErr error
	proxied  []string
}

func (s *stubImages) Generate(_ context.Context, req styles.Request) (*imageprov.Asset, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.failFor[req.StyleID] {
		return nil, fmt.Errorf("%w: status 500", imageprov.ErrImageLoad)
	}
	return &imageprov.Asset{ID: req.ID, StyleID: req.StyleID, URL: "https://image.test/" + req.StyleID, MIME: "image/png", Width: 64, Height: 48, Data: s.data}, nil
}

func (s *stubImages) FetchProxy(_ context.Context, prompt string, w, h int) (*imageprov.Asset, error) {
	s.mu.Lock()
	s.proxied = append(s.proxied, fmt.Sprintf("%s@%dx%d", prompt, w, h))
	s.mu.Unlock()
	if s.proxyErr != nil {
		return nil, s.proxyErr
	}
	return &imageprov.Asset{MIME: "image/png", Data: s.data}, nil
}

func (s *stubImages) Download(_ context.Context, raw string) (*imageprov.Asset, error) {
	if !strings.HasPrefix(raw, "https://image.test/") {
		return nil, fmt.Errorf("%w: %s", imageprov.ErrSourceNotAllowed, raw)
	}
	if strings.HasSuffix(raw, "/broken") {
		return nil, imageprov.ErrImageLoad
	}
	return &imageprov.Asset{URL: raw, MIME: "image/png", Data: s.data}, nil
}

type stubTranslator struct{ err error }

func (s stubTranslator) TranslateStrict(_ context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "A cat playing in the garden", nil
}

type failingWatermark struct{}

func (failingWatermark) ApplyBytes([]byte) ([]byte, error) {
	return nil, watermark.ErrRenderingUnavailable
}

type stubExporter struct {
	err error
}

func (s stubExporter) Export(ctx context.Context, src image.Image) (*video.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &video.Result{Data: []byte("GIF89a"), MIMEType: video.MIMEGIF, Frames: 180}, nil
}

type stubKeys struct {
	issued apikey.Issued
	err    error
	device string
	name   string
}

func (s *stubKeys) Create(_ context.Context, deviceID, name string) (apikey.Issued, error) {
	s.device, s.name = deviceID, name
	return s.issued, s.err
}

type memoryBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (m *memoryBackend) Load(_ context.Context, deviceID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[deviceID], nil
}

func (m *memoryBackend) Save(_ context.Context, deviceID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[deviceID] = append([]byte(nil), data...)
	return nil
}

type memoryStore struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (m *memoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[key] = data
	return key, nil
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.objs[key]; ok {
		return d, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, key)
	return nil
}

func newTestApp(t *testing.T) (*App, *stubImages) {
	t.Helper()
	images := &stubImages{data: pngBytes(t, 64, 48), failFor: map[string]bool{}}
	return &App{
		Config:     &infra.Config{PublicBaseURL: "https://craft.example.com"},
		Logger:     infra.DiscardLogger(),
		Keys:       &stubKeys{},
		Translator: stubTranslator{},
		Images:     images,
		Watermark:  watermark.New(watermark.Options{}),
		Exporter:   stubExporter{},
		History:    history.NewStore(&memoryBackend{docs: map[string][]byte{}}, nil),
		Stats:      stats.NewCalculator(),
		Now:        func() time.Time { return fixedNow },
	}, images
}

func do(t *testing.T, h http.HandlerFunc, method, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	lang := i18n.Arabic
	if header["X-Locale"] == "en" {
		lang = i18n.English
	}
	req = req.WithContext(i18n.WithLocalizer(req.Context(), i18n.New(lang)))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestGenerateAnimeAddsHistory(t *testing.T) {
	app, images := newTestApp(t)
	rec := do(t, app.Generate, http.MethodPost, "/v1/generate",
		map[string]any{"prompt": " قطة تلعب في الحديقة ", "styles": []string{"anime"}, "mode": "single"},
		map[string]string{deviceHeader: "dev-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	decodeJSON(t, rec, &resp)
	want := "A cat playing in the garden, anime style, manga, japanese animation"
	if len(resp.Images) != 1 || resp.Images[0].Prompt != want || resp.Images[0].URL == "" {
		t.Fatalf("images = %+v", resp.Images)
	}
	if len(images.calls) != 1 {
		t.Fatalf("generator calls = %d", len(images.calls))
	}

	entries, err := app.History.List(context.Background(), "dev-1")
	if err != nil || len(entries) != 1 {
		t.Fatalf("history = %+v, %v", entries, err)
	}
	e := entries[0]
	if e.PromptAr != "قطة تلعب في الحديقة" || e.PromptEn != "A cat playing in the garden" || e.Style != "أنمي" || e.CreatedAt != fixedNow.UnixMilli() {
		t.Fatalf("history entry = %+v", e)
	}
}

func TestGeneratePartialFailure(t *testing.T) {
	app, images := newTestApp(t)
	images.failFor["neon"] = true
	rec := do(t, app.Generate, http.MethodPost, "/v1/generate",
		map[string]any{"prompt": "قطة", "styles": []string{"oil", "neon"}, "mode": "multiple"},
		map[string]string{deviceHeader: "dev-2", "X-Locale": "en"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp generateResponse
	decodeJSON(t, rec, &resp)
	if len(resp.Images) != 2 || resp.Images[0].Error != "" || resp.Images[1].Error == "" {
		t.Fatalf("images = %+v", resp.Images)
	}
	entries, _ := app.History.List(context.Background(), "dev-2")
	if len(entries) != 1 || entries[0].Style != "Oil Painting" {
		t.Fatalf("only the successful image belongs in history: %+v", entries)
	}
}

func TestGenerateAllFailedAndTranslationFallback(t *testing.T) {
	app, images := newTestApp(t)
	app.Translator = stubTranslator{err: errors.New("quota")}
	images.failFor[styles.Default().ID] = true
	rec := do(t, app.Generate, http.MethodPost, "/v1/generate", map[string]any{"prompt": "قطة"}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(images.calls) != 1 || !strings.HasPrefix(images.calls[0].Prompt, "قطة, ") {
		t.Fatalf("untranslated prompt expected, got %+v", images.calls)
	}
}

func TestGenerateValidation(t *testing.T) {
	app, _ := newTestApp(t)
	tests := []struct {
		name string
		body any
		code string
	}{
		{name: "empty prompt", body: map[string]any{"prompt": "   "}, code: "empty_prompt"},
		{name: "unknown style", body: map[string]any{"prompt": "x", "styles": []string{"watercolor"}}, code: "unknown_style"},
		{name: "malformed", body: "{", code: "bad_request"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, app.Generate, http.MethodPost, "/v1/generate", tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			var body map[string]errorBody
			decodeJSON(t, rec, &body)
			if body["error"].Code != tc.code || body["error"].Message == "" {
				t.Fatalf("error = %+v", body["error"])
			}
		})
	}
}

func TestGenerateTooManyStylesWarns(t *testing.T) {
	app, images := newTestApp(t)
	ids := []string{"realistic", "anime", "3d", "ultra-realistic", "abstract", "comic", "pop-art", "pencil", "oil"}
	rec := do(t, app.Generate, http.MethodPost, "/v1/generate",
		map[string]any{"prompt": "x", "styles": ids, "mode": "multiple"}, map[string]string{"X-Locale": "en"})
	var resp generateResponse
	decodeJSON(t, rec, &resp)
	if len(images.calls) != 8 || len(resp.Warnings) != 1 || resp.Warnings[0] != "You can select up to 8 styles." {
		t.Fatalf("calls=%d warnings=%v", len(images.calls), resp.Warnings)
	}
}

func TestDownloadWatermarks(t *testing.T) {
	app, _ := newTestApp(t)
	store := &memoryStore{objs: map[string][]byte{}}
	app.Exports = store
	rec := do(t, app.Download, http.MethodPost, "/v1/images/download",
		map[string]any{"url": "https://image.test/a", "persist": true}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/png" || rec.Header().Get(warningHeader) != "" {
		t.Fatalf("headers = %v", rec.Header())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), fmt.Sprintf("arabish-image-craft-%d.png", fixedNow.UnixMilli())) {
		t.Fatalf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil || img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Fatalf("output image = %v, %v", img, err)
	}
	key := rec.Header().Get(objectHeader)
	if !strings.HasPrefix(key, "downloads/2026/03/04/") || store.objs[key] == nil {
		t.Fatalf("object key = %q", key)
	}
}

func TestDownloadFallsBackToOriginal(t *testing.T) {
	app, images := newTestApp(t)
	app.Watermark = failingWatermark{}
	rec := do(t, app.Download, http.MethodPost, "/v1/images/download",
		map[string]any{"url": "https://image.test/a"}, map[string]string{"X-Locale": "en"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(warningHeader); got != "Could not process image, downloading original." {
		t.Fatalf("warning = %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), images.data) {
		t.Fatalf("fallback must send the source bytes unchanged")
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "pollinations-") {
		t.Fatalf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestDownloadRejectsSources(t *testing.T) {
	app, _ := newTestApp(t)
	tests := []struct {
		url    string
		status int
	}{
		{url: "http://169.254.169.254/latest", status: http.StatusBadRequest},
		{url: "https://image.test/broken", status: http.StatusBadGateway},
		{url: "", status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		rec := do(t, app.Download, http.MethodPost, "/v1/images/download", map[string]any{"url": tc.url}, nil)
		if rec.Code != tc.status {
			t.Fatalf("url %q status = %d, want %d", tc.url, rec.Code, tc.status)
		}
	}
}

func TestVideo(t *testing.T) {
	app, _ := newTestApp(t)
	rec := do(t, app.Video, http.MethodPost, "/v1/images/video", map[string]any{"url": "https://image.test/a"}, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != video.MIMEGIF {
		t.Fatalf("status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".gif") {
		t.Fatalf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	app.Exporter = stubExporter{err: video.ErrRecordingUnsupported}
	rec = do(t, app.Video, http.MethodPost, "/v1/images/video", map[string]any{"url": "https://image.test/a"}, map[string]string{"X-Locale": "en"})
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]errorBody
	decodeJSON(t, rec, &body)
	if body["error"].Message != "Could not create video in this browser." {
		t.Fatalf("message = %q", body["error"].Message)
	}
}

func TestBundleSkipsFailures(t *testing.T) {
	app, _ := newTestApp(t)
	rec := do(t, app.Bundle, http.MethodPost, "/v1/images/bundle",
		map[string]any{"urls": []string{"https://image.test/a", "https://image.test/broken", "https://image.test/b"}}, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get(warningHeader) != "skipped=1" {
		t.Fatalf("warning = %q", rec.Header().Get(warningHeader))
	}

	many := make([]string, maxBundleImages+1)
	for i := range many {
		many[i] = "https://image.test/x"
	}
	rec = do(t, app.Bundle, http.MethodPost, "/v1/images/bundle", map[string]any{"urls": many}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized bundle status = %d", rec.Code)
	}
}

func TestShareRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)
	rec := do(t, app.CreateShare, http.MethodPost, "/v1/share",
		map[string]any{"url": "https://image.test/a", "prompt": "قطة", "style": "anime"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var created map[string]string
	decodeJSON(t, rec, &created)
	if created["link"] != "https://craft.example.com/image/"+created["token"] {
		t.Fatalf("link = %q", created["link"])
	}

	r := chi.NewRouter()
	r.Get("/v1/share/{token}", app.ResolveShare)
	req := httptest.NewRequest(http.MethodGet, "/v1/share/"+created["token"], nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", res.Code)
	}
	var payload map[string]any
	decodeJSON(t, res, &payload)
	if payload["prompt"] != "قطة" || payload["style"] != "anime" || payload["timestamp"].(float64) != float64(fixedNow.UnixMilli()) {
		t.Fatalf("payload = %v", payload)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/share/not-a-token", nil)
	res = httptest.NewRecorder()
	r.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("invalid token status = %d", res.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	r := chi.NewRouter()
	r.Get("/v1/history", app.ListHistory)
	r.Post("/v1/history", app.AddHistory)
	r.Delete("/v1/history", app.ClearHistory)
	r.Delete("/v1/history/{id}", app.RemoveHistory)

	call := func(method, target, body string, device string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if device != "" {
			req.Header.Set(deviceHeader, device)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := call(http.MethodGet, "/v1/history", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing device status = %d", rec.Code)
	}
	if rec := call(http.MethodPost, "/v1/history", `{"id":"a","url":"https://image.test/a","promptAr":"قطة"}`, "dev"); rec.Code != http.StatusOK {
		t.Fatalf("add status = %d", rec.Code)
	}
	if rec := call(http.MethodPost, "/v1/history", `{"id":"b","url":"https://image.test/b","promptAr":"كلب","createdAt":1}`, "dev"); rec.Code != http.StatusOK {
		t.Fatalf("add status = %d", rec.Code)
	}
	if rec := call(http.MethodPost, "/v1/history", `{"id":"","url":""}`, "dev"); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid entry status = %d", rec.Code)
	}

	rec := call(http.MethodGet, "/v1/history", "", "dev")
	var list struct {
		Items []history.Entry `json:"items"`
	}
	decodeJSON(t, rec, &list)
	if len(list.Items) != 2 || list.Items[0].ID != "a" {
		t.Fatalf("items = %+v", list.Items)
	}

	rec = call(http.MethodDelete, "/v1/history/a", "", "dev")
	decodeJSON(t, rec, &list)
	if len(list.Items) != 1 || list.Items[0].ID != "b" {
		t.Fatalf("after remove = %+v", list.Items)
	}

	if rec := call(http.MethodDelete, "/v1/history", "", "dev"); rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}
	rec = call(http.MethodGet, "/v1/history", "", "dev")
	if strings.TrimSpace(rec.Body.String()) != `{"items":[]}` {
		t.Fatalf("after clear = %s", rec.Body.String())
	}
}

func TestCreateAPIKey(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		device  string
		body    string
		keys    *stubKeys
		status  int
		wantErr string
	}{
		{name: "missing device", keys: &stubKeys{}, status: http.StatusBadRequest, wantErr: "x-device-id header is required"},
		{name: "insert rejected", device: "dev", keys: &stubKeys{err: fmt.Errorf("apikey: insert: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key"})}, status: http.StatusBadRequest, wantErr: "duplicate key"},
		{name: "unexpected", device: "dev", keys: &stubKeys{err: errors.New("entropy")}, status: http.StatusInternalServerError, wantErr: "Unexpected error"},
		{name: "ok without body", device: "dev", keys: &stubKeys{issued: apikey.Issued{APIKey: "arc_live_abcdefgh_xyz", Prefix: "abcdefgh", CreatedAt: created}}, status: http.StatusOK},
		{name: "ok with name", device: "dev", body: `{"name":"laptop"}`, keys: &stubKeys{issued: apikey.Issued{APIKey: "arc_live_abcdefgh_xyz", Prefix: "abcdefgh", CreatedAt: created}}, status: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			app.Keys = tc.keys
			header := map[string]string{}
			if tc.device != "" {
				header[deviceHeader] = tc.device
			}
			var body any
			if tc.body != "" {
				body = tc.body
			}
			rec := do(t, app.CreateAPIKey, http.MethodPost, "/functions/create_api_key", body, header)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if tc.wantErr != "" {
				var e map[string]string
				decodeJSON(t, rec, &e)
				if e["error"] != tc.wantErr {
					t.Fatalf("error = %q, want %q", e["error"], tc.wantErr)
				}
				return
			}
			var resp map[string]string
			decodeJSON(t, rec, &resp)
			if resp["apiKey"] != "arc_live_abcdefgh_xyz" || resp["prefix"] != "abcdefgh" || resp["created_at"] != "2026-01-01T00:00:00Z" {
				t.Fatalf("response = %v", resp)
			}
			if tc.body != "" && tc.keys.name != "laptop" {
				t.Fatalf("name = %q", tc.keys.name)
			}
		})
	}
}

func TestGenerateImage(t *testing.T) {
	app, images := newTestApp(t)
	tests := []struct {
		name    string
		body    string
		status  int
		wantErr string
	}{
		{name: "missing prompt", body: `{}`, status: http.StatusBadRequest, wantErr: "Missing prompt"},
		{name: "non-string prompt", body: `{"prompt": 42}`, status: http.StatusBadRequest, wantErr: "Missing prompt"},
		{name: "bad json", body: `{`, status: http.StatusBadRequest, wantErr: "Invalid JSON body"},
		{name: "ok", body: `{"prompt":"a cat","width":4000}`, status: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, app.GenerateImage, http.MethodPost, "/functions/generate_image", tc.body, nil)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var resp map[string]string
			decodeJSON(t, rec, &resp)
			if tc.wantErr != "" {
				if resp["error"] != tc.wantErr {
					t.Fatalf("error = %q", resp["error"])
				}
				return
			}
			if !strings.HasPrefix(resp["image"], "data:image/png;base64,") {
				t.Fatalf("image = %.40q", resp["image"])
			}
		})
	}
	if len(images.proxied) != 1 || images.proxied[0] != "a cat@1536x1024" {
		t.Fatalf("proxied = %v", images.proxied)
	}

	images.proxyErr = imageprov.ErrImageLoad
	rec := do(t, app.GenerateImage, http.MethodPost, "/functions/generate_image", `{"prompt":"a cat"}`, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("upstream failure status = %d", rec.Code)
	}
}

func TestSiteEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	rec := do(t, app.StatsSummary, http.MethodGet, "/v1/stats", nil, nil)
	var snap map[string]int64
	decodeJSON(t, rec, &snap)
	want := app.Stats.At(fixedNow)
	if snap["total_users"] != want.TotalUsers || snap["active_users"] != want.ActiveUsers {
		t.Fatalf("stats = %v, want %+v", snap, want)
	}

	rec = do(t, app.Messages, http.MethodGet, "/v1/i18n", nil, map[string]string{"X-Locale": "en"})
	var cat struct {
		Lang     string            `json:"lang"`
		Dir      string            `json:"dir"`
		Messages map[string]string `json:"messages"`
	}
	decodeJSON(t, rec, &cat)
	if cat.Lang != "en" || cat.Dir != "ltr" || cat.Messages["button.download"] != "Download" {
		t.Fatalf("catalog = %+v", cat)
	}

	rec = do(t, app.Manifest, http.MethodGet, "/manifest.webmanifest", nil, nil)
	if rec.Header().Get("Content-Type") != "application/manifest+json" {
		t.Fatalf("manifest type = %q", rec.Header().Get("Content-Type"))
	}

	rec = do(t, app.InstallHint, http.MethodGet, "/v1/install-hint", nil, map[string]string{"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1"})
	var hint map[string]any
	decodeJSON(t, rec, &hint)
	if hint["outcome"] != "manual" || hint["instructions"] == "" || hint["visible"] != true {
		t.Fatalf("hint = %v", hint)
	}

	rec = do(t, app.Styles, http.MethodGet, "/v1/styles", nil, map[string]string{"X-Locale": "en"})
	var st struct {
		Styles  []styleResponse `json:"styles"`
		Default string          `json:"default"`
	}
	decodeJSON(t, rec, &st)
	if len(st.Styles) != 15 || st.Styles[1].Name != "Anime" || st.Default != "realistic" {
		t.Fatalf("styles = %+v", st)
	}
}
