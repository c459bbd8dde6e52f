package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"imagecraft/internal/apikey"
	"imagecraft/internal/metrics"
	"imagecraft/internal/middleware"
	imageprov "imagecraft/internal/providers/image"
)

type createKeyRequest struct {
	Name string `json:"name"`
}

type createKeyResponse struct {
	APIKey    string    `json:"apiKey"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"created_at"`
}

type generateImageRequest struct {
	Prompt any `json:"prompt"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CreateAPIKey issues a key bound to the x-device-id header. The plain key
// is returned once; only its hash is stored.
func (a *App) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	device := deviceID(r)
	if device == "" {
		metrics.RecordAPIKey("create", "bad_request")
		a.functionError(w, http.StatusBadRequest, "x-device-id header is required")
		return
	}
	var req createKeyRequest
	// The body is optional; a missing or malformed one means no name.
	_ = a.decode(r, &req)

	issued, err := a.Keys.Create(r.Context(), device, req.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, apikey.ErrDeviceRequired):
			metrics.RecordAPIKey("create", "bad_request")
			a.functionError(w, http.StatusBadRequest, "x-device-id header is required")
		case errors.As(err, &pgErr):
			metrics.RecordAPIKey("create", "rejected")
			a.log().Warn().Err(err).Str("device_id", device).Msg("api key insert rejected")
			a.functionError(w, http.StatusBadRequest, pgErr.Message)
		default:
			metrics.RecordAPIKey("create", "error")
			a.log().Error().Err(err).Str("request_id", requestID(r)).Msg("create api key failed")
			a.functionError(w, http.StatusInternalServerError, "Unexpected error")
		}
		return
	}
	metrics.RecordAPIKey("create", "ok")
	a.json(w, http.StatusOK, createKeyResponse{APIKey: issued.APIKey, Prefix: issued.Prefix, CreatedAt: issued.CreatedAt})
}

// GenerateImage is the keyed proxy: it fetches one image for the prompt,
// stamps it and returns it inline as a data URI. Authentication and the
// per-key rate limit run in middleware before this handler.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := a.decode(r, &req); err != nil {
		a.functionError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	prompt, ok := req.Prompt.(string)
	if !ok || strings.TrimSpace(prompt) == "" {
		a.functionError(w, http.StatusBadRequest, "Missing prompt")
		return
	}

	asset, err := a.Images.FetchProxy(r.Context(), prompt, imageprov.ClampDimension(req.Width), imageprov.ClampDimension(req.Height))
	metrics.RecordGeneration("proxy", err)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		a.log().Warn().Err(err).Str("request_id", requestID(r)).Msg("proxy generation failed")
		a.functionError(w, http.StatusBadGateway, "Image generation failed")
		return
	}

	start := time.Now()
	png, err := a.Watermark.ApplyBytes(asset.Data)
	metrics.RecordWatermark(err != nil, time.Since(start).Seconds())
	mime := "image/png"
	if err != nil {
		a.log().Warn().Err(err).Msg("watermark failed, returning original image")
		png, mime = asset.Data, asset.MIME
	}

	if rec, ok := middleware.APIKeyFromContext(r.Context()); ok {
		a.log().Info().Str("key_prefix", rec.Prefix).Int("bytes", len(png)).Msg("proxy image served")
	}
	a.json(w, http.StatusOK, map[string]string{
		"image": "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(png),
	})
}

// MethodNotAllowed answers wrong methods on any route.
func (a *App) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	a.functionError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.errorT(w, r, http.StatusNotFound, "not_found", "error.not_found")
}
