package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"imagecraft/internal/i18n"
	"imagecraft/internal/metrics"
	imageprov "imagecraft/internal/providers/image"
	"imagecraft/internal/video"
	"imagecraft/internal/watermark"
	"imagecraft/pkg/zip"
)

const maxBundleImages = 8

type exportRequest struct {
	URL     string `json:"url"`
	Persist bool   `json:"persist"`
}

type bundleRequest struct {
	URLs []string `json:"urls"`
}

// Download returns the watermarked PNG of an allowed source image. When the
// mark cannot be rendered the original bytes are sent with a warning header.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := a.decode(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		a.errorT(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
		return
	}
	asset, ok := a.fetchSource(w, r, req.URL)
	if !ok {
		return
	}

	data, mime, name, warned := a.watermarked(r, asset)
	if warned {
		w.Header().Set(warningHeader, i18n.FromContext(r.Context()).T("toast.download.fallback"))
	}
	if req.Persist {
		if key := a.persist(r.Context(), "downloads", name, data, mime); key != "" {
			w.Header().Set(objectHeader, key)
		}
	}
	a.attachment(w, mime, name, data)
}

// Video renders the pan-and-zoom clip of an allowed source image.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := a.decode(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		a.errorT(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
		return
	}
	asset, ok := a.fetchSource(w, r, req.URL)
	if !ok {
		return
	}
	src, err := watermark.Decode(asset.Data)
	if err != nil {
		a.errorT(w, r, http.StatusUnprocessableEntity, "decode_failed", "toast.image.load.error")
		return
	}

	start := time.Now()
	clip, err := a.Exporter.Export(r.Context(), src)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordVideoExport("", err, elapsed)
		switch {
		case r.Context().Err() != nil:
			return
		case errors.Is(err, video.ErrRecordingUnsupported):
			a.errorT(w, r, http.StatusNotImplemented, "recording_unsupported", "toast.video.error")
		default:
			a.log().Error().Err(err).Msg("video export failed")
			a.errorT(w, r, http.StatusInternalServerError, "video_failed", "toast.video.error")
		}
		return
	}
	metrics.RecordVideoExport(clip.MIMEType, nil, elapsed)
	if clip.Stopped {
		a.log().Warn().Int("frames", clip.Frames).Msg("video export stopped by safety timer")
	}

	name := fmt.Sprintf("pollinations-%d%s", a.now().UnixMilli(), video.FileExtension(clip.MIMEType))
	if req.Persist {
		if key := a.persist(r.Context(), "videos", name, clip.Data, clip.MIMEType); key != "" {
			w.Header().Set(objectHeader, key)
		}
	}
	w.Header().Set("X-Imagecraft-Frames", strconv.Itoa(clip.Frames))
	a.attachment(w, clip.MIMEType, name, clip.Data)
}

// Bundle zips the watermarked versions of several images. Images that fail
// to download are skipped and listed in the warning header.
func (a *App) Bundle(w http.ResponseWriter, r *http.Request) {
	var req bundleRequest
	if err := a.decode(r, &req); err != nil || len(req.URLs) == 0 {
		a.errorT(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
		return
	}
	if len(req.URLs) > maxBundleImages {
		a.errorT(w, r, http.StatusBadRequest, "too_many_images", "toast.styles.full")
		return
	}

	var assets []zip.Asset
	var skipped []string
	for i, raw := range req.URLs {
		asset, err := a.Images.Download(r.Context(), raw)
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			skipped = append(skipped, strconv.Itoa(i))
			continue
		}
		data, mime, _, _ := a.watermarked(r, asset)
		ext := ".png"
		if mime != "image/png" {
			ext = extensionForMIME(mime)
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("arabish-image-craft-%02d%s", i+1, ext),
			MIME:     mime,
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.errorT(w, r, http.StatusBadGateway, "image_load", "toast.image.load.error")
		return
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.log().Error().Err(err).Msg("bundle archive failed")
		a.errorT(w, r, http.StatusInternalServerError, "internal", "error.internal")
		return
	}
	if len(skipped) > 0 {
		w.Header().Set(warningHeader, "skipped="+strings.Join(skipped, ","))
	}
	a.attachment(w, "application/zip", fmt.Sprintf("arabish-image-craft-%d.zip", a.now().UnixMilli()), archive)
}

// fetchSource downloads an allowed image and writes the error response itself.
func (a *App) fetchSource(w http.ResponseWriter, r *http.Request, raw string) (*imageprov.Asset, bool) {
	asset, err := a.Images.Download(r.Context(), raw)
	switch {
	case err == nil:
		return asset, true
	case errors.Is(err, imageprov.ErrSourceNotAllowed):
		a.error(w, http.StatusBadRequest, "source_not_allowed", err.Error())
	case r.Context().Err() != nil:
	default:
		a.errorT(w, r, http.StatusBadGateway, "image_load", "toast.image.load.error")
	}
	return nil, false
}

// watermarked returns the stamped PNG, or the untouched source when
// rendering fails. fellBack reports the second case.
func (a *App) watermarked(r *http.Request, asset *imageprov.Asset) (data []byte, mime, name string, fellBack bool) {
	start := time.Now()
	out, err := a.Watermark.ApplyBytes(asset.Data)
	metrics.RecordWatermark(err != nil, time.Since(start).Seconds())
	ms := a.now().UnixMilli()
	if err != nil {
		a.log().Warn().Err(err).Str("request_id", requestID(r)).Msg("watermark failed, sending original")
		mime = asset.MIME
		if mime == "" {
			mime = "application/octet-stream"
		}
		return asset.Data, mime, fmt.Sprintf("pollinations-%d%s", ms, extensionForMIME(mime)), true
	}
	return out, "image/png", fmt.Sprintf("arabish-image-craft-%d.png", ms), false
}

// persist uploads an export when an object store is configured. Failures are
// logged and do not fail the download.
func (a *App) persist(ctx context.Context, prefix, name string, data []byte, mime string) string {
	if a.Exports == nil {
		return ""
	}
	key := fmt.Sprintf("%s/%s/%s-%s", prefix, a.now().UTC().Format("2006/01/02"), uuid.NewString(), name)
	stored, err := a.Exports.Put(ctx, key, data, mime)
	metrics.RecordStorage("put", err)
	if err != nil {
		a.log().Warn().Err(err).Str("key", key).Msg("export upload failed")
		return ""
	}
	return stored
}

func (a *App) attachment(w http.ResponseWriter, mime, name string, data []byte) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func extensionForMIME(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
