package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"imagecraft/internal/history"
	"imagecraft/internal/i18n"
	"imagecraft/internal/metrics"
	imageprov "imagecraft/internal/providers/image"
	"imagecraft/internal/styles"
)

type generateRequest struct {
	Prompt string   `json:"prompt"`
	Styles []string `json:"styles"`
	Mode   string   `json:"mode"`
}

type generatedImage struct {
	ID     string `json:"id"`
	Style  string `json:"style"`
	Prompt string `json:"prompt"`
	Seed   int64  `json:"seed"`
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

type generateResponse struct {
	Prompt     string           `json:"prompt"`
	Translated string           `json:"translated"`
	Images     []generatedImage `json:"images"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// Generate translates the prompt and renders it once per selected style.
// Each successful image is appended to the caller's history on its own.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	var req generateRequest
	if err := a.decode(r, &req); err != nil {
		a.errorT(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		a.errorT(w, r, http.StatusBadRequest, "empty_prompt", "toast.empty")
		return
	}

	sel, rejected, err := styles.SelectAll(styles.ParseMode(req.Mode), 0, req.Styles)
	if err != nil {
		a.error(w, http.StatusBadRequest, "unknown_style", err.Error())
		return
	}
	var warnings []string
	if len(rejected) > 0 {
		warnings = append(warnings, loc.T("toast.styles.full"))
	}

	translated := a.translate(r.Context(), prompt)
	reqs := styles.BuildRequests(translated, sel, nil)
	device := deviceID(r)

	results := imageprov.GenerateAll(r.Context(), a.Images, reqs, func(res imageprov.Result) {
		metrics.RecordGeneration(res.Request.StyleID, res.Err)
		if res.Err != nil || device == "" || a.History == nil {
			return
		}
		entry := history.Entry{
			ID:        res.Request.ID,
			URL:       res.Asset.URL,
			PromptAr:  prompt,
			PromptEn:  translated,
			Style:     styleLabel(res.Request.StyleID, loc),
			CreatedAt: a.now().UnixMilli(),
		}
		// Detached so a client disconnect does not lose an image it already paid for.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		defer cancel()
		if _, err := a.History.Add(ctx, device, entry); err != nil {
			a.log().Warn().Err(err).Str("image_id", entry.ID).Msg("history add failed")
		}
	})

	resp := generateResponse{Prompt: prompt, Translated: translated, Warnings: warnings}
	for _, res := range results {
		img := generatedImage{ID: res.Request.ID, Style: res.Request.StyleID, Prompt: res.Request.Prompt, Seed: res.Request.Seed}
		if res.Err != nil {
			img.Error = loc.T("toast.image.load.error")
			if !errors.Is(res.Err, imageprov.ErrImageLoad) {
				a.log().Warn().Err(res.Err).Str("style", res.Request.StyleID).Msg("generation failed")
			}
		} else {
			img.URL, img.Width, img.Height = res.Asset.URL, res.Asset.Width, res.Asset.Height
		}
		resp.Images = append(resp.Images, img)
	}

	failed, cancelled := imageprov.Failed(results)
	if r.Context().Err() != nil && cancelled > 0 {
		return
	}
	if failed+cancelled == len(results) {
		a.errorT(w, r, http.StatusBadGateway, "image_load", "toast.error")
		return
	}
	a.json(w, http.StatusOK, resp)
}

// styleLabel is the display name stored with history entries.
func styleLabel(id string, loc i18n.Localizer) string {
	if s, ok := styles.Lookup(id); ok {
		return s.Name(string(loc.Lang()))
	}
	return id
}

func (a *App) translate(ctx context.Context, text string) string {
	if a.Translator == nil {
		return text
	}
	out, err := a.Translator.TranslateStrict(ctx, text)
	metrics.RecordTranslation(err != nil)
	if err != nil {
		a.log().Debug().Err(err).Msg("translation unavailable, using original prompt")
		return text
	}
	return out
}
