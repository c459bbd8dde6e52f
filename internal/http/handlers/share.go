package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"imagecraft/internal/share"
)

type shareRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

func (a *App) CreateShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := a.decode(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		a.errorT(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
		return
	}
	token, err := share.Encode(share.New(req.URL, req.Prompt, req.Style, a.now()))
	if err != nil {
		a.errorT(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{
		"token": token,
		"link":  share.Link(a.Config.PublicBaseURL, token),
	})
}

func (a *App) ResolveShare(w http.ResponseWriter, r *http.Request) {
	payload, err := share.Decode(chi.URLParam(r, "token"))
	if err != nil {
		a.errorT(w, r, http.StatusNotFound, "invalid_token", "error.not_found")
		return
	}
	a.json(w, http.StatusOK, payload)
}
