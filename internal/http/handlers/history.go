package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"imagecraft/internal/history"
)

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	device, ok := a.requireDevice(w, r)
	if !ok {
		return
	}
	entries, err := a.History.List(r.Context(), device)
	a.historyResult(w, r, entries, err)
}

func (a *App) AddHistory(w http.ResponseWriter, r *http.Request) {
	device, ok := a.requireDevice(w, r)
	if !ok {
		return
	}
	var e history.Entry
	if err := a.decode(r, &e); err != nil {
		a.errorT(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
		return
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = a.now().UnixMilli()
	}
	entries, err := a.History.Add(r.Context(), device, e)
	a.historyResult(w, r, entries, err)
}

func (a *App) RemoveHistory(w http.ResponseWriter, r *http.Request) {
	device, ok := a.requireDevice(w, r)
	if !ok {
		return
	}
	entries, err := a.History.Remove(r.Context(), device, chi.URLParam(r, "id"))
	a.historyResult(w, r, entries, err)
}

func (a *App) ClearHistory(w http.ResponseWriter, r *http.Request) {
	device, ok := a.requireDevice(w, r)
	if !ok {
		return
	}
	if err := a.History.Clear(r.Context(), device); err != nil {
		a.historyResult(w, r, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) requireDevice(w http.ResponseWriter, r *http.Request) (string, bool) {
	device := deviceID(r)
	if device == "" {
		a.error(w, http.StatusBadRequest, "device_required", "x-device-id header is required")
		return "", false
	}
	return device, true
}

func (a *App) historyResult(w http.ResponseWriter, r *http.Request, entries []history.Entry, err error) {
	switch {
	case err == nil:
		if entries == nil {
			entries = []history.Entry{}
		}
		a.json(w, http.StatusOK, map[string]any{"items": entries})
	case errors.Is(err, history.ErrInvalidEntry), errors.Is(err, history.ErrDeviceRequired):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		a.log().Error().Err(err).Str("request_id", requestID(r)).Msg("history backend failed")
		a.errorT(w, r, http.StatusInternalServerError, "internal", "error.internal")
	}
}
