package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imagecraft/internal/i18n"
	"imagecraft/internal/pwa"
)

// StatsSummary reports the site's displayed user counters for this hour.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	snap := a.Stats.At(a.now())
	a.json(w, http.StatusOK, map[string]any{
		"total_users":  snap.TotalUsers,
		"active_users": snap.ActiveUsers,
		"hour":         snap.Hour,
	})
}

// Messages returns the UI catalog for the negotiated language.
func (a *App) Messages(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	a.json(w, http.StatusOK, map[string]any{
		"lang":     loc.Lang(),
		"dir":      loc.Dir(),
		"messages": loc.Catalog(),
	})
}

func (a *App) Manifest(w http.ResponseWriter, r *http.Request) {
	m := pwa.NewManifest(i18n.FromContext(r.Context()))
	w.Header().Set("Content-Type", "application/manifest+json")
	w.WriteHeader(http.StatusOK)
	_ = jsonEncoder(w).Encode(m)
}

// InstallHint answers the install button: servers never hold a native
// prompt, so the result is always manual instructions for the browser.
func (a *App) InstallHint(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromContext(r.Context()).Lang()
	installer := pwa.NewInstaller(pwa.ManualPrompter{}, r.UserAgent(), lang)
	if r.URL.Query().Get("standalone") == "true" {
		installer.MarkInstalled()
	}
	res, err := installer.Install(r.Context())
	if err != nil {
		a.errorT(w, r, http.StatusInternalServerError, "internal", "error.internal")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"visible":      installer.Visible(),
		"outcome":      res.Outcome,
		"instructions": res.Instructions,
	})
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
