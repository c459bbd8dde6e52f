package pwa

import "imagecraft/internal/i18n"

// Icon is a web manifest icon entry.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest is the subset of the web app manifest the app serves.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope"`
	Display         string `json:"display"`
	Orientation     string `json:"orientation"`
	Lang            string `json:"lang"`
	Dir             string `json:"dir"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
	Icons           []Icon `json:"icons"`
}

// NewManifest builds the manifest in the localizer's language.
func NewManifest(l i18n.Localizer) Manifest {
	return Manifest{
		Name:            l.T("site.title"),
		ShortName:       "AIC",
		Description:     l.T("site.subtitle"),
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		Orientation:     "portrait",
		Lang:            string(l.Lang()),
		Dir:             l.Dir(),
		BackgroundColor: "#0b0b0f",
		ThemeColor:      "#7c3aed",
		Icons: []Icon{
			{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/icons/icon-512.png", Sizes: "512x512", Type: "image/png"},
			{Src: "/icons/icon-512-maskable.png", Sizes: "512x512", Type: "image/png", Purpose: "maskable"},
		},
	}
}
