package handlers

import (
	"net/http"

	"imagecraft/internal/i18n"
	"imagecraft/internal/styles"
)

type styleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Suffix      string `json:"suffix"`
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	lang := string(i18n.FromContext(r.Context()).Lang())
	all := styles.All()
	out := make([]styleResponse, 0, len(all))
	for _, s := range all {
		out = append(out, styleResponse{ID: s.ID, Name: s.Name(lang), Description: s.Description, Suffix: s.EnSuffix})
	}
	a.json(w, http.StatusOK, map[string]any{
		"styles":    out,
		"default":   styles.Default().ID,
		"max_multi": styles.DefaultMaxMulti,
	})
}
