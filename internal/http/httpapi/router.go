package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"imagecraft/internal/http/handlers"
	"imagecraft/internal/i18n"
	"imagecraft/internal/middleware"
)

// Options wires the cross-cutting pieces that are not handler dependencies.
type Options struct {
	Keys       middleware.KeyValidator
	KeyLimiter middleware.KeyLimiter
	Country    middleware.CountryLookup
	// IPRateLimit caps generation calls per client IP and minute; 0 disables it.
	IPRateLimit    int
	AllowedOrigins []string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(i18n.Default, opts.Country),
	)
	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Handle("/metrics", handlers.MetricsHandler())
	r.Get("/manifest.webmanifest", app.Manifest)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/styles", app.Styles)
		r.Get("/stats", app.StatsSummary)
		r.Get("/i18n", app.Messages)
		r.Get("/install-hint", app.InstallHint)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.IPRateLimit, time.Minute))
			r.Post("/generate", app.Generate)
			r.Post("/images/download", app.Download)
			r.Post("/images/video", app.Video)
			r.Post("/images/bundle", app.Bundle)
		})

		r.Post("/share", app.CreateShare)
		r.Get("/share/{token}", app.ResolveShare)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", app.ListHistory)
			r.Post("/", app.AddHistory)
			r.Delete("/", app.ClearHistory)
			r.Delete("/{id}", app.RemoveHistory)
		})
	})

	r.Route("/functions", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.IPRateLimit, time.Minute)).Post("/create_api_key", app.CreateAPIKey)
		r.With(middleware.APIKey(opts.Keys, opts.KeyLimiter, app.Logger)).Post("/generate_image", app.GenerateImage)
	})

	return r
}
