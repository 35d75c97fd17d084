package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"marketplace/internal/http/handlers"
	"marketplace/internal/metrics"
	"marketplace/internal/middleware"
)

// Options carries the settings the middleware chain needs.
type Options struct {
	JWTSecret       string
	WorkerToken     string
	CORSOrigins     []string
	RateLimitPerMin int
	RateLimitBurst  int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	// StaticDir, when set, is served under /static for locally stored media.
	StaticDir string
	Logger    zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		metrics.InstrumentHandler,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, opts.RateLimitBurst))
			r.Use(middleware.AuthJWT(opts.JWTSecret))

			r.Post("/session", app.StartSession)
			r.Get("/me", app.Me)
			r.Get("/me/ledger", app.MyLedger)

			r.Get("/apps", app.ListApps)
			r.Get("/apps/{appID}", app.GetApp)
			r.Get("/apps/{appID}/recipes", app.ListRecipes)

			r.Post("/jobs", app.SubmitJob)
			r.Get("/jobs", app.ListJobs)
			r.Get("/jobs/{jobID}", app.GetJob)

			r.Post("/creations", app.StartCreation)
			r.Get("/creations", app.ListCreations)
			r.Get("/creations/{creationID}", app.GetCreation)
		})

		r.Route("/internal", func(r chi.Router) {
			r.Use(middleware.WorkerToken(opts.WorkerToken))
			r.Post("/jobs/{jobID}/advance", app.AdvanceJob)
			r.Post("/jobs/{jobID}/progress", app.ReportProgress)
			r.Post("/accounts/{accountID}/grants", app.Grant)
		})
	})

	return r
}
