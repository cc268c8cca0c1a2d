package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"rednote/internal/http/handlers"
	"rednote/internal/infra"
	"rednote/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Log),
		middleware.CORS(cfg.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).Route("/generate", func(r chi.Router) {
			r.Post("/", app.GenerateAll)
			r.Post("/copy", app.GenerateCopy)
			r.Post("/visual", app.GenerateVisual)
			r.Post("/image", app.GenerateImage)
			r.Post("/layout", app.GenerateLayout)
		})
		r.Get("/proxy-image", app.ProxyImage)
		r.Options("/proxy-image", app.ProxyImage)
	})

	return r
}
