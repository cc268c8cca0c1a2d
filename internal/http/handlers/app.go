package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"rednote/internal/domain"
)

// Generator is the pipeline surface the handlers need. The concrete
// implementation is *pipeline.Pipeline; tests substitute stubs.
type Generator interface {
	GenerateAll(ctx context.Context, input domain.ProductInput) (*domain.GenerateResult, error)
	GenerateCopy(ctx context.Context, input domain.ProductInput) (domain.CopyResult, error)
	GenerateVisualStrategy(ctx context.Context, copyResult domain.CopyResult) (domain.VisualStrategy, error)
	GenerateImage(ctx context.Context, copyResult domain.CopyResult, visual domain.VisualStrategy) (string, error)
	GenerateLayout(ctx context.Context, copyResult domain.CopyResult, visual domain.VisualStrategy, backgroundImage string) (domain.LayoutConfig, error)
}

type App struct {
	Gen Generator
	Log zerolog.Logger

	// Proxy is the client used to fetch upstream images; defaults to
	// http.DefaultClient when nil.
	Proxy *http.Client
}

func NewApp(gen Generator, log zerolog.Logger) *App {
	return &App{Gen: gen, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, msg string) {
	a.json(w, code, map[string]string{"error": slug, "message": msg})
}
