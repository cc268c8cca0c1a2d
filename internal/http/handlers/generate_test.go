package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"rednote/internal/domain"
)

type generatorStub struct {
	result *domain.GenerateResult
	copy   domain.CopyResult
	err    error
}

func (g *generatorStub) GenerateAll(ctx context.Context, input domain.ProductInput) (*domain.GenerateResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *generatorStub) GenerateCopy(ctx context.Context, input domain.ProductInput) (domain.CopyResult, error) {
	return g.copy, g.err
}

func (g *generatorStub) GenerateVisualStrategy(ctx context.Context, copy domain.CopyResult) (domain.VisualStrategy, error) {
	return domain.VisualStrategy{}, g.err
}

func (g *generatorStub) GenerateImage(ctx context.Context, copy domain.CopyResult, visual domain.VisualStrategy) (string, error) {
	return "/api/proxy-image?url=x", g.err
}

func (g *generatorStub) GenerateLayout(ctx context.Context, copy domain.CopyResult, visual domain.VisualStrategy, backgroundImage string) (domain.LayoutConfig, error) {
	return domain.LayoutConfig{}, g.err
}

func TestGenerateAllHandlerSuccess(t *testing.T) {
	stub := &generatorStub{result: &domain.GenerateResult{
		Copy: domain.CopyResult{ProductID: "P001", Title: "t"},
	}}
	app := NewApp(stub, zerolog.Nop())

	body := `{"product_id":"P001","name":"Cloud Memory Pillow","category":"Home Textiles","price":129,"target_audience":"office workers","features":["memory foam"],"selling_point":"improves sleep quality","tone":"warm/healing"}`
	rec := httptest.NewRecorder()
	app.GenerateAll(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got domain.GenerateResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Copy.ProductID != "P001" {
		t.Fatalf("product_id = %q", got.Copy.ProductID)
	}
}

func TestGenerateAllHandlerBadJSON(t *testing.T) {
	app := NewApp(&generatorStub{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	app.GenerateAll(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateAllHandlerValidationMapsTo400(t *testing.T) {
	stub := &generatorStub{err: fmt.Errorf("%w: tone is out of range", domain.ErrValidation)}
	app := NewApp(stub, zerolog.Nop())
	rec := httptest.NewRecorder()
	app.GenerateAll(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{}")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateAllHandlerUpstreamMapsTo502(t *testing.T) {
	stub := &generatorStub{err: fmt.Errorf("copy stage: %w", domain.ErrNetwork)}
	app := NewApp(stub, zerolog.Nop())
	rec := httptest.NewRecorder()
	app.GenerateAll(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{}")))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload["error"] != "upstream_failed" {
		t.Fatalf("error slug = %q", payload["error"])
	}
}

func TestGenerateLayoutHandlerRequiresBackground(t *testing.T) {
	app := NewApp(&generatorStub{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	body := `{"copy":{},"visual":{}}`
	app.GenerateLayout(rec, httptest.NewRequest(http.MethodPost, "/api/generate/layout", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
