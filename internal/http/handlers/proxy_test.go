package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestApp() *App {
	return NewApp(nil, zerolog.Nop())
}

func TestProxyImageMissingURL(t *testing.T) {
	app := newTestApp()
	rec := httptest.NewRecorder()
	app.ProxyImage(rec, httptest.NewRequest(http.MethodGet, "/api/proxy-image", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProxyImageRejectsNonHTTPScheme(t *testing.T) {
	app := newTestApp()
	for _, raw := range []string{"ftp://host/x.png", "file:///etc/passwd", "data:image/png;base64,AAAA", "::bad::"} {
		rec := httptest.NewRecorder()
		target := "/api/proxy-image?url=" + url.QueryEscape(raw)
		app.ProxyImage(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("url %q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestProxyImageUpstreamErrorMapsTo502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	app := newTestApp()
	rec := httptest.NewRecorder()
	target := "/api/proxy-image?url=" + url.QueryEscape(upstream.URL+"/missing.png")
	app.ProxyImage(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestProxyImageStreamsUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer upstream.Close()

	app := newTestApp()
	rec := httptest.NewRecorder()
	target := "/api/proxy-image?url=" + url.QueryEscape(upstream.URL+"/cover.jpg")
	app.ProxyImage(rec, httptest.NewRequest(http.MethodGet, target, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("content-type = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("cors header = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Cache-Control"), "max-age=86400") {
		t.Fatalf("cache-control = %q", rec.Header().Get("Cache-Control"))
	}
	if rec.Body.String() != "jpeg-bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestProxyImageDefaultsContentType(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x89, 0x50})
	}))
	defer upstream.Close()

	app := newTestApp()
	rec := httptest.NewRecorder()
	target := "/api/proxy-image?url=" + url.QueryEscape(upstream.URL+"/raw")
	app.ProxyImage(rec, httptest.NewRequest(http.MethodGet, target, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Fatalf("content-type = %q, want application/octet-stream", got)
	}
}

func TestProxyImagePreflight(t *testing.T) {
	app := newTestApp()
	rec := httptest.NewRecorder()
	app.ProxyImage(rec, httptest.NewRequest(http.MethodOptions, "/api/proxy-image", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
