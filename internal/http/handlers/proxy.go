package handlers

import (
	"io"
	"net/http"
	"net/url"
)

const proxyCacheControl = "public, max-age=86400, s-maxage=86400, stale-while-revalidate=43200"

// ProxyImage streams a remote image through the API origin so the browser
// canvas can read generated backgrounds without tainting. Only http and
// https upstreams are allowed.
func (a *App) ProxyImage(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	raw := r.URL.Query().Get("url")
	if raw == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url query parameter required")
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		a.error(w, http.StatusBadRequest, "bad_request", "only http and https urls are allowed")
		return
	}

	client := a.Proxy
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid upstream url")
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		a.Log.Warn().Err(err).Str("url", target.String()).Msg("image proxy upstream unreachable")
		a.error(w, http.StatusBadGateway, "upstream_failed", "failed to fetch image")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.Log.Warn().Int("status", resp.StatusCode).Str("url", target.String()).Msg("image proxy upstream error")
		a.error(w, http.StatusBadGateway, "upstream_failed", "upstream returned an error")
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", proxyCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, resp.Body)
}
