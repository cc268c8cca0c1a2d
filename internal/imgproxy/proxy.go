// Package imgproxy rewrites remote image URLs through the same-origin
// proxy route so the canvas can be rasterized without CORS taint.
package imgproxy

import (
	"net/url"
	"strings"
)

// Path is the proxy route the HTTP layer mounts.
const Path = "/api/proxy-image"

// ToProxyImageURL wraps a remote http/https URL with the local proxy.
// Already-proxied, relative, data: and blob: URLs pass through, as does
// anything that fails to parse; the rewrite is idempotent.
func ToProxyImageURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, Path) {
		return raw
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "blob:") {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return raw
	}
	return Path + "?url=" + url.QueryEscape(parsed.String())
}
