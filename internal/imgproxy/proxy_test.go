package imgproxy

import (
	"net/url"
	"testing"
)

func TestToProxyImageURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"http wrapped", "https://img.example.com/a.png", Path + "?url=" + url.QueryEscape("https://img.example.com/a.png")},
		{"relative untouched", "/static/a.png", "/static/a.png"},
		{"data untouched", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"blob untouched", "blob:https://app/123", "blob:https://app/123"},
		{"already proxied untouched", Path + "?url=x", Path + "?url=x"},
		{"unsupported scheme untouched", "ftp://host/a.png", "ftp://host/a.png"},
		{"garbage untouched", "http://%zz", "http://%zz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToProxyImageURL(tc.in); got != tc.want {
				t.Fatalf("ToProxyImageURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestToProxyImageURLIdempotent(t *testing.T) {
	once := ToProxyImageURL("https://cdn.example.com/cover.png?sig=abc")
	twice := ToProxyImageURL(once)
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}
