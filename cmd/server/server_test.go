package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAnalyzable(t *testing.T) {
	cases := []struct {
		mime string
		want bool
	}{
		{"application/pdf", true},
		{"image/png", true},
		{"image/jpeg", true},
		{"image/tiff", true},
		{"text/html; charset=utf-8", false},
		{"application/zip", false},
	}
	for _, c := range cases {
		if got := isAnalyzable(c.mime); got != c.want {
			t.Fatalf("isAnalyzable(%q) = %v, want %v", c.mime, got, c.want)
		}
	}
}

func TestWithInternalAuth(t *testing.T) {
	cfg.InternalSharedSecret = "0123456789abcdef0123456789abcdef"

	called := false
	h := withInternalAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/invoke", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("expected missing header to be rejected, code=%d called=%v", rec.Code, called)
	}

	req = httptest.NewRequest(http.MethodPost, "/invoke", nil)
	req.Header.Set("X-Internal-Auth", cfg.InternalSharedSecret)
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected matching secret to pass, code=%d called=%v", rec.Code, called)
	}
}

func TestSanitizeLogStringStripsNewlines(t *testing.T) {
	if got := sanitizeLogString("a\nb\rc"); got != "abc" {
		t.Fatalf("expected newlines stripped, got %q", got)
	}
}

func TestWithMethodRejectsOtherVerbs(t *testing.T) {
	h := withMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/invoke", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow header, got %q", rec.Header().Get("Allow"))
	}
}
