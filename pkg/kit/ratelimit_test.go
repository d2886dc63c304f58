package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIPRateLimiter_BlocksOverLimit(t *testing.T) {
	l := NewIPRateLimiter(3, 60)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over limit: status=%d, want 429", w.Code)
	}

	// a different client is unaffected
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("other ip: status=%d", w.Code)
	}
}

func TestIPRateLimiter_UsesForwardedFor(t *testing.T) {
	l := NewIPRateLimiter(1, 60)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first: status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second from same forwarded ip: status=%d", w.Code)
	}
}
