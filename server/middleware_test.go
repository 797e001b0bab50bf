package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTokenCost(t *testing.T) {
	tests := []struct {
		path     string
		expected int64
	}{
		{"/health", 5},
		{"/metrics", 0},
		{"/v1/profiles/Ozempic", 50},
		{"/v1/conditions/diabetes", 400},
		{"/v1/applications/NDA211675/patents", 20},
		{"/v1/applications/NDA211675/exclusivities", 20},
		{"/anything/else", 20},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := TokenCost(tt.path); got != tt.expected {
				t.Errorf("TokenCost(%s) = %d, want %d", tt.path, got, tt.expected)
			}
		})
	}
}

func TestRateLimiterRejectsExpensiveBursts(t *testing.T) {
	rl := NewRateLimiter(1, 1000)
	h := rl.Middleware(okHandler())

	// 1000 tokens pay for two condition scans but not a third
	for i := 0; i < 2; i++ {
		if rec := serve(h, http.MethodGet, "/v1/conditions/diabetes", nil); rec.Code != http.StatusOK {
			t.Fatalf("scan %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := serve(h, http.MethodGet, "/v1/conditions/diabetes", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected no remaining tokens, got %s", rec.Header().Get("X-RateLimit-Remaining"))
	}
	if !strings.Contains(rec.Body.String(), "Rate limit exceeded") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 100)
	h := RealIPMiddleware(rl.Middleware(okHandler()))

	first := map[string]string{"X-Forwarded-For": "10.0.0.1, 172.16.0.1"}
	second := map[string]string{"X-Forwarded-For": "10.0.0.2"}

	if rec := serve(h, http.MethodGet, "/v1/profiles/Ozempic", first); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/v1/profiles/Ozempic", first); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/v1/profiles/Ozempic", first); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the exhausted client, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/v1/profiles/Ozempic", second); rec.Code != http.StatusOK {
		t.Errorf("other clients keep their own bucket, got %d", rec.Code)
	}

	rl.mu.RLock()
	_, ok := rl.clients["10.0.0.1"]
	rl.mu.RUnlock()
	if !ok {
		t.Error("expected the first forwarded address to key the bucket")
	}
}

func TestRateLimiterRemoveIdle(t *testing.T) {
	rl := NewRateLimiter(1, 100)
	rl.getBucket("idle")
	rl.getBucket("busy").TakeAvailable(50)

	if removed := rl.removeIdle(); removed != 1 {
		t.Errorf("expected one idle bucket removed, got %d", removed)
	}

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if _, ok := rl.clients["busy"]; !ok {
		t.Error("busy bucket must be kept")
	}
	if _, ok := rl.clients["idle"]; ok {
		t.Error("idle bucket must be removed")
	}
}

func TestNewRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	if rl.rate != DefaultBucketRate || rl.capacity != DefaultBucketCapacity {
		t.Errorf("expected defaults, got rate=%v capacity=%d", rl.rate, rl.capacity)
	}
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 10.1.1.1 , 10.2.2.2"}, "10.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.3.3.3"}, "10.3.3.3"},
		{"no headers", nil, "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.RemoteAddr
			}))
			serve(h, http.MethodGet, "/", tt.headers)

			if seen != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, seen)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	h := RequestSizeMiddleware(64, 128)(okHandler())

	body := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}

	rec = serve(h, http.MethodGet, "/", map[string]string{"X-Padding": strings.Repeat("y", 200)})
	if rec.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Errorf("expected 431, got %d", rec.Code)
	}

	rec = serve(h, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for a small request, got %d", rec.Code)
	}
}

func TestClientKey(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1:1234": "192.0.2.1",
		"[::1]:8080":     "::1",
		"10.0.0.1":       "10.0.0.1",
	}
	for in, expected := range tests {
		if got := clientKey(in); got != expected {
			t.Errorf("clientKey(%q) = %q, want %q", in, got, expected)
		}
	}
}
