package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{name: "ipv4 with port", remoteAddr: "198.51.100.10:1234", want: "198.51.100.10"},
		{name: "ipv6 with port", remoteAddr: net.JoinHostPort("2001:db8::2", "443"), want: "2001:db8::2"},
		{name: "bare address from RealIP", remoteAddr: "203.0.113.1", want: "203.0.113.1"},
		{name: "bare ipv6", remoteAddr: "2001:db8::1", want: "2001:db8::1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if got := clientKey(req); got != tc.want {
				t.Fatalf("clientKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLimiterWindows(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow("a"); !ok {
			t.Fatalf("hit %d rejected", i+1)
		}
	}
	ok, retry := l.Allow("a")
	if ok || retry != time.Minute {
		t.Fatalf("third hit = %v, retry %v", ok, retry)
	}
	if ok, _ := l.Allow("b"); !ok {
		t.Fatal("other client should have its own window")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow("a"); !ok {
		t.Fatal("new window should admit the client again")
	}
	if got := l.tracked(); got != 1 {
		t.Fatalf("tracked clients = %d, want expired windows swept", got)
	}
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 4)
	for _, addr := range []string{"198.51.100.1:1", "198.51.100.1:2", "198.51.100.1:3", "198.51.100.2:1"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/generate", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			if rec.Header().Get("Retry-After") == "" {
				t.Fatal("expected Retry-After header on rejection")
			}
			if !strings.Contains(rec.Body.String(), `"rate_limited"`) {
				t.Fatalf("rejection body = %q", rec.Body.String())
			}
		}
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(0, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
}
