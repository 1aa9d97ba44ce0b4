package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/katalux/roofers-landing/pkg/logging"
	"github.com/redis/go-redis/v9"
)

func TestRateLimiterTokenBucket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, 2)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow(ctx, "203.0.113.1"); !ok {
			t.Fatalf("request %d should be within burst", i)
		}
	}
	if ok, _ := rl.Allow(ctx, "203.0.113.1"); ok {
		t.Fatal("expected burst to be exhausted")
	}
	if ok, _ := rl.Allow(ctx, "203.0.113.2"); !ok {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if ok, _ := rl.Allow(ctx, "203.0.113.1"); !ok {
		t.Fatal("expected a token after one second")
	}
}

func TestRateLimiterEvictsStaleBuckets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, 1)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	_, _ = rl.Allow(ctx, "203.0.113.1")

	rl.evictBefore(now.Add(time.Minute))
	if len(rl.buckets) != 0 {
		t.Fatalf("expected buckets evicted, got %d", len(rl.buckets))
	}
}

type staticLimiter struct {
	allowed bool
	err     error
}

func (s staticLimiter) Allow(context.Context, string) (bool, error) {
	return s.allowed, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name    string
		limiter Limiter
		want    int
	}{
		{"allowed", staticLimiter{allowed: true}, http.StatusOK},
		{"denied", staticLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter error fails open", staticLimiter{err: errors.New("redis down")}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/forms/heroForm", nil)
			rec := httptest.NewRecorder()
			RateLimit(tc.limiter, logging.Discard())(next).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/forms/heroForm", nil)
	req.RemoteAddr = "198.51.100.4:5123"
	if got := ClientIP(req); got != "198.51.100.4" {
		t.Fatalf("expected host only, got %q", got)
	}
	req.Header.Set("X-Real-Ip", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "203.0.113.10")
	if got := ClientIP(req); got != "198.51.100.4" {
		t.Fatalf("client-sent proxy headers must not pick the key, got %q", got)
	}
	req.RemoteAddr = "198.51.100.4"
	if got := ClientIP(req); got != "198.51.100.4" {
		t.Fatalf("expected bare address, got %q", got)
	}
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	limiter := NewRedisRateLimiter(client, 2, time.Minute)
	now := time.Date(2026, 10, 19, 12, 0, 10, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "203.0.113.1")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	ok, err := limiter.Allow(ctx, "203.0.113.1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("expected third request in window to be denied")
	}

	now = now.Add(time.Minute)
	if ok, _ := limiter.Allow(ctx, "203.0.113.1"); !ok {
		t.Fatal("expected a fresh window to allow the request")
	}
	if len(mr.Keys()) != 2 {
		t.Fatalf("expected one key per window, got %v", mr.Keys())
	}
}

func TestRedisRateLimiterUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	if _, err := NewRedisRateLimiter(client, 1, time.Second).Allow(context.Background(), "203.0.113.1"); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
