package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCredentialFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"api key header", map[string]string{"X-API-Key": " abc "}, "abc"},
		{"bearer fallback", map[string]string{"Authorization": "Bearer xyz"}, "xyz"},
		{"api key wins", map[string]string{"X-API-Key": "abc", "Authorization": "Bearer xyz"}, "abc"},
		{"non bearer ignored", map[string]string{"Authorization": "Basic Zm9v"}, ""},
		{"none", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.expected, CredentialFromRequest(req))
		})
	}
}

func TestCredentialMiddleware(t *testing.T) {
	var got string
	h := Credential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetCredential(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "secret")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "secret", got)
	assert.Empty(t, GetCredential(context.Background()))
}

func TestRequestID(t *testing.T) {
	var ctxID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = chimw.GetReqID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, ctxID)
	assert.Equal(t, ctxID, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", ctxID)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:8501/")(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/generate", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8501", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverer(t *testing.T) {
	h := RequestID(Recoverer(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["error"]["code"])
	assert.NotEmpty(t, body["error"]["request_id"])
}

func TestRequestLogger_OmitsCredential(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestLogger(log)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
	req.Header.Set("X-API-Key", "super-secret")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"path":"/api/v1/generate"`)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.NotContains(t, buf.String(), "super-secret")
}

func TestMemoryLimiter(t *testing.T) {
	rl := NewMemoryLimiter(2, time.Minute)
	defer rl.Close()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = rl.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow(ctx, "a")
	assert.True(t, ok, "new window")
}

type stubLimiter struct {
	allow bool
	err   error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.allow, s.err }

func TestRateLimitMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	RateLimit(stubLimiter{allow: false}, discardLogger())(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	rec = httptest.NewRecorder()
	RateLimit(stubLimiter{err: assert.AnError}, discardLogger())(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip:10.0.0.1", RateLimitKey(req))

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.1:5678"
	assert.Equal(t, RateLimitKey(req), RateLimitKey(other))

	other.RemoteAddr = "[::1]:443"
	assert.Equal(t, "ip:::1", RateLimitKey(other))

	other.RemoteAddr = "unix-socket"
	assert.Equal(t, "ip:unix-socket", RateLimitKey(other))

	req.Header.Set("X-API-Key", "secret")
	key := RateLimitKey(req)
	assert.Regexp(t, `^key:[0-9a-f]{16}$`, key)
	assert.NotContains(t, key, "secret")
}

// Runs against a live server when DECODED_TEST_REDIS_URL is set.
func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("DECODED_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DECODED_TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	rl := NewRedisLimiter(client, 2, time.Minute)
	rl.prefix = "decoded:test:" + time.Now().Format("150405.000000") + ":"
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
