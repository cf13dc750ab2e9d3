package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type httpObservation struct {
	method, route string
	status        int
}

type recordingMetrics struct {
	mu       sync.Mutex
	observed []httpObservation
	limited  int
}

func (m *recordingMetrics) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = append(m.observed, httpObservation{method, route, status})
}

func (m *recordingMetrics) RateLimited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limited++
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mark("a"), mark("b")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "abc-123", seen)
}

func TestRecover(t *testing.T) {
	h := Recover(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() { h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32))))

	var tooLarge *http.MaxBytesError
	assert.True(t, errors.As(readErr, &tooLarge))
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &recordingMetrics{}
	router := mux.NewRouter()
	router.Use(MetricsMiddleware(m))
	router.HandleFunc("/reservations/{reservationId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reservations/r1", nil))

	require.Len(t, m.observed, 1)
	assert.Equal(t, httpObservation{http.MethodGet, "/reservations/{reservationId}", http.StatusNotFound}, m.observed[0])
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)

	allowed, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, allowed)
}

func TestRateLimit_Rejects(t *testing.T) {
	m := &recordingMetrics{}
	h := RateLimit(NewLocalLimiter(1, time.Hour), nil, m, logger.NewNop(), true)(okHandler)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, m.limited)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestRateLimit_FailOpenAndClosed(t *testing.T) {
	m := &recordingMetrics{}

	w := httptest.NewRecorder()
	RateLimit(failingLimiter{}, nil, m, logger.NewNop(), true)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	RateLimit(failingLimiter{}, nil, m, logger.NewNop(), false)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// fakeScripter выполняет скрипт фиксированного окна в памяти
type fakeScripter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (f *fakeScripter) run(ctx context.Context, keys []string) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[keys[0]]++
	cmd := redis.NewCmd(ctx)
	cmd.SetVal(f.counts[keys[0]])
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRedisLimiter(t *testing.T) {
	rdb := &fakeScripter{counts: make(map[string]int64)}
	l := NewRedisLimiter(rdb, 2, time.Minute, "salon")
	ctx := context.Background()

	a, _ := l.Allow(ctx, "10.0.0.1")
	b, _ := l.Allow(ctx, "10.0.0.1")
	c, err := l.Allow(ctx, "10.0.0.1")

	require.NoError(t, err)
	assert.True(t, a)
	assert.True(t, b)
	assert.False(t, c)
	assert.Equal(t, int64(3), rdb.counts["salon:10.0.0.1"])
}

func TestTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "-", traceID(req))

	tid, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid})

	req = req.WithContext(trace.ContextWithSpanContext(req.Context(), sc))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", traceID(req))
}

func TestClientIP_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	key := ClientIP(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:54321"
	assert.Equal(t, "192.0.2.7", key(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.7", key(r))
}

func TestClientIP_TrustedProxy(t *testing.T) {
	key := ClientIP([]netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9, 10.0.0.1")
	// Левые адреса подставлены клиентом, берется первый недоверенный справа
	assert.Equal(t, "203.0.113.9", key(r))

	r.Header.Set("X-Forwarded-For", "not-an-ip, 10.0.0.1")
	assert.Equal(t, "10.0.0.2", key(r))

	r.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.0.0.2", key(r))
}

func TestRateLimit_RotatingForwardedForDoesNotBypass(t *testing.T) {
	m := &recordingMetrics{}
	h := RateLimit(NewLocalLimiter(1, time.Hour), ClientIP(nil), m, logger.NewNop(), true)(okHandler)

	for i, fwd := range []string{"198.51.100.1", "198.51.100.2"} {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = "192.0.2.7:54321"
		r.Header.Set("X-Forwarded-For", fwd)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if i == 0 {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
	assert.Equal(t, 1, m.limited)
}
