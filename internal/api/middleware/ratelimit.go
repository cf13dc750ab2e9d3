package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
)

const (
	msgRateLimited        = "слишком много запросов, повторите позже"
	msgLimiterUnavailable = "ограничитель запросов недоступен"
)

// Limiter решает, пропустить ли очередной запрос клиента key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter фиксированное окно в Redis, общее для всех инстансов сервиса
type RedisLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRedisLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RedisLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "rl"
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := fixedWindowScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("middleware: redis rate limiter: %w", err)
	}
	return count <= int64(l.limit), nil
}

// LocalLimiter token bucket на клиента в памяти процесса, когда Redis не настроен
type LocalLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	ttl      time.Duration
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter пропускает в среднем limit запросов за window с всплеском до limit
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LocalLimiter{
		limit:    rate.Limit(float64(limit) / window.Seconds()),
		burst:    limit,
		visitors: make(map[string]*visitor),
		ttl:      3 * window,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.gc(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// gc удаляет давно неактивных клиентов, не чаще раза в ttl
func (l *LocalLimiter) gc(now time.Time) {
	if now.Sub(l.lastGC) < l.ttl {
		return
	}
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
	l.lastGC = now
}

// RateLimit отвечает 429, когда лимитер отказал. failOpen пропускает запрос при ошибке лимитера.
// Без clientKey ключом служит адрес соединения.
func RateLimit(limiter Limiter, clientKey ClientKeyFunc, m RateLimitMetrics, logger Logger, failOpen bool) Middleware {
	if clientKey == nil {
		clientKey = ClientIP(nil)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.Warn("rate limiter error: %v", err)
				if !failOpen {
					handlers.RespondServiceUnavailable(w, msgLimiterUnavailable)
					return
				}
				allowed = true
			}
			if !allowed {
				m.RateLimited()
				handlers.RespondTooManyRequests(w, msgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKeyFunc ключ клиента для лимитера
type ClientKeyFunc func(r *http.Request) string

// ClientIP адрес клиента. X-Forwarded-For учитывается только для соединений от доверенных прокси:
// цепочка читается справа налево и берется первый адрес вне trusted.
func ClientIP(trusted []netip.Prefix) ClientKeyFunc {
	isTrusted := func(addr netip.Addr) bool {
		for _, p := range trusted {
			if p.Contains(addr.Unmap()) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		remote := remoteHost(r)
		peer, err := netip.ParseAddr(remote)
		if err != nil || !isTrusted(peer) {
			return remote
		}

		hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			addr, err := netip.ParseAddr(hop)
			if err != nil {
				// Мусор в заголовке: доверять цепочке дальше нельзя
				return remote
			}
			if !isTrusted(addr) {
				return addr.Unmap().String()
			}
		}
		return remote
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
