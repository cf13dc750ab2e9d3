package middleware

import (
	"net/http"
	"time"
)

type Middleware func(http.Handler) http.Handler

// Chain оборачивает h так, что Chain(h, a, b) == a(b(h))
func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

// BodyLimit ограничивает размер тела запроса
func BodyLimit(limitBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limitBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout отменяет контекст запроса и отвечает 503 по истечении d
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"превышено время ожидания запроса"}`)
	}
}
