package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Middleware is a request-handling hook composed around the site handler.
// The chain mirrors the middlewares list in the site configuration and is
// applied in registration order.
type Middleware func(http.Handler) http.Handler

// BuildChain maps configured middleware names onto implementations. Order is
// preserved: the first entry wraps outermost.
func BuildChain(cfg site.Config, logger interfaces.Logger) ([]Middleware, error) {
	if logger == nil {
		logger = logging.NoOp()
	}

	chain := make([]Middleware, 0, len(cfg.Middlewares))
	for _, name := range cfg.Middlewares {
		switch strings.TrimSpace(name) {
		case site.MiddlewareRequestLog:
			chain = append(chain, RequestLog(logger))
		case site.MiddlewareAnalytics:
			chain = append(chain, Analytics(cfg.Analytics))
		default:
			return nil, fmt.Errorf("%w: %q", site.ErrUnknownMiddleware, name)
		}
	}
	return chain, nil
}

// Apply wraps handler with the chain so the first middleware observes the
// request first.
func Apply(handler http.Handler, chain []Middleware) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// RequestLog emits a structured entry per request with method, path, status,
// and duration.
func RequestLog(logger interfaces.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			logger.Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	return r.ResponseWriter.Write(data)
}
