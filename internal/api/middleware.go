package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/better-bets/internal/metrics"
)

// APIKeyHeader carries the shared client key
const APIKeyHeader = "x-betterbets-key"

// requireAPIKey guards the /api subtree. The mount root and asset paths pass
// through. With no key configured the subtree is open in development and
// refuses every request in production.
func requireAPIKey(apiKey string, production bool, log *logrus.Entry) func(http.Handler) http.Handler {
	var warnOnce sync.Once
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if apiKey == "" {
				if production {
					log.Error("Server API key is required in production")
					respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: KindMisconfigured})
					return
				}
				warnOnce.Do(func() {
					log.Warn("Server API key is not set; auth is disabled in development")
				})
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(APIKeyHeader)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: KindUnauthorized})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authExempt(path string) bool {
	rel := strings.TrimPrefix(path, "/api")
	return rel == "" || rel == "/" ||
		strings.HasPrefix(rel, "/assets") ||
		strings.HasPrefix(rel, "/favicon")
}

// requestLogger logs each request and counts it by route pattern
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			metrics.RecordHTTPRequest(route, strconv.Itoa(status))

			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"route":       route,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
				"request_id":  middleware.GetReqID(r.Context()),
			})
			switch {
			case status >= 500:
				entry.Warn("Request failed")
			case status >= 400:
				entry.Info("Request rejected")
			default:
				entry.Debug("Request served")
			}
		})
	}
}

// routePattern keeps metric label cardinality bounded to registered routes
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
