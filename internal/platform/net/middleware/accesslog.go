package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"crosspost/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AccessLogOptions configures the zerolog access log
type AccessLogOptions struct {
	// Slow logs requests taking at least Slow at warn, 0 disables it
	Slow time.Duration
	// Quiet lists path suffixes such as "/meta/health" that log at debug
	Quiet []string
	// Log overrides the request scoped logger, nil uses logger.C
	Log *logger.Logger
}

func (o AccessLogOptions) logger(ctx context.Context) *logger.Logger {
	if o.Log == nil {
		return logger.C(ctx)
	}
	l := o.Log.With().Str("request_id", logger.RequestID(ctx)).Logger()
	return &l
}

func (o AccessLogOptions) quiet(path string) bool {
	for _, s := range o.Quiet {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// captureWriter records the status and body size a handler produced
type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	cw.bytes += max(n, 0)
	return n, err
}

// Flush lets streaming handlers through the capture
func (cw *captureWriter) Flush() {
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AccessLogZerolog logs one line per request with its chi route pattern
// 5xx lines log at error, slow ones at warn, quiet paths at debug
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			log := opt.logger(r.Context())
			var evt *zerolog.Event
			switch {
			case cw.status >= http.StatusInternalServerError:
				evt = log.Error()
			case opt.Slow > 0 && elapsed >= opt.Slow:
				evt = log.Warn()
			case opt.quiet(r.URL.Path):
				evt = log.Debug()
			default:
				evt = log.Info()
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					evt = evt.Str("route", p)
				}
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
