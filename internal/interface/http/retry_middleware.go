package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/aqi-search/internal/infra/config"
)

// withRetry replays idempotent requests that failed with a 5xx status. Each
// attempt is buffered and only the last one reaches the client.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	skip := make(map[string]bool, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		skip[path] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skip[r.URL.Path] || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
			handler.ServeHTTP(w, r)
			return
		}

		var attempt *bufferedResponse
		for n := 1; n <= cfg.MaxAttempts; n++ {
			if n > 1 {
				logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", attempt.status, "attempt", n-1)
				timer := time.NewTimer(cfg.BaseBackoff << (n - 2))
				select {
				case <-r.Context().Done():
					timer.Stop()
					attempt.flushTo(w)
					return
				case <-timer.C:
				}
			}
			attempt = &bufferedResponse{header: make(http.Header), status: http.StatusOK}
			handler.ServeHTTP(attempt, r.Clone(r.Context()))
			if attempt.status < http.StatusInternalServerError {
				break
			}
		}
		attempt.flushTo(w)
	})
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
