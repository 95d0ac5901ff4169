package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "medbook/pkg/errors"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"
)

// deadlineWriter buffers headers until the handler commits a status, so the
// timeout response never shares a header map with a handler still running.
type deadlineWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu        sync.Mutex
	expired   bool
	committed bool
}

func newDeadlineWriter(w http.ResponseWriter) *deadlineWriter {
	return &deadlineWriter{w: w, header: make(http.Header)}
}

func (dw *deadlineWriter) Header() http.Header {
	return dw.header
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.committed {
		return
	}
	dw.commit(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !dw.committed {
		dw.commit(http.StatusOK)
	}
	return dw.w.Write(b)
}

func (dw *deadlineWriter) commit(code int) {
	dst := dw.w.Header()
	for k, v := range dw.header {
		dst[k] = v
	}
	dw.committed = true
	dw.w.WriteHeader(code)
}

// expire stops further handler writes. It reports whether the handler had
// already committed a response.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.expired = true
	return dw.committed
}

// RequestTimeout bounds each request by timeout. A handler that has not
// answered by then gets 504 in its place. A panic in the handler is re-raised
// on the serving goroutine so Recovery still sees it. A non-positive timeout
// disables the bound.
func RequestTimeout(timeout time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			dw := newDeadlineWriter(w)

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(dw, r)
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
			case <-ctx.Done():
				if dw.expire() {
					return
				}
				log.Warn("Request timed out",
					"request_id", requestIDFrom(r),
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout.String(),
				)
				_ = httputil.WriteError(w, apperrors.Timeout("Request timeout"))
			}
		})
	}
}
