package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
)

// timeoutWriter drops writes once the deadline response has been sent.
type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	header   http.Header
	timedOut bool
	written  bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.written {
		return
	}
	dst := tw.ResponseWriter.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.written {
		tw.writeHeaderLocked(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// RequestTimeout bounds the handler by timeout. The handler keeps running
// after the deadline but its writes are discarded; the context it sees is
// cancelled so storage calls return promptly.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{
				ResponseWriter: w,
				header:         make(http.Header),
			}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				if !tw.written {
					_ = httputil.WriteError(w, apperrors.New(apperrors.CodeTimeout, "Request timeout", http.StatusServiceUnavailable))
					tw.written = true
				}
				tw.timedOut = true
			}
		})
	}
}
