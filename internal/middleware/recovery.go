package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/josh-kwaku/edificio/internal/handler"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/metrics"
)

// Recovery turns a handler panic into a 500 envelope. http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			metrics.Panics.Inc()
			logging.FromContext(r.Context()).Error("panic recovered",
				"panic", v,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			handler.RespondAppError(w, handler.ErrInternalError, nil)
		}()
		next.ServeHTTP(w, r)
	})
}
