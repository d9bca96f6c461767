package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/router"
)

// Recover turns a handler panic into a 500 JSON error. http.ErrAbortHandler is
// passed through so the server can drop the connection. Nothing is written when
// the handler had already started the response.
func Recover() router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				slog.Error("handler panicked",
					"panic", fmt.Sprint(v),
					"request_id", RequestIDFromContext(r.Context()),
					"method", r.Method,
					"url", httpx.RequestURL(r),
					"remote_addr", r.RemoteAddr,
					"stack_trace", string(debug.Stack()),
				)

				if hw, ok := w.(interface{ headerWritten() bool }); ok && hw.headerWritten() {
					return
				}
				httpx.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
