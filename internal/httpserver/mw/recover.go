package mw

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// Recover turns handler panics into 500 responses on the preview server.
// Inside a render pass the panic is left to the dispatcher, which reports
// it as a render failure for the URI being rendered.
func Recover(log logger.Logger, debugPages bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, rendering := dispatch.ScopeFrom(r.Context()); rendering {
				next.ServeHTTP(w, r)
				return
			}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic serving request",
					logger.String("path", r.URL.Path),
					logger.Any("panic", rec),
				)
				msg := http.StatusText(http.StatusInternalServerError)
				if debugPages {
					msg = fmt.Sprintf("panic: %v\n\n%s", rec, debug.Stack())
				}
				http.Error(w, msg, http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
