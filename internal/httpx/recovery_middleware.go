package httpx

import (
	"net/http"
	"runtime/debug"

	"bookreviews/internal/logging"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrapWriter(w)
		defer func() {
			if err := recover(); err != nil {
				logging.Error().
					Str("request_id", RequestIDFrom(r)).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				if !rw.wroteHeader() {
					JSONError(rw, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
