package httpx

import (
	"context"
	"net/http"
	"time"

	"bookreviews/internal/logging"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int64
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.statusCode = code
		rw.headerWritten = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) wroteHeader() bool {
	return rw.headerWritten
}

func wrapWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// accessInfo is filled in by inner middleware (auth) so the access log can report it.
type accessInfo struct {
	userID string
}

type accessInfoKey struct{}

func noteUser(ctx context.Context, userID string) {
	if info, ok := ctx.Value(accessInfoKey{}).(*accessInfo); ok {
		info.userID = userID
	}
}

func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapWriter(w)
		info := &accessInfo{}

		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), accessInfoKey{}, info)))

		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Int64("bytes", rw.bytesWritten).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", RequestIDFrom(r)).
			Str("client_ip", ClientIP(r)).
			Str("user_id", info.userID).
			Msg("access")
	})
}
