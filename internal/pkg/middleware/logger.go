package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/router"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type accessKeyType struct{}

var accessKey accessKeyType

// accessEntry collects what the access log line reports. Handlers further down
// the chain fill in the parts only they know, such as the token subject.
type accessEntry struct {
	requestID string
	subject   string
	status    int
	bytes     int64
}

type accessWriter struct {
	http.ResponseWriter
	entry *accessEntry
}

func (aw *accessWriter) WriteHeader(status int) {
	if aw.entry.status == 0 {
		aw.entry.status = status
	}
	aw.ResponseWriter.WriteHeader(status)
}

func (aw *accessWriter) Write(b []byte) (int, error) {
	if aw.entry.status == 0 {
		aw.entry.status = http.StatusOK
	}
	n, err := aw.ResponseWriter.Write(b)
	aw.entry.bytes += int64(n)
	return n, err
}

func (aw *accessWriter) Unwrap() http.ResponseWriter {
	return aw.ResponseWriter
}

func (aw *accessWriter) headerWritten() bool {
	return aw.entry.status != 0
}

func Log() router.Middleware {
	return LogWith(slog.Default())
}

// LogWith writes one line per request once the response is done. The request id
// is taken from X-Request-ID when the client sends one and echoed back.
func LogWith(l *slog.Logger) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := &accessEntry{requestID: r.Header.Get(RequestIDHeader)}
			if entry.requestID == "" {
				entry.requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, entry.requestID)

			start := time.Now()
			ctx := context.WithValue(r.Context(), accessKey, entry)
			next.ServeHTTP(&accessWriter{ResponseWriter: w, entry: entry}, r.WithContext(ctx))

			status := entry.status
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []any{
				"request_id", entry.requestID,
				"method", r.Method,
				"url", httpx.RequestURL(r),
				"status", status,
				"bytes", entry.bytes,
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
				"agent", r.UserAgent(),
			}
			if entry.subject != "" {
				attrs = append(attrs, "subject", entry.subject)
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			l.Log(r.Context(), level, "request completed", attrs...)
		})
	}
}

// RequestIDFromContext returns the id assigned by Log, or "".
func RequestIDFromContext(ctx context.Context) string {
	if e, ok := ctx.Value(accessKey).(*accessEntry); ok {
		return e.requestID
	}
	return ""
}

func accessFromContext(ctx context.Context) *accessEntry {
	e, _ := ctx.Value(accessKey).(*accessEntry)
	return e
}
