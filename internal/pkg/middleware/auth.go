package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/router"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

var subjectKey ctxKey

// Auth requires an HS256-signed bearer token with a non-empty subject.
// The subject is stored in the request context.
func Auth(key any) router.Middleware {
	return func(next http.Handler) http.Handler {
		return authMiddleware(next, key)
	}
}

func authMiddleware(next http.Handler, key any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := bearerToken(r)
		if rawToken == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil {
			authError("failed to parse jwt", w, r, err)
			return
		}
		if !token.Valid {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil {
			authError("invalid jwt subject", w, r, err)
			return
		}
		if sub == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if e := accessFromContext(r.Context()); e != nil {
			e.subject = sub
		}

		ctx := context.WithValue(r.Context(), subjectKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

func authError(msg string, w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn(msg,
		"error", err,
		"method", r.Method,
		"url", httpx.RequestURL(r),
		"remote_addr", r.RemoteAddr,
	)
	httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
}

// SubjectFromContext returns the token subject set by Auth, or "".
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey).(string)
	return sub
}
