package middleware

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gamma-omg/lexi-cards/internal/pkg/router"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(key []byte) *router.Router {
	r := router.New()
	r.Use(Auth(key))

	r.HandleFunc("/admin/lessons/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, SubjectFromContext(r.Context()))
	})
	return r
}

func sign(t *testing.T, key []byte, claims jwt.Claims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuth_WithoutToken(t *testing.T) {
	r := protectedRouter([]byte("test-api-key"))

	req := httptest.NewRequest("GET", "/admin/lessons/", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestAuth_InvalidToken(t *testing.T) {
	slog.SetDefault(slog.New(slog.DiscardHandler))
	r := protectedRouter([]byte("test-api-key"))

	req := httptest.NewRequest("GET", "/admin/lessons/", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongKey(t *testing.T) {
	slog.SetDefault(slog.New(slog.DiscardHandler))
	r := protectedRouter([]byte("test-api-key"))

	req := httptest.NewRequest("GET", "/admin/lessons/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, []byte("other-key"), jwt.RegisteredClaims{Subject: "editor"}))
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Expired(t *testing.T) {
	slog.SetDefault(slog.New(slog.DiscardHandler))
	key := []byte("test-api-key")
	r := protectedRouter(key)

	req := httptest.NewRequest("GET", "/admin/lessons/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, key, jwt.RegisteredClaims{
		Subject:   "editor",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}))
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	key := []byte("test-api-key")
	r := protectedRouter(key)

	for _, header := range []string{"Bearer ", "bearer ", ""} {
		req := httptest.NewRequest("GET", "/admin/lessons/", nil)
		req.Header.Set("Authorization", header+sign(t, key, jwt.RegisteredClaims{Subject: "editor"}))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "editor\n", rec.Body.String())
	}
}

func TestAuth_ValidToken_NoSubject(t *testing.T) {
	key := []byte("test-api-key")
	r := protectedRouter(key)

	req := httptest.NewRequest("GET", "/admin/lessons/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, key, jwt.MapClaims{}))
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_SubjectInAccessLog(t *testing.T) {
	var logs bytes.Buffer
	key := []byte("test-api-key")

	r := router.New()
	r.Use(LogWith(slog.New(slog.NewJSONHandler(&logs, nil))), Auth(key))
	r.HandleFunc("/admin/lessons/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/lessons/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, key, jwt.RegisteredClaims{Subject: "editor"}))
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, logs.String(), `"subject":"editor"`)
}
