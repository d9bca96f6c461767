package middleware

import (
	"net/http"

	"github.com/gamma-omg/lexi-cards/internal/pkg/router"
	"github.com/rs/cors"
)

// CORS answers preflight requests and sets CORS headers for the given origins.
// A single "*" allows any origin.
func CORS(origins []string) router.Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	})

	return c.Handler
}
