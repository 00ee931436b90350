package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS wraps h with CORS handling for the given comma-separated origins.
// An empty origin list returns h unchanged.
func CORS(allowedOrigins string, h http.Handler) http.Handler {
	origins := SplitOrigins(allowedOrigins)
	if len(origins) == 0 {
		return h
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
}

// SplitOrigins parses a comma-separated origin list, dropping blanks
func SplitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
