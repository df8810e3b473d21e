package middleware

import (
	"net/http"

	"github.com/Sunbridger/lixiaona/config"
)

// APIKey gates the API behind an X-API-Key header when API_KEY is set.
// The app is single-user and usually runs on a trusted device, so with no
// key configured the check is a no-op.
func APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := config.GetEnv("API_KEY", "")
		if expected == "" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("X-API-Key") != expected {
			http.Error(w, "Forbidden: Invalid API Key", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
