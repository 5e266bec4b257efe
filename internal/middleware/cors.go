package middleware

import "net/http"

const corsAllowedMethods = "GET, POST, OPTIONS"

// CORS answers every OPTIONS request with an empty body and, when enabled,
// adds permissive CORS headers to all responses.
func CORS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enabled {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Content-Type", "text/html;charset=UTF-8")
				w.WriteHeader(http.StatusOK)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
