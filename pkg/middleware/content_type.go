package middleware

import (
	"net/http"
	"strings"

	"reservd/pkg/logger"
)

// ContentTypeValidation rejects mutating requests that do not declare a
// JSON body. GET and DELETE pass through untouched.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasBody(r.Method) {
				contentType := mediaType(r.Header.Get("Content-Type"))
				if contentType != "application/json" {
					log.Warn("Rejected request with invalid Content-Type",
						"request_id", RequestID(r.Context()),
						"content_type", contentType,
						"method", r.Method,
						"path", r.URL.Path,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnsupportedMediaType)
					_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}`))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// mediaType strips parameters like "; charset=utf-8".
func mediaType(header string) string {
	if i := strings.Index(header, ";"); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}
