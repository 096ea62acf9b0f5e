package middleware

import "net/http"

// apiCSP forbids everything: responses are JSON or stored images, never pages.
const apiCSP = "default-src 'none'; img-src 'self'; frame-ancestors 'none'"

// SecurityHeaders sets the standard hardening headers. HSTS is only sent when
// the service is reached over HTTPS.
func SecurityHeaders(isHTTPS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Frame-Options", "DENY")
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			headers.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")
			headers.Set("Content-Security-Policy", apiCSP)
			if isHTTPS {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
