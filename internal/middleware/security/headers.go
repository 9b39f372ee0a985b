// Package security applies standard security headers to HTTP responses.
package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security header values.
type HeadersConfig struct {
	CSP string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
}

// DefaultHeadersConfig returns defaults suitable for a JSON API.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'none'; frame-ancestors 'none'; base-uri 'self'",

		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
	}
}

// Middleware sets the configured headers before invoking next.
func Middleware(config HeadersConfig) func(http.Handler) http.Handler {
	hsts := fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
	if config.HSTSIncludeSubdomains {
		hsts += "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if config.CSP != "" {
				h.Set("Content-Security-Policy", config.CSP)
			}
			if config.HSTSMaxAge > 0 && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			h.Set("X-Frame-Options", config.XFrameOptions)
			h.Set("X-Content-Type-Options", config.XContentTypeOptions)
			h.Set("Referrer-Policy", config.ReferrerPolicy)
			h.Set("Permissions-Policy", config.PermissionsPolicy)
			next.ServeHTTP(w, r)
		})
	}
}
