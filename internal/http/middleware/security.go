// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which attaches a conservative set of
// HTTP security headers to every response: the JSON API and the static HTML
// page alike.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures headers emitted by SecurityHeaders.
type SecurityOptions struct {
	EnableHSTS   bool          // set true only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // defaults to 180 days when <= 0
	EnablePolicy bool          // include Permissions-Policy, etc.

	// NoCachePrefix makes responses for paths under it revalidate on every
	// use (Cache-Control: no-cache), which is what the users ETag relies on.
	// Empty disables it.
	NoCachePrefix string

	// ContentSecurityPolicy is sent verbatim when non-empty.
	ContentSecurityPolicy string
}

// SecurityHeaders returns a Gin middleware that sets:
//
//   - always: X-Content-Type-Options nosniff, X-Frame-Options DENY,
//     Referrer-Policy no-referrer
//   - EnablePolicy: Permissions-Policy, X-Permitted-Cross-Domain-Policies
//   - ContentSecurityPolicy: Content-Security-Policy
//   - NoCachePrefix match: Cache-Control no-cache
//   - EnableHSTS on HTTPS requests only: Strict-Transport-Security
//
// X-Request-ID is added to Access-Control-Expose-Headers so browser clients
// can read it.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	fixed := http.Header{}
	fixed.Set("X-Content-Type-Options", "nosniff")
	fixed.Set("X-Frame-Options", "DENY")
	fixed.Set("Referrer-Policy", "no-referrer")
	if opt.EnablePolicy {
		fixed.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
		fixed.Set("X-Permitted-Cross-Domain-Policies", "none")
	}
	if opt.ContentSecurityPolicy != "" {
		fixed.Set("Content-Security-Policy", opt.ContentSecurityPolicy)
	}

	hsts := hstsValue(opt.HSTSMaxAge)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range fixed {
			h[k] = v
		}

		if opt.NoCachePrefix != "" && underPrefix(c.Request.URL.Path, opt.NoCachePrefix) {
			h.Set("Cache-Control", "no-cache")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}

		c.Next()
	}
}

func hstsValue(maxAge time.Duration) string {
	secs := int(maxAge.Seconds())
	if secs <= 0 {
		secs = int((180 * 24 * time.Hour).Seconds())
	}
	return "max-age=" + strconv.Itoa(secs) + "; includeSubDomains; preload"
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const hdr = "Access-Control-Expose-Headers"
	cur := h.Get(hdr)
	switch {
	case cur == "":
		h.Set(hdr, name)
	case !strings.Contains(cur, name):
		h.Set(hdr, cur+", "+name)
	}
}

// underPrefix reports whether path is prefix itself or lies below it.
func underPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// isHTTPS reports whether the request used HTTPS directly or via a proxy
// that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
