// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, a hardening middleware that attaches a
// conservative set of HTTP security headers suitable for JSON APIs running
// behind a reverse proxy, and PublicEmbed, which relaxes the resource policy
// for the routes third-party pages load (widget script and public feed).
//
// Design notes:
//   - No Content-Security-Policy here; the service serves JSON and one
//     script, never HTML.
//   - HSTS is opt-in and only applied when the request is actually HTTPS
//     (directly or via X-Forwarded-Proto).
//   - Dashboard routes get Cross-Origin-Resource-Policy: same-site. Routes
//     wrapped in PublicEmbed override it with cross-origin and answer CORS
//     with a wildcard origin and no credentials.
//   - The static header set is computed once per middleware instance.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures HTTP security headers emitted by SecurityHeaders.
//
// EnableHSTS controls whether to emit Strict-Transport-Security for HTTPS
// requests (never for plain HTTP). Only enable when traffic is HTTPS
// end-to-end, including between proxy and app.
//
// HSTSMaxAge is the lifetime for HSTS. Values <= 0 fall back to 180 days
// (15552000 seconds).
//
// NoStore, when true, adds Cache-Control: no-store (plus legacy Pragma/Expires).
// Handlers that set their own Cache-Control (public feed, widget.js, QR code)
// overwrite it after this middleware has run.
//
// EnablePolicy controls whether browser feature policies are sent
// (Permissions-Policy and X-Permitted-Cross-Domain-Policies).
type SecurityOptions struct {
	EnableHSTS   bool          // set true only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // e.g., 180 * 24h
	NoStore      bool          // add Cache-Control: no-store
	EnablePolicy bool          // include Permissions-Policy, etc.
}

// SecurityHeaders returns a Gin middleware that adds security headers to
// each response.
//
// Behavior:
//   - Always sets:
//     X-Content-Type-Options: nosniff
//     X-Frame-Options: DENY
//     Referrer-Policy: no-referrer
//     Cross-Origin-Resource-Policy: same-site
//   - Optionally sets (when EnablePolicy):
//     Permissions-Policy: geolocation=(), microphone=(), camera=(), payment=()
//     X-Permitted-Cross-Domain-Policies: none
//   - Optionally sets (when NoStore):
//     Cache-Control: no-store
//     Pragma: no-cache
//     Expires: 0
//   - Optionally sets (when EnableHSTS && request is HTTPS):
//     Strict-Transport-Security: max-age=<seconds>; includeSubDomains; preload
//   - If X-Request-ID is present, exposes it via Access-Control-Expose-Headers
//     (appended case-insensitively, never duplicated) so the dashboard can
//     read it from error responses.
//
// Mount it after RequestID() so the request ID header is already set.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	static := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
		{"Cross-Origin-Resource-Policy", "same-site"},
	}
	if opt.EnablePolicy {
		static = append(static,
			[2]string{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			[2]string{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}
	if opt.NoStore {
		static = append(static,
			[2]string{"Cache-Control", "no-store"},
			[2]string{"Pragma", "no-cache"},
			[2]string{"Expires", "0"},
		)
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()

		// Baseline hardening plus the optional policy and no-store sets.
		for _, kv := range static {
			h.Set(kv[0], kv[1])
		}
		// Strict-Transport-Security only for HTTPS requests (never for HTTP).
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			appendToken(h, "Access-Control-Expose-Headers", requestIDHeader)
		}
		c.Next()
	}
}

// appendToken adds tok to the comma-separated header key unless present.
func appendToken(h http.Header, key, tok string) {
	cur := h.Get(key)
	if cur == "" {
		h.Set(key, tok)
		return
	}
	for _, part := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(part), tok) {
			return
		}
	}
	h.Set(key, cur+", "+tok)
}

// PublicEmbed marks a route as loadable from any origin.
//
// Behavior:
//   - Sets Access-Control-Allow-Origin: * and
//     Cross-Origin-Resource-Policy: cross-origin (overriding SecurityHeaders).
//   - Removes Access-Control-Allow-Credentials if an earlier middleware set it.
//   - Answers preflight (OPTIONS) itself with 204 and:
//     Access-Control-Allow-Methods: GET, OPTIONS
//     Access-Control-Allow-Headers: Accept, Content-Type, If-None-Match
//
// Use it on anonymous read routes only (GET /widget.js and the public feed).
func PublicEmbed() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		h.Del("Access-Control-Allow-Credentials")
		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Accept, Content-Type, If-None-Match")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// isHTTPS reports whether the incoming request used HTTPS either directly
// (r.TLS != nil) or via a reverse proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
