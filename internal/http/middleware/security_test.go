package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func secured(opt SecurityOptions, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(pre...)
	r.Use(SecurityHeaders(opt))
	r.GET("/api/v1/testimonials", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSecurityHeaders_Table(t *testing.T) {
	tlsReq := func(r *http.Request) { r.TLS = &tls.ConnectionState{} }
	proxied := func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "HTTPS") }

	cases := []struct {
		name string
		opt  SecurityOptions
		prep func(*http.Request)
		want map[string]string // "" means absent
	}{
		{
			name: "baseline",
			opt:  SecurityOptions{},
			want: map[string]string{
				"X-Content-Type-Options":       "nosniff",
				"X-Frame-Options":              "DENY",
				"Referrer-Policy":              "no-referrer",
				"Cross-Origin-Resource-Policy": "same-site",
				"Permissions-Policy":           "",
				"Cache-Control":                "",
				"Strict-Transport-Security":    "",
			},
		},
		{
			name: "policy and no-store",
			opt:  SecurityOptions{EnablePolicy: true, NoStore: true},
			want: map[string]string{
				"X-Permitted-Cross-Domain-Policies": "none",
				"Cache-Control":                     "no-store",
				"Pragma":                            "no-cache",
				"Expires":                           "0",
			},
		},
		{
			name: "hsts over plain http is withheld",
			opt:  SecurityOptions{EnableHSTS: true},
			want: map[string]string{"Strict-Transport-Security": ""},
		},
		{
			name: "hsts over tls",
			opt:  SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour},
			prep: tlsReq,
			want: map[string]string{"Strict-Transport-Security": "max-age=86400; includeSubDomains; preload"},
		},
		{
			name: "hsts behind proxy with default max-age",
			opt:  SecurityOptions{EnableHSTS: true},
			prep: proxied,
			want: map[string]string{"Strict-Transport-Security": "max-age=15552000; includeSubDomains; preload"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/testimonials", nil)
			if tc.prep != nil {
				tc.prep(req)
			}
			w := httptest.NewRecorder()
			secured(tc.opt).ServeHTTP(w, req)
			for k, v := range tc.want {
				if got := w.Header().Get(k); got != v {
					t.Fatalf("%s = %q; want %q", k, got, v)
				}
			}
		})
	}
}

func TestSecurityHeaders_ExposesRequestID(t *testing.T) {
	cases := []struct {
		name, existing, want string
	}{
		{"added", "", "X-Request-ID"},
		{"appended", "ETag", "ETag, X-Request-ID"},
		{"not duplicated", "x-request-id, ETag", "x-request-id, ETag"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pre := func(c *gin.Context) {
				c.Header(requestIDHeader, "rid-1")
				if tc.existing != "" {
					c.Header("Access-Control-Expose-Headers", tc.existing)
				}
				c.Next()
			}
			w := httptest.NewRecorder()
			secured(SecurityOptions{}, pre).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/testimonials", nil))
			if got := w.Header().Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("expose = %q; want %q", got, tc.want)
			}
		})
	}

	// Without a request id nothing is exposed.
	w := httptest.NewRecorder()
	secured(SecurityOptions{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/testimonials", nil))
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "" {
		t.Fatalf("unexpected expose header %q", got)
	}
}

func Test_isHTTPS(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	overTLS := httptest.NewRequest(http.MethodGet, "/", nil)
	overTLS.TLS = &tls.ConnectionState{}
	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	spoofedHTTP := httptest.NewRequest(http.MethodGet, "/", nil)
	spoofedHTTP.Header.Set("X-Forwarded-Proto", "http")

	for req, want := range map[*http.Request]bool{plain: false, overTLS: true, proxied: true, spoofedHTTP: false} {
		if got := isHTTPS(req); got != want {
			t.Fatalf("isHTTPS(tls=%v xfp=%q) = %v", req.TLS != nil, req.Header.Get("X-Forwarded-Proto"), got)
		}
	}
}

func TestPublicEmbed_OverridesResourcePolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{}))
	pub := r.Group("/api/v1/public", PublicEmbed())
	pub.GET("/:ownerId/testimonials", func(c *gin.Context) { c.String(http.StatusOK, "[]") })
	pub.OPTIONS("/:ownerId/testimonials", func(c *gin.Context) { t.Fatalf("preflight must be answered by PublicEmbed") })

	// Simulated credentialed CORS header from an earlier middleware.
	r2 := gin.New()
	r2.Use(func(c *gin.Context) { c.Header("Access-Control-Allow-Credentials", "true"); c.Next() })
	r2.GET("/widget.js", PublicEmbed(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/alice/testimonials", nil)
	req.Header.Set("Origin", "https://customer.example")
	r.ServeHTTP(w, req)

	h := w.Header()
	if w.Code != http.StatusOK || h.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("status=%d ACAO=%q", w.Code, h.Get("Access-Control-Allow-Origin"))
	}
	if h.Get("Cross-Origin-Resource-Policy") != "cross-origin" {
		t.Fatalf("CORP = %q", h.Get("Cross-Origin-Resource-Policy"))
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/public/alice/testimonials", nil)
	req.Header.Set("Origin", "https://customer.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Methods") != "GET, OPTIONS" {
		t.Fatalf("preflight status=%d methods=%q", w.Code, w.Header().Get("Access-Control-Allow-Methods"))
	}

	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widget.js", nil))
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("credentials must never be allowed on public routes")
	}
}
