// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the acting owner account for dashboard routes. The
// identity provider issues bearer tokens; the resolved subject is stored
// under the "userID" Gin key, which handlers pass explicitly into services.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/testify-backend/internal/auth"
)

const (
	userIDKey   = "userID"
	identityKey = "identity"

	// HeaderDevUserID is accepted in place of a token when AllowDevHeader is set.
	HeaderDevUserID = "X-User-ID"
)

// TokenVerifier validates a bearer token and returns the identity it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// AllowDevHeader accepts X-User-ID without a token. Local development only.
	AllowDevHeader bool
}

// Authenticate requires a valid identity on the request. It answers 401 with
// the standard error envelope when none can be resolved.
func Authenticate(v TokenVerifier, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := LoggerFrom(c)

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok && v != nil {
			id, err := v.Verify(c.Request.Context(), token)
			if err != nil {
				lg.Warn().Err(err).Msg("token rejected")
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			setIdentity(c, id)
			c.Next()
			return
		}

		if opts.AllowDevHeader {
			if uid := strings.TrimSpace(c.GetHeader(HeaderDevUserID)); uid != "" {
				setIdentity(c, auth.Identity{Subject: uid})
				c.Next()
				return
			}
		}

		abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
}

// UserID returns the acting owner id set by Authenticate, or "".
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	return asString(v)
}

// IdentityFrom returns the identity set by Authenticate.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(userIDKey, id.Subject)
	c.Set(identityKey, id)

	// Enrich the request-scoped logger for handlers and services.
	l := LoggerFrom(c).With().Str("owner_id", id.Subject).Logger()
	c.Set(loggerKey, &l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
}

// bearerToken extracts the token from an "Authorization: Bearer <t>" header.
func bearerToken(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	t := strings.TrimSpace(h[len(prefix):])
	return t, t != ""
}
