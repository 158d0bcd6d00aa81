// Package auth resolves the current user's identity from a bearer token
// issued by the hosted auth backend.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	ErrNoIdentity   = errors.New("no authenticated user")
	ErrInvalidToken = errors.New("invalid token")
)

// SessionCookie is where browser clients keep the access token.
const SessionCookie = "sb-access-token"

const identityKey = "identity"

type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// TokenFromRequest reads a bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Middleware attaches the identity to the request when a valid token is
// present. Requests without one continue anonymously; pages decide whether
// to redirect.
func Middleware(authn Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		if token == "" {
			c.Next()
			return
		}
		id, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected token")
			c.Next()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// FromContext returns the identity set by Middleware, or nil.
func FromContext(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}
