package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/domain/session"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/auth"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
)

// HeaderSession carries the session token.
const HeaderSession = "X-Desk-Session"

// DefaultCookie is the cookie name the session token is set under.
const DefaultCookie = "desk_session"

const desktopKey = "desktop"

// SessionOpener resolves a session id to its live desktop.
type SessionOpener interface {
	Open(ctx context.Context, sessionID string) (*session.Desktop, error)
}

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Issuer   *auth.Issuer
	Sessions SessionOpener
	Cookie   string
	Tracer   *tracing.Tracer
}

// Session authenticates the request's session token and attaches the
// desktop it names. The token is read from the X-Desk-Session header, then
// the session cookie, then a "token" query parameter (for websockets).
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.Cookie == "" {
		cfg.Cookie = DefaultCookie
	}
	return func(c *gin.Context) {
		token := Token(c, cfg.Cookie)
		if token == "" {
			abort(c, http.StatusUnauthorized, "missing session token")
			return
		}
		sid, err := cfg.Issuer.Parse(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid session token")
			return
		}

		var desk *session.Desktop
		open := func(ctx context.Context) error {
			var err error
			desk, err = cfg.Sessions.Open(ctx, sid)
			return err
		}
		if cfg.Tracer != nil {
			err = cfg.Tracer.Trace(c.Request.Context(), "session.open", open)
		} else {
			err = open(c.Request.Context())
		}
		if errors.Is(err, session.ErrSessionNotFound) {
			abort(c, http.StatusUnauthorized, "unknown session")
			return
		}
		if err != nil {
			abort(c, http.StatusInternalServerError, "session unavailable")
			return
		}

		c.Set(desktopKey, desk)
		c.Next()
	}
}

// Token extracts the raw session token from a request.
func Token(c *gin.Context, cookie string) string {
	if t := c.GetHeader(HeaderSession); t != "" {
		return t
	}
	if t, err := c.Cookie(cookie); err == nil && t != "" {
		return t
	}
	return c.Query("token")
}

// Desktop returns the desktop attached by Session.
func Desktop(c *gin.Context) *session.Desktop {
	v, ok := c.Get(desktopKey)
	if !ok {
		return nil
	}
	d, _ := v.(*session.Desktop)
	return d
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
