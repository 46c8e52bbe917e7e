package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/domain/session"
)

// CreateSession starts a desktop, or resumes the one named by a valid token
// on the request, and answers with a fresh token. The token is also set as
// a cookie and echoed in the session header.
func (h *Handlers) CreateSession(c *gin.Context) {
	var (
		desk    *session.Desktop
		resumed bool
	)
	if token := middleware.Token(c, h.cookie); token != "" {
		if sid, err := h.issuer.Parse(token); err == nil {
			d, err := h.sessions.Open(c.Request.Context(), sid)
			switch {
			case err == nil:
				desk, resumed = d, true
			case !errors.Is(err, session.ErrSessionNotFound):
				h.logger.Error("failed to resume session", zap.String("session", sid), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
				return
			}
		}
	}
	if desk == nil {
		desk = h.sessions.Create()
	}

	token, expires, err := h.issuer.Issue(desk.ID())
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie, token, int(h.issuer.TTL().Seconds()), "/", "", h.secureCookie, true)
	c.Header(middleware.HeaderSession, token)

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"session_id": desk.ID(),
		"token":      token,
		"expires_at": expires,
		"resumed":    resumed,
	})
}
