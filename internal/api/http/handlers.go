package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/domain/session"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/auth"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/resilience"
)

const version = "1.0.0"

// Config wires the handler set to the services it drives.
type Config struct {
	Sessions *session.Manager
	Issuer   *auth.Issuer
	// Store is reported by the health check. It may be nil.
	Store *blobstore.Guarded
	// Backend names the store in health output.
	Backend string
	// Cookie is the session cookie name.
	Cookie string
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	Metrics      *monitoring.Metrics
	Logger       *logging.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions     *session.Manager
	issuer       *auth.Issuer
	store        *blobstore.Guarded
	backend      string
	cookie       string
	secureCookie bool
	metrics      *monitoring.Metrics
	logger       *logging.Logger
	started      time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(cfg Config) *Handlers {
	if cfg.Cookie == "" {
		cfg.Cookie = middleware.DefaultCookie
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	return &Handlers{
		sessions:     cfg.Sessions,
		issuer:       cfg.Issuer,
		store:        cfg.Store,
		backend:      cfg.Backend,
		cookie:       cfg.Cookie,
		secureCookie: cfg.SecureCookie,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.Named("http"),
		started:      time.Now(),
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webdesk",
		"version": version,
	})
}

// Health reports liveness plus the state of the durable store. An open
// breaker degrades the status but the desktop keeps working in memory.
func (h *Handlers) Health(c *gin.Context) {
	status := "healthy"
	store := gin.H{"backend": h.backend}
	if h.store != nil {
		state := h.store.Breaker().State()
		store["breaker"] = state.String()
		if state != resilience.StateClosed {
			status = "degraded"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"sessions":       h.sessions.Count(),
		"store":          store,
		"uptime_seconds": time.Since(h.started).Seconds(),
	})
}

// desktop returns the session desktop attached by the session middleware.
func desktop(c *gin.Context) *session.Desktop {
	return middleware.Desktop(c)
}

// bind decodes the JSON body into req, answering 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// result answers a file system or window operation. Failures are a plain
// success=false; the client refreshes instead of reading an error.
func (h *Handlers) result(c *gin.Context, op string, ok bool, extra gin.H) {
	if !ok {
		h.logger.Debug("operation rejected",
			zap.String("op", op),
			zap.String("session", desktop(c).ID()),
		)
	}
	body := gin.H{"success": ok}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
