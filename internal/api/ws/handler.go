package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// inbound is a client message.
type inbound struct {
	Type string `json:"type"`
}

// Handler streams desktop events over WebSocket connections
type Handler struct {
	upgrader websocket.Upgrader
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewHandler creates a new WebSocket handler. Browsers connecting from an
// origin outside origins are refused; "*" allows any.
func NewHandler(origins []string, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		metrics: metrics,
		logger:  logger.Named("ws"),
	}
}

// HandleConnection upgrades the request and pushes every event of the
// session's desktop until the client leaves or the session is evicted.
func (h *Handler) HandleConnection(c *gin.Context) {
	desk := middleware.Desktop(c)
	if desk == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	events := desk.Events().Subscribe()
	defer desk.Events().Unsubscribe(events)

	log := h.logger.With(zap.String("session", desk.ID()))
	log.Debug("stream connected")

	if err := h.send(conn, "hello", gin.H{
		"type":       "hello",
		"session_id": desk.ID(),
		"viewport":   desk.Viewport(),
		"windows":    desk.Windows(),
		"timestamp":  time.Now().UnixMilli(),
	}); err != nil {
		return
	}

	replies := make(chan gin.H, 8)
	done := make(chan struct{})
	go h.readLoop(conn, replies, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Session evicted.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(writeWait))
				return
			}
			if err := h.send(conn, ev.Type, ev); err != nil {
				log.Debug("stream write failed", zap.Error(err))
				return
			}
		case reply := <-replies:
			if err := h.send(conn, reply["type"].(string), reply); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			log.Debug("stream disconnected")
			return
		}
	}
}

// readLoop consumes client messages until the connection fails. Replies go
// through the write loop since a connection allows one writer.
func (h *Handler) readLoop(conn *websocket.Conn, replies chan<- gin.H, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		h.metrics.RecordWSMessage("in", msg.Type)

		var reply gin.H
		switch msg.Type {
		case "ping":
			reply = gin.H{"type": "pong"}
		default:
			reply = gin.H{"type": "error", "message": "unknown message type"}
		}
		reply["timestamp"] = time.Now().UnixMilli()

		select {
		case replies <- reply:
		default:
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msgType string, data any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(data); err != nil {
		return err
	}
	h.metrics.RecordWSMessage("out", msgType)
	return nil
}
