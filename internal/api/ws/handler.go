package ws

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docfs/internal/shell"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Reply is the JSON answer to one shell line.
type Reply struct {
	Type   string `json:"type"`
	Output string `json:"output"`
	Cwd    string `json:"cwd"`
	Error  string `json:"error,omitempty"`
}

// SessionFactory creates the shell session for a new connection.
type SessionFactory func() *shell.Session

// Handler manages WebSocket connections
type Handler struct {
	newSession SessionFactory
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(newSession SessionFactory, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{newSession: newSession, metrics: metrics, logger: logger}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	ctx := c.Request.Context()
	sess := h.newSession()

	if err := h.send(conn, Reply{Type: "system", Output: "Connected to docfs shell", Cwd: sess.Cwd()}); err != nil {
		return
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.record("in", "command")

		var out bytes.Buffer
		ctl, err := sess.Execute(ctx, string(data), &out)
		reply := Reply{Type: "result", Output: out.String(), Cwd: sess.Cwd()}
		if err != nil {
			reply.Error = err.Error()
		}
		if ctl == shell.Exit {
			reply.Type = "exit"
		}
		if err := h.send(conn, reply); err != nil {
			return
		}

		if ctl == shell.Exit {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, reply Reply) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(reply); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
		return err
	}
	h.record("out", reply.Type)
	return nil
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
