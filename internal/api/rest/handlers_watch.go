package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 10 * time.Second

// WatchExecutions handles GET /ws/executions[?execution_id=], the optional
// push channel that streams block_started/block_finished events alongside
// execution/status polling (spec §4.5).
func (d *Deps) WatchExecutions(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		d.Log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	executionID := c.Query("execution_id")
	client := d.Watch.Register(executionID)
	defer d.Watch.Unregister(client)

	if err := conn.WriteJSON(gin.H{
		"type":         "control",
		"message":      "connected to execution event stream",
		"client_id":    client.ID,
		"execution_id": executionID,
		"timestamp":    time.Now().Format(time.RFC3339Nano),
	}); err != nil {
		return
	}

	// Drain and discard client reads so control frames (ping/close) are
	// processed; this channel is write-only from the server's side.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range client.Send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
