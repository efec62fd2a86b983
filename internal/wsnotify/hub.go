// Package wsnotify broadcasts Block & Graph Executor events over
// WebSocket, the "optional push channel" companion to execution/status
// polling (spec §4.5).
package wsnotify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/virtualpytest/core/internal/logger"
	"github.com/virtualpytest/core/pkg/models"
)

// Client is a single connected WebSocket subscriber, optionally filtered
// to one execution_id.
type Client struct {
	ID          string
	ExecutionID string
	Send        chan []byte
}

// Hub fans block-started/block-finished events out to every subscriber
// whose filter matches, mirroring the teacher's WebSocketHub shape.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logger.Logger
}

// NewHub constructs an empty Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{clients: make(map[string]*Client), log: log}
}

// Register adds client to the hub and returns it for the caller's read/write
// pump.
func (h *Hub) Register(executionID string) *Client {
	c := &Client{ID: uuid.NewString(), ExecutionID: executionID, Send: make(chan []byte, 32)}
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	return c
}

// Unregister removes client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Send)
	}
	h.mu.Unlock()
}

// ClientCount reports the number of connected subscribers, for tests.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(executionID string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		if h.log != nil {
			h.log.Warn("failed to marshal websocket event", "error", err)
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.ExecutionID != "" && c.ExecutionID != executionID {
			continue
		}
		select {
		case c.Send <- data:
		default:
			// Slow consumer: drop the event rather than block the executor.
		}
	}
}

// BlockStarted implements blockexec.Notifier.
func (h *Hub) BlockStarted(executionID string, block *models.Block) {
	h.broadcast(executionID, map[string]interface{}{
		"type":         "block_started",
		"execution_id": executionID,
		"block_id":     block.ID,
		"block_type":   block.Type,
		"timestamp":    time.Now().Format(time.RFC3339Nano),
	})
}

// BlockFinished implements blockexec.Notifier.
func (h *Hub) BlockFinished(executionID string, block *models.Block, output map[string]interface{}, err error) {
	event := map[string]interface{}{
		"type":         "block_finished",
		"execution_id": executionID,
		"block_id":     block.ID,
		"block_type":   block.Type,
		"output":       output,
		"timestamp":    time.Now().Format(time.RFC3339Nano),
	}
	if err != nil {
		event["error"] = err.Error()
	}
	h.broadcast(executionID, event)
}
