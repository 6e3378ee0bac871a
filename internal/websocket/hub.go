package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"eirybot-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// leadFeedChannel is the Redis channel used to fan broadcasts out to other
// instances.
const leadFeedChannel = "lead_feed"

// Hub pushes captured-lead events to every connected ops dashboard. The
// feed is broadcast-only; clients never send anything meaningful back.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Optional.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Lead feed client connected", nil)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Lead feed client disconnected", nil)
		}
	}
}

// Broadcast pushes a lead event to all local clients and relays it to other
// instances through Redis.
func (h *Hub) Broadcast(payload map[string]interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "lead",
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal broadcast", map[string]interface{}{"error": err.Error()})
		return
	}

	// With Redis present we only publish; the subscription loop delivers to
	// local clients too, so every instance (this one included) sees it once.
	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), leadFeedChannel, data).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay broadcast via Redis", map[string]interface{}{"error": err.Error()})
			h.sendLocal(data)
		}
		return
	}

	h.sendLocal(data)
}

func (h *Hub) sendLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// subscribeToRedis replays broadcasts published by other instances to the
// clients connected here.
func (h *Hub) subscribeToRedis() {
	pubsub := h.rdb.Subscribe(context.Background(), leadFeedChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.sendLocal([]byte(msg.Payload))
	}
}
