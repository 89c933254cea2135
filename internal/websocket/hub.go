package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/progress"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries progress events across instances so a client can
// watch a session that runs on another node.
const redisChannel = "progress_events"

type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// ConsumeProgress forwards live pipeline events from the in-process bus
// to the websocket clients watching that session. Blocks until the
// subscription closes, so run it in its own goroutine.
func (h *Hub) ConsumeProgress(ctx context.Context, pubSub *gochannel.GoChannel) error {
	messages, err := pubSub.Subscribe(ctx, progress.Topic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var bus progress.BusEvent
		if err := json.Unmarshal(msg.Payload, &bus); err != nil {
			h.logger.Warn("Hub", "Malformed progress bus event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}

		data, err := json.Marshal(bus.Event)
		if err != nil {
			msg.Ack()
			continue
		}

		h.Send(bus.SessionID, data)
		msg.Ack()
	}
	return nil
}

// Send delivers one progress event to the clients of a session. With
// Redis available it goes through the shared channel so every instance,
// including this one, delivers exactly once.
func (h *Hub) Send(sessionID string, data []byte) {
	if h.rdb != nil {
		payload := map[string]interface{}{
			"session_id": sessionID,
			"message":    json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), redisChannel, jsonPayload)
		return
	}

	h.deliverLocal(sessionID, data)
}

func (h *Hub) deliverLocal(sessionID string, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer: drop it. Run's unregister branch owns closing
			// the Send channel, never close it here.
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"session_id": sessionID})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers only
	// to sessions it has locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			SessionID string          `json:"session_id"`
			Message   json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.deliverLocal(payload.SessionID, payload.Message)
	}
}
