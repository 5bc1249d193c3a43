package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"notebook-markdown-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel carries notifications between server instances.
const clusterChannel = "notebook_events"

const NotebookRendered = "notebook_rendered"

type Notification struct {
	Type       string                 `json:"type"`
	NotebookId uuid.UUID              `json:"notebook_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

type clusterMessage struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	// Closed when Run returns.
	done chan struct{}

	mu sync.RWMutex

	// Optional. Without Redis only local clients are reached.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("HUB", "Client registered", map[string]interface{}{"user_id": client.UserID.String()})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It never blocks after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove closes the client's queue once. Unknown clients are ignored, so
// both pumps may unregister the same client.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}
}

// Send delivers a notification to every device of userID, on this instance
// or, through Redis, on any other.
func (h *Hub) Send(ctx context.Context, userID uuid.UUID, notification Notification) {
	data, err := json.Marshal(notification)
	if err != nil {
		return
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{TargetUserID: userID.String(), Message: data})
		err := h.rdb.Publish(ctx, clusterChannel, payload).Err()
		if err == nil {
			return
		}
		h.logger.Warn("HUB", "Redis publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
	}
	h.deliver(userID, data)
}

// NotifyRendered tells the owner that fresh Markdown is cached.
func (h *Hub) NotifyRendered(ctx context.Context, userId, notebookId uuid.UUID, bytes int) {
	h.Send(ctx, userId, Notification{
		Type:       NotebookRendered,
		NotebookId: notebookId,
		Data:       map[string]interface{}{"bytes": bytes},
	})
}

func (h *Hub) deliver(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("HUB", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": userID.String()})
			go h.Unregister(client)
		}
	}
}

func (h *Hub) connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// subscribeToRedis feeds messages published by any instance to the local
// clients they target.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("HUB", "Dropping malformed cluster message", map[string]interface{}{"error": err.Error()})
			continue
		}
		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliver(uid, payload.Message)
	}
}
