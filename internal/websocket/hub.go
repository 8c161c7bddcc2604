package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"author-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RelayChannel carries repository events between instances.
const RelayChannel = "repository_events"

type relayMessage struct {
	InstanceID   string          `json:"instance_id"`
	RepositoryID int64           `json:"repository_id"`
	Message      json.RawMessage `json:"message"`
}

type Hub struct {
	// Rooms: RepositoryID -> connected clients
	rooms map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	mu sync.RWMutex

	// Redis connection for cross-instance communication, optional
	rdb        *redis.Client
	pubsub     *redis.PubSub
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		h.pubsub = h.rdb.Subscribe(context.Background(), RelayChannel)
		go h.relayFromRedis(h.pubsub.Channel())
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.RepositoryID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.RepositoryID] = room
			}
			room[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client joined repository", map[string]interface{}{
				"user_id":       client.UserID,
				"repository_id": client.RepositoryID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.RepositoryID]; ok && room[client] {
				delete(room, client)
				close(client.Send)
				if len(room) == 0 {
					delete(h.rooms, client.RepositoryID)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			if h.pubsub != nil {
				_ = h.pubsub.Close()
			}
			return
		}
	}
}

// join hands c to Run. It reports false once the hub is closed.
func (h *Hub) join(c *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave hands c to Run for removal. After Close there is no Run left to
// receive it, so it returns immediately.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Close stops Run and the redis relay.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) ClientCount(repositoryID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[repositoryID])
}

// SendToRepository delivers message to local clients of the repository and
// relays it to the other instances.
func (h *Hub) SendToRepository(repositoryID int64, message []byte) {
	h.deliver(repositoryID, message)

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(relayMessage{
		InstanceID:   h.instanceID,
		RepositoryID: repositoryID,
		Message:      message,
	})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), RelayChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to relay message", map[string]interface{}{
			"repository_id": repositoryID,
			"error":         err.Error(),
		})
	}
}

func (h *Hub) deliver(repositoryID int64, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[repositoryID] {
		select {
		case client.Send <- message:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{
				"user_id":       client.UserID,
				"repository_id": repositoryID,
			})
		}
	}
}

func (h *Hub) relayFromRedis(ch <-chan *redis.Message) {
	for msg := range ch {
		var payload relayMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		// Local clients already got our own messages
		if payload.InstanceID == h.instanceID {
			continue
		}
		h.deliver(payload.RepositoryID, payload.Message)
	}
}
