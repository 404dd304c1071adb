package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans live session telemetry out to websocket watchers. Every
// broadcast also goes through redis pub/sub so watchers connected to
// other instances see the same feed (live-following). Published messages
// carry the origin hub's ID so an instance never re-delivers its own
// broadcasts.
type Hub struct {
	id       string
	redis    *redis.Client
	watchers map[string]map[*Watcher]struct{}
	mu       sync.RWMutex
}

// Watcher is one websocket subscriber to a session's live feed. Slow
// watchers drop messages rather than stall the pipeline.
type Watcher struct {
	SessionID string
	Send      chan []byte
}

// envelope wraps a published payload with the originating hub ID.
type envelope struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		id:       uuid.NewString(),
		redis:    redisClient,
		watchers: map[string]map[*Watcher]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(sessionID string) *Watcher {
	w := &Watcher{
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[sessionID] == nil {
		h.watchers[sessionID] = map[*Watcher]struct{}{}
	}
	h.watchers[sessionID][w] = struct{}{}
	return w
}

func (h *Hub) Unregister(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionWatchers, ok := h.watchers[w.SessionID]; ok {
		delete(sessionWatchers, w)
		if len(sessionWatchers) == 0 {
			delete(h.watchers, w.SessionID)
		}
	}
	close(w.Send)
}

// Broadcast delivers one payload (a marshaled snapshot or lifecycle
// event) to local watchers and publishes it for remote instances.
func (h *Hub) Broadcast(sessionID string, payload []byte) {
	h.deliver(sessionID, payload)

	if h.redis != nil {
		msg, err := json.Marshal(envelope{Origin: h.id, Payload: payload})
		if err != nil {
			log.Printf("marshal broadcast envelope: %v", err)
			return
		}
		if err := h.redis.Publish(context.Background(), redisChannel(sessionID), msg).Err(); err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

// deliver sends to local watchers under the read lock so Unregister
// cannot close a channel mid-send. Sends never block, full watchers
// drop the message.
func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for w := range h.watchers[sessionID] {
		select {
		case w.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "ruck:*:live")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			continue
		}
		if env.Origin == h.id {
			// own publish, already delivered locally
			continue
		}
		h.deliver(sessionIDFromChannel(msg.Channel), env.Payload)
	}
}

func redisChannel(sessionID string) string {
	return "ruck:" + sessionID + ":live"
}

func sessionIDFromChannel(ch string) string {
	// ruck:{session}:live
	const prefix = "ruck:"
	const suffix = ":live"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
