package chat

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub maintains the set of connected sessions and the channels each has
// joined, and fans frames out to every session in a channel.
//
// Membership is mutated by join/leave/disconnect from arbitrary sessions
// concurrently; Publish takes a consistent snapshot of the members at time of
// send. A session joining mid-publish may miss that frame but receives all
// subsequent ones.
type Hub struct {
	mu sync.RWMutex
	// rooms maps a channel key to the sessions currently joined to it.
	rooms map[string]map[*Client]bool
	// sessions maps each connected session to the set of keys it has joined.
	sessions map[*Client]map[string]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]bool),
		sessions: make(map[*Client]map[string]bool),
	}
}

// Run blocks until the context is canceled, then closes every connected
// session. Designed to run as a single goroutine for the life of the process.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.closeAll()
	log.Info().Str("component", "chat-hub").Msg("chat hub stopped")
	return ctx.Err()
}

// Attach registers a session. Registration is synchronous: once Attach
// returns, a join issued by the session will find it.
func (h *Hub) Attach(client *Client) {
	h.mu.Lock()
	h.sessions[client] = make(map[string]bool)
	total := len(h.sessions)
	h.mu.Unlock()
	log.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("chat client connected")
}

// Detach removes a session from every channel and closes its send channel.
// Safe to call more than once; a session already evicted by Publish is gone.
func (h *Hub) Detach(client *Client) {
	h.mu.Lock()
	if _, ok := h.sessions[client]; ok {
		h.drop(client)
		client.closeSend()
	}
	total := len(h.sessions)
	h.mu.Unlock()
	log.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("chat client disconnected")
}

// Join adds the session to a channel. Idempotent; a session may be joined to
// several channels at once, one per open conversation view.
func (h *Hub) Join(client *Client, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.sessions[client]
	if !ok {
		// Session already detached; nothing to join.
		return
	}
	joined[key] = true

	room := h.rooms[key]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[key] = room
	}
	room[client] = true
}

// Leave removes the session from a channel. No-op when not joined.
func (h *Hub) Leave(client *Client, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if joined, ok := h.sessions[client]; ok {
		delete(joined, key)
	}
	h.removeFromRoom(client, key)
}

// Publish delivers a frame to every session currently joined to the channel.
// Sessions whose send buffer is full are evicted: a client that cannot keep
// up is indistinguishable from a dead connection.
func (h *Hub) Publish(key string, frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[key]
	if len(room) == 0 {
		return
	}

	// Stable delivery order keeps fan-out reproducible in tests.
	members := make([]*Client, 0, len(room))
	for client := range room {
		members = append(members, client)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].id < members[j].id })

	var evict []*Client
	for _, client := range members {
		select {
		case client.send <- frame:
		default:
			evict = append(evict, client)
		}
	}

	for _, client := range evict {
		log.Warn().Uint64("client_id", client.id).Str("channel", key).Msg("evicting slow chat client")
		h.drop(client)
		client.closeSend()
	}
}

// UserJoined reports whether any session belonging to the user is currently
// joined to the channel. The chat service uses this to decide between live
// fan-out and the push-notification fallback.
func (h *Hub) UserJoined(key, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[key] {
		if client.userID == userID {
			return true
		}
	}
	return false
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// drop removes a session from every room and from the session registry.
// Caller must hold the write lock.
func (h *Hub) drop(client *Client) {
	for key := range h.sessions[client] {
		h.removeFromRoom(client, key)
	}
	delete(h.sessions, client)
}

// removeFromRoom drops the session from one room, deleting the room when it
// empties. Caller must hold the write lock.
func (h *Hub) removeFromRoom(client *Client, key string) {
	room := h.rooms[key]
	if room == nil {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, key)
	}
}

// closeAll closes every connected session during shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.sessions))
	for client := range h.sessions {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		h.drop(client)
		client.closeSend()
	}
}
