package realtime

import "sync"

// Client is one websocket session. A user may hold several concurrently
// (multiple tabs/devices); each gets its own send channel.
type Client struct {
	UserID uint
	Send   chan []byte
}

// NewClient creates a session handle for a verified user.
func NewClient(userID uint) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 256)}
}

// Hub is the connection registry: one broadcast channel per user id,
// holding every live session of that user. It is constructed once and
// injected wherever pushes originate; there is no package-level instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*Client]struct{})}
}

// Register subscribes a session to its user's channel.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions, ok := h.clients[client.UserID]
	if !ok {
		sessions = make(map[*Client]struct{})
		h.clients[client.UserID] = sessions
	}
	sessions[client] = struct{}{}
}

// Unregister removes a session and closes its send channel. Safe to call
// once per registered client.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := sessions[client]; !ok {
		return
	}
	delete(sessions, client)
	if len(sessions) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
}

// SendToUser delivers the payload to every live session of the user.
// Best-effort and at-most-once: an offline user receives nothing, and a
// session with a full buffer is skipped rather than blocking the caller.
func (h *Hub) SendToUser(userID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
			// slow consumer, drop rather than stall the send path
		}
	}
}

// SendToClient delivers the payload to one session only, used for error
// events that must not reach the user's other sessions.
func (h *Hub) SendToClient(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
	}
}

// IsOnline reports whether the user has at least one live session.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
