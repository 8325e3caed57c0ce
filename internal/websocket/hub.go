package websocket

import (
	"log"
	"sync"
	"time"

	"linkup/internal/utils"

	"github.com/google/uuid"
)

// MessageToSend defines the structure for pushing an event to a specific user.
type MessageToSend struct {
	TargetUserID uuid.UUID
	Payload      []byte
}

// Hub is the presence registry and fan-out channel. It maps each
// authenticated user id to the set of live connections for that user
// (multiple tabs/devices all receive pushes) and pushes serialized events to
// them. Presence is process-local and in-memory only; losing it on restart is
// expected, clients reconnect and rejoin their room.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	clients map[uuid.UUID]map[*Client]bool

	// Payloads pushed to every connected client (status broadcasts).
	Broadcast chan []byte

	// Events targeted at a single user's connections.
	SendDirect chan *MessageToSend

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	metrics *utils.MetricsCollector

	// Protects the clients map.
	mu sync.RWMutex
}

func NewHub(metrics *utils.MetricsCollector) *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		SendDirect: make(chan *MessageToSend),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]map[*Client]bool),
		metrics:    metrics,
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			firstConnection := len(h.clients[client.UserID]) == 0
			if _, ok := h.clients[client.UserID]; !ok {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.metrics.WSConnections.Inc()
			log.Printf("WebSocket client registered for user %s. Connections for user: %d", client.UserID, len(h.clients[client.UserID]))
			if firstConnection {
				h.broadcastLocked(client.UserID, h.statusEvent(client.UserID, StatusOnline))
			}
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					close(client.Send)
					h.metrics.WSConnections.Dec()
					if len(userClients) == 0 {
						delete(h.clients, client.UserID)
						log.Printf("WebSocket client unregistered. User %s has no more connections.", client.UserID)
						// Presence-offline fires only when the last tab goes away.
						h.broadcastLocked(client.UserID, h.statusEvent(client.UserID, StatusOffline))
					} else {
						log.Printf("WebSocket client unregistered for user %s. Remaining connections: %d", client.UserID, len(userClients))
					}
				}
			}
			h.mu.Unlock()

		case payload := <-h.Broadcast:
			h.mu.RLock()
			h.broadcastLocked(uuid.Nil, payload)
			h.mu.RUnlock()

		case directMessage := <-h.SendDirect:
			h.mu.RLock()
			userClients, ok := h.clients[directMessage.TargetUserID]
			if ok && len(userClients) > 0 {
				for client := range userClients {
					select {
					case client.Send <- directMessage.Payload:
					default:
						log.Printf("Send channel full for a client of user %s. Event dropped for this connection.", client.UserID)
					}
				}
				h.metrics.PushesDelivered.Inc()
			} else {
				// No live connections: drop silently. The persisted log is the
				// source of truth; the recipient catches up on next poll.
				h.metrics.PushesDropped.Inc()
				log.Printf("User %s not connected, dropping real-time event.", directMessage.TargetUserID)
			}
			h.mu.RUnlock()
		}
	}
}

// broadcastLocked queues the payload to every connection except those
// belonging to skipUser. Callers must hold at least a read lock.
func (h *Hub) broadcastLocked(skipUser uuid.UUID, payload []byte) {
	if payload == nil {
		return
	}
	for userID, userClients := range h.clients {
		if userID == skipUser {
			continue
		}
		for client := range userClients {
			select {
			case client.Send <- payload:
			default:
				log.Printf("Broadcast send buffer full for a client of user %s", client.UserID)
			}
		}
	}
}

func (h *Hub) statusEvent(userID uuid.UUID, status string) []byte {
	payload, err := EncodeEvent(EventUserStatusChange, StatusPayload{UserID: userID, Status: status})
	if err != nil {
		log.Printf("Failed to encode status event: %v", err)
		return nil
	}
	return payload
}

// PushToUser serializes the event and queues it for every live connection of
// the target user. Best-effort: a failure here is logged and swallowed, never
// surfaced to the caller, since the triggering write already persisted.
func (h *Hub) PushToUser(targetUserID uuid.UUID, eventType string, payload interface{}) {
	data, err := EncodeEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to encode %s event for user %s: %v", eventType, targetUserID, err)
		return
	}

	message := &MessageToSend{
		TargetUserID: targetUserID,
		Payload:      data,
	}
	select {
	case h.SendDirect <- message:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing %s event for user %s. Hub might be busy or blocked.", eventType, targetUserID)
	}
}

// BroadcastEvent serializes the event and queues it to every connection.
func (h *Hub) BroadcastEvent(eventType string, payload interface{}) {
	data, err := EncodeEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to encode %s broadcast: %v", eventType, err)
		return
	}
	select {
	case h.Broadcast <- data:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing %s broadcast. Hub might be busy or blocked.", eventType)
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
