package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Client events are tiny JSON
	// frames; everything substantial goes through the REST API.
	maxMessageSize = 512
)

// Client is a middleman between one websocket connection and the hub. A user
// with several tabs open owns several clients.
type Client struct {
	Hub *Hub

	// The user ID this client represents.
	UserID uuid.UUID

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// OnStatusChange, when set, persists an explicit status change coming
	// from a set_online_status client event.
	OnStatusChange func(userID uuid.UUID, status string)
}

// ReadPump pumps client events from the websocket connection into the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for user %s: %v", c.UserID, err)
			}
			break
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("Malformed client event from user %s: %v", c.UserID, err)
			continue
		}
		c.handleClientEvent(&event)
	}
}

// handleClientEvent dispatches the two upstream event kinds. Typing
// indicators are pushed straight to the recipient with no persistence; if the
// recipient is offline the hub drops them.
func (c *Client) handleClientEvent(event *ClientEvent) {
	switch event.Type {
	case ClientEventTyping:
		receiverID, err := uuid.Parse(event.ReceiverID)
		if err != nil {
			log.Printf("Typing event with invalid receiverId from user %s", c.UserID)
			return
		}
		c.Hub.PushToUser(receiverID, EventUserTyping, TypingPayload{
			UserID:   c.UserID,
			IsTyping: event.IsTyping,
		})

	case ClientEventSetOnlineStatus:
		if event.Status == "" {
			return
		}
		if c.OnStatusChange != nil {
			c.OnStatusChange(c.UserID, event.Status)
		}
		c.Hub.BroadcastEvent(EventUserStatusChange, StatusPayload{
			UserID: c.UserID,
			Status: event.Status,
		})

	default:
		log.Printf("Unknown client event %q from user %s", event.Type, c.UserID)
	}
}

// WritePump pumps events from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("WebSocket write error (NextWriter) for user %s: %v", c.UserID, err)
				return
			}
			w.Write(message)

			// Flush any events queued behind this one into the same frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				log.Printf("WebSocket write error (Close) for user %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
