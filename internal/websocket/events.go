package websocket

import (
	"encoding/json"
	"time"

	"linkup/internal/models"

	"github.com/google/uuid"
)

// Server -> client event kinds.
const (
	EventNewMessage         = "message:new"
	EventNewNotification    = "notification:new"
	EventConnectionAccepted = "connection:accepted"
	EventUserTyping         = "user_typing"
	EventUserStatusChange   = "user_status_change"
)

// Client -> server event kinds.
const (
	ClientEventTyping          = "typing"
	ClientEventSetOnlineStatus = "set_online_status"
)

// Event is the framing for every server push: a kind plus a kind-specific
// payload.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// EncodeEvent serializes an event for the wire.
func EncodeEvent(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Payload: payload})
}

// ClientEvent is what connected clients may send upstream. Only typing
// indicators and status changes come from the socket; everything else goes
// through the REST API.
type ClientEvent struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId,omitempty"`
	IsTyping   bool   `json:"isTyping,omitempty"`
	Status     string `json:"status,omitempty"`
}

// MessagePayload is the message:new payload.
type MessagePayload struct {
	ID          uuid.UUID             `json:"id"`
	SenderID    uuid.UUID             `json:"senderId"`
	ReceiverID  uuid.UUID             `json:"receiverId"`
	Content     string                `json:"content"`
	MessageType models.MessageType    `json:"messageType"`
	MediaURL    string                `json:"mediaUrl,omitempty"`
	ReplyTo     *uuid.UUID            `json:"replyTo,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	Sender      *models.PublicProfile `json:"sender"`
}

// ConnectionAcceptedPayload is the connection:accepted payload, pushed to the
// original requester when the other side accepts.
type ConnectionAcceptedPayload struct {
	UserID  uuid.UUID `json:"userId"`
	Message string    `json:"message"`
}

// TypingPayload is the user_typing payload. Typing indicators are ephemeral:
// never persisted, dropped when the recipient is offline.
type TypingPayload struct {
	UserID   uuid.UUID `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

// StatusPayload is the user_status_change payload.
type StatusPayload struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)
