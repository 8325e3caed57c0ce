package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes plain text from media-bearing messages. Non-text
// messages must carry a media URL.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
	MessageTypeLink  MessageType = "link"
)

// MaxMessageLength bounds message content.
const MaxMessageLength = 2000

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeLink:
		return true
	}
	return false
}

// Reaction is a single user's emoji on a message. A user has at most one;
// re-reacting replaces the emoji.
type Reaction struct {
	UserID uuid.UUID `json:"userId"`
	Emoji  string    `json:"emoji"`
}

// Deletion records who soft-deleted the message and when. Deleting hides the
// message for both parties; the list is an audit trail, not a per-party
// visibility filter.
type Deletion struct {
	UserID    uuid.UUID `json:"userId"`
	DeletedAt time.Time `json:"deletedAt"`
}

type Message struct {
	ID          uuid.UUID   `json:"id"`
	SenderID    uuid.UUID   `json:"senderId"`
	ReceiverID  uuid.UUID   `json:"receiverId"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	MediaURL    string      `json:"mediaUrl,omitempty"`
	IsRead      bool        `json:"isRead"`
	ReadAt      *time.Time  `json:"readAt,omitempty"`
	IsDeleted   bool        `json:"isDeleted"`
	DeletedBy   []Deletion  `json:"deletedBy,omitempty"`
	ReplyTo     *uuid.UUID  `json:"replyTo,omitempty"`
	Reactions   []Reaction  `json:"reactions,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Involves reports whether the user is the sender or the receiver.
func (m *Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// OtherParty returns the opposite end of the message relative to userID.
func (m *Message) OtherParty(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
