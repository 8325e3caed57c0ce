package actors

import (
	"context"

	"linkup/internal/models"

	"github.com/google/uuid"
)

// DirectoryStore is the persisted user directory: profiles plus the
// connection lists that gate who may message whom.
type DirectoryStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	ListActiveUsers(ctx context.Context) ([]*models.User, error)
	AddPendingRequest(ctx context.Context, from, to uuid.UUID) error
	RemovePendingRequest(ctx context.Context, from, to uuid.UUID) error
	AddConnection(ctx context.Context, a, b uuid.UUID) error
}

// MessageStore is the append-only direct message log. Conversations, unread
// counts and read state are all derived from it.
type MessageStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	ListActiveUsers(ctx context.Context) ([]*models.User, error)
	SaveMessage(ctx context.Context, message *models.Message) error
	GetMessage(ctx context.Context, messageID uuid.UUID) (*models.Message, error)
	GetConversation(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*models.Message, error)
	CountConversationMessages(ctx context.Context, a, b uuid.UUID) (int64, error)
	GetMessagesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error)
	MarkConversationRead(ctx context.Context, reader, other uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	UpsertReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error
	SoftDeleteMessage(ctx context.Context, messageID, userID uuid.UUID) error
}

// NotificationStore is the append-only notification log, independent of the
// message log but written by the same actions.
type NotificationStore interface {
	SaveNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	CountNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error)
	CountUnreadNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkNotificationRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, notificationID, recipientID uuid.UUID) error
}

// Pusher is the best-effort real-time channel. Implemented by the websocket
// hub; pushes to offline users are dropped, persistence is the durability
// guarantee.
type Pusher interface {
	PushToUser(targetUserID uuid.UUID, eventType string, payload interface{})
	BroadcastEvent(eventType string, payload interface{})
}
