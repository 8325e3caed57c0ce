package actors

import (
	"log"
	"time"

	stdctx "context"

	"linkup/internal/models"
	"linkup/internal/utils"
	"linkup/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for NotificationActor
type (
	CreateNotificationMsg struct {
		RecipientID uuid.UUID
		SenderID    uuid.UUID
		Type        models.NotificationType
		Title       string
		Message     string
		Data        map[string]interface{}
	}

	ListNotificationsMsg struct {
		UserID uuid.UUID
		Limit  int
		Offset int
	}

	MarkNotificationReadMsg struct {
		NotificationID uuid.UUID
		UserID         uuid.UUID
	}

	MarkAllNotificationsReadMsg struct {
		UserID uuid.UUID
	}

	DeleteNotificationMsg struct {
		NotificationID uuid.UUID
		UserID         uuid.UUID
	}

	GetUnreadNotificationCountMsg struct {
		UserID uuid.UUID
	}
)

// NotificationPage is one page of a user's notifications plus counters.
type NotificationPage struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// NotificationActor owns the notification log. Notifications are persisted
// before the real-time push is attempted, and all mutations are scoped to
// the recipient.
type NotificationActor struct {
	store   NotificationStore
	pusher  Pusher
	metrics *utils.MetricsCollector
}

func NewNotificationActor(store NotificationStore, pusher Pusher, metrics *utils.MetricsCollector) *NotificationActor {
	return &NotificationActor{
		store:   store,
		pusher:  pusher,
		metrics: metrics,
	}
}

func (a *NotificationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreateNotificationMsg:
		a.handleCreate(context, msg)
	case *ListNotificationsMsg:
		a.handleList(context, msg)
	case *MarkNotificationReadMsg:
		a.handleMarkRead(context, msg)
	case *MarkAllNotificationsReadMsg:
		a.handleMarkAllRead(context, msg)
	case *DeleteNotificationMsg:
		a.handleDelete(context, msg)
	case *GetUnreadNotificationCountMsg:
		a.handleUnreadCount(context, msg)
	}
}

// respond replies only when there is a requester. Create is usually fired
// with Send from the message and connection actors, which have no interest
// in the result.
func respond(context actor.Context, result interface{}) {
	if context.Sender() != nil {
		context.Respond(result)
	}
}

func (a *NotificationActor) handleCreate(context actor.Context, msg *CreateNotificationMsg) {
	ctx := stdctx.Background()

	if !msg.Type.Valid() {
		respond(context, utils.NewValidationError("Invalid notification type: "+string(msg.Type)))
		return
	}
	if msg.Title == "" || msg.Message == "" {
		respond(context, utils.NewValidationError("Notification title and message are required"))
		return
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: msg.RecipientID,
		SenderID:    msg.SenderID,
		Type:        msg.Type,
		Title:       msg.Title,
		Message:     msg.Message,
		Data:        msg.Data,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}

	// Persist first; the push is a latency optimization, not the record.
	if err := a.store.SaveNotification(ctx, notification); err != nil {
		log.Printf("Failed to save %s notification for %s: %v", msg.Type, msg.RecipientID, err)
		respond(context, utils.NewAppError(utils.ErrDatabase, "Failed to save notification", err))
		return
	}

	a.metrics.NotificationsCreated.Inc()
	a.pusher.PushToUser(notification.RecipientID, websocket.EventNewNotification, notification)

	respond(context, notification)
}

func (a *NotificationActor) handleList(context actor.Context, msg *ListNotificationsMsg) {
	ctx := stdctx.Background()

	notifications, err := a.store.ListNotifications(ctx, msg.UserID, msg.Limit, msg.Offset)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list notifications", err))
		return
	}
	total, err := a.store.CountNotifications(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count notifications", err))
		return
	}
	unread, err := a.store.CountUnreadNotifications(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count unread notifications", err))
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	context.Respond(&NotificationPage{Notifications: notifications, Total: total, UnreadCount: unread})
}

func (a *NotificationActor) handleMarkRead(context actor.Context, msg *MarkNotificationReadMsg) {
	ctx := stdctx.Background()

	if err := a.store.MarkNotificationRead(ctx, msg.NotificationID, msg.UserID); err != nil {
		context.Respond(asAppError(err, "Failed to mark notification read"))
		return
	}
	context.Respond(true)
}

func (a *NotificationActor) handleMarkAllRead(context actor.Context, msg *MarkAllNotificationsReadMsg) {
	ctx := stdctx.Background()

	updated, err := a.store.MarkAllNotificationsRead(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to mark notifications read", err))
		return
	}
	context.Respond(updated)
}

func (a *NotificationActor) handleDelete(context actor.Context, msg *DeleteNotificationMsg) {
	ctx := stdctx.Background()

	if err := a.store.DeleteNotification(ctx, msg.NotificationID, msg.UserID); err != nil {
		context.Respond(asAppError(err, "Failed to delete notification"))
		return
	}
	context.Respond(true)
}

func (a *NotificationActor) handleUnreadCount(context actor.Context, msg *GetUnreadNotificationCountMsg) {
	ctx := stdctx.Background()

	count, err := a.store.CountUnreadNotifications(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count unread notifications", err))
		return
	}
	context.Respond(count)
}
