package actors

import (
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	stdctx "context"

	"linkup/internal/models"
	"linkup/internal/policy"
	"linkup/internal/utils"
	"linkup/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for MessageActor
type (
	SendMessageMsg struct {
		SenderID    uuid.UUID
		ReceiverID  uuid.UUID
		Content     string
		MessageType models.MessageType
		MediaURL    string
		ReplyTo     *uuid.UUID
	}

	GetConversationMsg struct {
		UserID  uuid.UUID // requester
		OtherID uuid.UUID
		Limit   int
		Offset  int
	}

	MarkConversationReadMsg struct {
		ReaderID uuid.UUID
		OtherID  uuid.UUID
	}

	ListConversationsMsg struct {
		UserID uuid.UUID
	}

	ReactToMessageMsg struct {
		MessageID uuid.UUID
		UserID    uuid.UUID
		Emoji     string
	}

	DeleteMessageMsg struct {
		MessageID uuid.UUID
		UserID    uuid.UUID // The user deleting the message
	}

	GetUnreadCountMsg struct {
		UserID uuid.UUID
	}
)

// ConversationPage is one page of a two-party conversation, newest first.
type ConversationPage struct {
	Messages []*models.Message `json:"messages"`
	Total    int64             `json:"total"`
}

// MarkReadResult reports a bulk read-marking.
type MarkReadResult struct {
	ConversationID string `json:"conversationId"`
	UpdatedCount   int64  `json:"updatedCount"`
}

// ConversationEntry is one row of the conversation list, joined with the
// other party's public profile.
type ConversationEntry struct {
	ID          string                `json:"_id"`
	User        *models.PublicProfile `json:"user"`
	LastMessage *models.Message       `json:"lastMessage"`
	UnreadCount int                   `json:"unreadCount"`
}

// ConversationListResult is the conversation list. For admins the derived
// list is replaced by the whole active-user directory (Mode "admin") — a
// product rule, not a fallback.
type ConversationListResult struct {
	Mode          string                  `json:"mode,omitempty"`
	Users         []*models.PublicProfile `json:"users,omitempty"`
	Conversations []*ConversationEntry    `json:"conversations"`
}

// MessageActor owns the message log. Every send runs the access policy,
// persists first, then fires the notification and the real-time push;
// neither may fail the send once the write landed.
type MessageActor struct {
	store           MessageStore
	pusher          Pusher
	notificationPID *actor.PID
	metrics         *utils.MetricsCollector
}

func NewMessageActor(store MessageStore, pusher Pusher, notificationPID *actor.PID, metrics *utils.MetricsCollector) *MessageActor {
	return &MessageActor{
		store:           store,
		pusher:          pusher,
		notificationPID: notificationPID,
		metrics:         metrics,
	}
}

func (a *MessageActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *SendMessageMsg:
		a.handleSend(context, msg)
	case *GetConversationMsg:
		a.handleGetConversation(context, msg)
	case *MarkConversationReadMsg:
		a.handleMarkConversationRead(context, msg)
	case *ListConversationsMsg:
		a.handleListConversations(context, msg)
	case *ReactToMessageMsg:
		a.handleReact(context, msg)
	case *DeleteMessageMsg:
		a.handleDelete(context, msg)
	case *GetUnreadCountMsg:
		a.handleUnreadCount(context, msg)
	}
}

func validateSend(msg *SendMessageMsg) *utils.AppError {
	length := utf8.RuneCountInString(msg.Content)
	if length == 0 {
		return utils.NewValidationError("Message content is required")
	}
	if length > models.MaxMessageLength {
		return utils.NewValidationError(fmt.Sprintf("Message content exceeds %d characters", models.MaxMessageLength))
	}
	if !msg.MessageType.Valid() {
		return utils.NewValidationError("Invalid message type: " + string(msg.MessageType))
	}
	if msg.MessageType != models.MessageTypeText && msg.MediaURL == "" {
		return utils.NewValidationError("A media URL is required for non-text messages")
	}
	return nil
}

func (a *MessageActor) handleSend(context actor.Context, msg *SendMessageMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.MessageType == "" {
		msg.MessageType = models.MessageTypeText
	}
	if appErr := validateSend(msg); appErr != nil {
		context.Respond(appErr)
		return
	}

	sender, err := a.store.GetUser(ctx, msg.SenderID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load sender"))
		return
	}
	receiver, err := a.store.GetUser(ctx, msg.ReceiverID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load receiver"))
		return
	}

	if !policy.CanMessage(sender, receiver.ID) {
		context.Respond(utils.NewForbiddenError("You can only message your connections"))
		return
	}

	newMessage := &models.Message{
		ID:          uuid.New(),
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
		MediaURL:    msg.MediaURL,
		ReplyTo:     msg.ReplyTo,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}

	if err := a.store.SaveMessage(ctx, newMessage); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save message", err))
		return
	}

	a.metrics.MessagesSent.Inc()
	a.metrics.AddOperationLatency("send_message", time.Since(startTime))
	log.Printf("New message sent from %s to %s", sender.ID, receiver.ID)

	// The write is the durability guarantee. Notification and push are
	// fired after it and never fail the send.
	context.Send(a.notificationPID, &CreateNotificationMsg{
		RecipientID: receiver.ID,
		SenderID:    sender.ID,
		Type:        models.NotificationMessage,
		Title:       "New message",
		Message:     sender.Username + " sent you a message",
		Data: map[string]interface{}{
			"messageId":      newMessage.ID.String(),
			"conversationId": models.ConversationID(sender.ID, receiver.ID),
		},
	})

	a.pusher.PushToUser(receiver.ID, websocket.EventNewMessage, &websocket.MessagePayload{
		ID:          newMessage.ID,
		SenderID:    newMessage.SenderID,
		ReceiverID:  newMessage.ReceiverID,
		Content:     newMessage.Content,
		MessageType: newMessage.MessageType,
		MediaURL:    newMessage.MediaURL,
		ReplyTo:     newMessage.ReplyTo,
		CreatedAt:   newMessage.CreatedAt,
		Sender:      sender.Public(),
	})

	context.Respond(newMessage)
}

func (a *MessageActor) handleGetConversation(context actor.Context, msg *GetConversationMsg) {
	ctx := stdctx.Background()

	requester, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load requester"))
		return
	}
	other, err := a.store.GetUser(ctx, msg.OtherID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load user"))
		return
	}

	// Unauthorized views fail with 403 across all endpoints, never a
	// silently-empty result.
	if !policy.CanViewConversation(requester, other.ID) {
		context.Respond(utils.NewForbiddenError("You can only view conversations with your connections"))
		return
	}

	messages, err := a.store.GetConversation(ctx, requester.ID, other.ID, msg.Limit, msg.Offset)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to get conversation", err))
		return
	}
	total, err := a.store.CountConversationMessages(ctx, requester.ID, other.ID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count conversation", err))
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	context.Respond(&ConversationPage{Messages: messages, Total: total})
}

func (a *MessageActor) handleMarkConversationRead(context actor.Context, msg *MarkConversationReadMsg) {
	ctx := stdctx.Background()

	updated, err := a.store.MarkConversationRead(ctx, msg.ReaderID, msg.OtherID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to mark conversation read", err))
		return
	}
	context.Respond(&MarkReadResult{
		ConversationID: models.ConversationID(msg.ReaderID, msg.OtherID),
		UpdatedCount:   updated,
	})
}

func (a *MessageActor) handleListConversations(context actor.Context, msg *ListConversationsMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load user"))
		return
	}

	// Admins see the whole directory as potential conversation targets
	// instead of a connections-derived list.
	if user.IsAdmin() {
		activeUsers, err := a.store.ListActiveUsers(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list users", err))
			return
		}
		profiles := make([]*models.PublicProfile, 0, len(activeUsers))
		for _, u := range activeUsers {
			profiles = append(profiles, u.Public())
		}
		context.Respond(&ConversationListResult{
			Mode:          "admin",
			Users:         profiles,
			Conversations: []*ConversationEntry{},
		})
		return
	}

	messages, err := a.store.GetMessagesByUser(ctx, user.ID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load messages", err))
		return
	}

	summaries := models.DeriveConversations(messages, user.ID)

	otherIDs := make([]uuid.UUID, 0, len(summaries))
	for _, s := range summaries {
		otherIDs = append(otherIDs, s.OtherUserID)
	}
	others, err := a.store.FindUsersByIDs(ctx, otherIDs)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load conversation partners", err))
		return
	}
	profileByID := make(map[uuid.UUID]*models.PublicProfile, len(others))
	for _, u := range others {
		profileByID[u.ID] = u.Public()
	}

	entries := make([]*ConversationEntry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, &ConversationEntry{
			ID:          s.ID,
			User:        profileByID[s.OtherUserID],
			LastMessage: s.LastMessage,
			UnreadCount: s.UnreadCount,
		})
	}

	a.metrics.AddOperationLatency("list_conversations", time.Since(startTime))
	context.Respond(&ConversationListResult{Conversations: entries})
}

func (a *MessageActor) handleReact(context actor.Context, msg *ReactToMessageMsg) {
	ctx := stdctx.Background()

	if msg.Emoji == "" {
		context.Respond(utils.NewValidationError("An emoji is required"))
		return
	}

	message, err := a.store.GetMessage(ctx, msg.MessageID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load message"))
		return
	}
	if !message.Involves(msg.UserID) {
		context.Respond(utils.NewForbiddenError("Only conversation participants may react"))
		return
	}

	if err := a.store.UpsertReaction(ctx, msg.MessageID, msg.UserID, msg.Emoji); err != nil {
		context.Respond(asAppError(err, "Failed to save reaction"))
		return
	}

	updated, err := a.store.GetMessage(ctx, msg.MessageID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to reload message"))
		return
	}
	context.Respond(updated)
}

func (a *MessageActor) handleDelete(context actor.Context, msg *DeleteMessageMsg) {
	ctx := stdctx.Background()

	message, err := a.store.GetMessage(ctx, msg.MessageID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load message"))
		return
	}
	// Only the sender or receiver may delete the message.
	if !message.Involves(msg.UserID) {
		context.Respond(utils.NewForbiddenError("Only conversation participants may delete a message"))
		return
	}

	if err := a.store.SoftDeleteMessage(ctx, msg.MessageID, msg.UserID); err != nil {
		context.Respond(asAppError(err, "Failed to delete message"))
		return
	}
	context.Respond(true)
}

func (a *MessageActor) handleUnreadCount(context actor.Context, msg *GetUnreadCountMsg) {
	ctx := stdctx.Background()

	count, err := a.store.CountUnread(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count unread messages", err))
		return
	}
	context.Respond(count)
}

// asAppError passes AppErrors through unchanged and wraps anything else as a
// database failure.
func asAppError(err error, fallback string) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewAppError(utils.ErrDatabase, fallback, err)
}
