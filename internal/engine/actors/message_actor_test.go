package actors

import (
	"context"
	"strings"
	"testing"
	"time"

	"linkup/internal/models"
	"linkup/internal/utils"
	"linkup/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

type actorFixture struct {
	system          *actor.ActorSystem
	store           *memStore
	pusher          *fakePusher
	messagePID      *actor.PID
	notificationPID *actor.PID
	connectionPID   *actor.PID
}

func newActorFixture(t *testing.T) *actorFixture {
	t.Helper()

	system := actor.NewActorSystem()
	store := newMemStore()
	pusher := &fakePusher{}
	metrics := utils.NewMetricsCollector()

	notificationPID := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewNotificationActor(store, pusher, metrics)
	}))
	messagePID := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewMessageActor(store, pusher, notificationPID, metrics)
	}))
	connectionPID := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewConnectionActor(store, pusher, notificationPID, metrics)
	}))

	t.Cleanup(func() { _ = system.Root.StopFuture(messagePID).Wait() })

	return &actorFixture{
		system:          system,
		store:           store,
		pusher:          pusher,
		messagePID:      messagePID,
		notificationPID: notificationPID,
		connectionPID:   connectionPID,
	}
}

func (f *actorFixture) request(t *testing.T, pid *actor.PID, msg interface{}) interface{} {
	t.Helper()
	result, err := f.system.Root.RequestFuture(pid, msg, testTimeout).Result()
	require.NoError(t, err)
	return result
}

func newTestUser(username string, role models.Role) *models.User {
	return &models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		CreatedAt: time.Now(),
	}
}

func TestSendMessageBetweenConnections(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	bob := f.store.addUser(newTestUser("bob", models.RoleUser))
	f.store.connect(alice, bob)

	result := f.request(t, f.messagePID, &SendMessageMsg{
		SenderID:   alice.ID,
		ReceiverID: bob.ID,
		Content:    "Hello Bob",
	})

	message, ok := result.(*models.Message)
	require.True(t, ok, "expected *models.Message, got %T", result)
	assert.Equal(t, alice.ID, message.SenderID)
	assert.Equal(t, bob.ID, message.ReceiverID)
	assert.Equal(t, models.MessageTypeText, message.MessageType)
	assert.False(t, message.IsRead)

	// The message appears exactly once in the conversation from both sides.
	page := f.request(t, f.messagePID, &GetConversationMsg{UserID: bob.ID, OtherID: alice.ID, Limit: 50}).(*ConversationPage)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, message.ID, page.Messages[0].ID)
	assert.Equal(t, int64(1), page.Total)

	// Receiver got the real-time push, sender did not.
	pushes := f.pusher.eventsFor(bob.ID, websocket.EventNewMessage)
	require.Len(t, pushes, 1)
	payload := pushes[0].Payload.(*websocket.MessagePayload)
	assert.Equal(t, message.ID, payload.ID)
	assert.Equal(t, "alice", payload.Sender.Username)
	assert.Empty(t, f.pusher.eventsFor(alice.ID, websocket.EventNewMessage))

	// The MESSAGE notification lands asynchronously via the notification actor.
	assert.Eventually(t, func() bool {
		count, _ := f.store.CountNotifications(context.Background(), bob.ID)
		return count == 1
	}, testTimeout, 10*time.Millisecond)
	notifications, err := f.store.ListNotifications(context.Background(), bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationMessage, notifications[0].Type)
	assert.Equal(t, message.ID.String(), notifications[0].Data["messageId"])
}

func TestSendMessageRequiresConnection(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	mallory := f.store.addUser(newTestUser("mallory", models.RoleUser))

	result := f.request(t, f.messagePID, &SendMessageMsg{
		SenderID:   mallory.ID,
		ReceiverID: alice.ID,
		Content:    "Hi stranger",
	})

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// Nothing persisted, no notification, no push.
	count, err := f.store.CountConversationMessages(context.Background(), mallory.ID, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	notifCount, err := f.store.CountNotifications(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Zero(t, notifCount)
	assert.Empty(t, f.pusher.eventsFor(alice.ID, websocket.EventNewMessage))
}

func TestAdminCanMessageAnyone(t *testing.T) {
	f := newActorFixture(t)
	admin := f.store.addUser(newTestUser("root", models.RoleAdmin))
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))

	result := f.request(t, f.messagePID, &SendMessageMsg{
		SenderID:   admin.ID,
		ReceiverID: alice.ID,
		Content:    "Welcome aboard",
	})

	message, ok := result.(*models.Message)
	require.True(t, ok, "expected *models.Message, got %T", result)
	assert.Equal(t, admin.ID, message.SenderID)

	// Moderators get no such bypass.
	mod := f.store.addUser(newTestUser("mod", models.RoleModerator))
	result = f.request(t, f.messagePID, &SendMessageMsg{
		SenderID:   mod.ID,
		ReceiverID: alice.ID,
		Content:    "Hi",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestSendMessageValidation(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	bob := f.store.addUser(newTestUser("bob", models.RoleUser))
	f.store.connect(alice, bob)

	cases := []struct {
		name string
		msg  *SendMessageMsg
	}{
		{"empty content", &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: ""}},
		{"content too long", &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: strings.Repeat("a", models.MaxMessageLength+1)}},
		{"unknown type", &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi", MessageType: "voice"}},
		{"image without media url", &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: "look", MessageType: models.MessageTypeImage}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := f.request(t, f.messagePID, tc.msg)
			appErr, ok := result.(*utils.AppError)
			require.True(t, ok, "expected *utils.AppError, got %T", result)
			assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
		})
	}

	// A rejected send leaves the log untouched.
	count, err := f.store.CountConversationMessages(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Exactly the limit is still accepted.
	result := f.request(t, f.messagePID, &SendMessageMsg{
		SenderID:   alice.ID,
		ReceiverID: bob.ID,
		Content:    strings.Repeat("a", models.MaxMessageLength),
	})
	_, ok := result.(*models.Message)
	require.True(t, ok, "expected *models.Message, got %T", result)
}

func TestSendMessageToUnknownUser(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))

	result := f.request(t, f.messagePID, &SendMessageMsg{
		SenderID:   alice.ID,
		ReceiverID: uuid.New(),
		Content:    "anyone there?",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)
}

func TestGetConversationRequiresConnection(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	mallory := f.store.addUser(newTestUser("mallory", models.RoleUser))

	result := f.request(t, f.messagePID, &GetConversationMsg{UserID: mallory.ID, OtherID: alice.ID, Limit: 50})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestMarkConversationReadIsIdempotent(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	bob := f.store.addUser(newTestUser("bob", models.RoleUser))
	f.store.connect(alice, bob)

	for _, content := range []string{"one", "two"} {
		f.request(t, f.messagePID, &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: content})
	}

	result := f.request(t, f.messagePID, &MarkConversationReadMsg{ReaderID: bob.ID, OtherID: alice.ID}).(*MarkReadResult)
	assert.Equal(t, int64(2), result.UpdatedCount)
	assert.Equal(t, models.ConversationID(alice.ID, bob.ID), result.ConversationID)

	// A second pass finds nothing left to update.
	result = f.request(t, f.messagePID, &MarkConversationReadMsg{ReaderID: bob.ID, OtherID: alice.ID}).(*MarkReadResult)
	assert.Zero(t, result.UpdatedCount)

	unread := f.request(t, f.messagePID, &GetUnreadCountMsg{UserID: bob.ID}).(int64)
	assert.Zero(t, unread)
}

func TestReactionReplacesPreviousReaction(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	bob := f.store.addUser(newTestUser("bob", models.RoleUser))
	f.store.connect(alice, bob)

	sent := f.request(t, f.messagePID, &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"}).(*models.Message)

	f.request(t, f.messagePID, &ReactToMessageMsg{MessageID: sent.ID, UserID: bob.ID, Emoji: "👍"})
	result := f.request(t, f.messagePID, &ReactToMessageMsg{MessageID: sent.ID, UserID: bob.ID, Emoji: "🔥"})

	updated, ok := result.(*models.Message)
	require.True(t, ok, "expected *models.Message, got %T", result)
	require.Len(t, updated.Reactions, 1)
	assert.Equal(t, "🔥", updated.Reactions[0].Emoji)
	assert.Equal(t, bob.ID, updated.Reactions[0].UserID)
}

func TestReactionRequiresParticipant(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	bob := f.store.addUser(newTestUser("bob", models.RoleUser))
	mallory := f.store.addUser(newTestUser("mallory", models.RoleUser))
	f.store.connect(alice, bob)

	sent := f.request(t, f.messagePID, &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"}).(*models.Message)

	result := f.request(t, f.messagePID, &ReactToMessageMsg{MessageID: sent.ID, UserID: mallory.ID, Emoji: "👀"})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestDeleteMessageHidesItEverywhere(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	bob := f.store.addUser(newTestUser("bob", models.RoleUser))
	f.store.connect(alice, bob)

	sent := f.request(t, f.messagePID, &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: "oops"}).(*models.Message)

	result := f.request(t, f.messagePID, &DeleteMessageMsg{MessageID: sent.ID, UserID: bob.ID})
	assert.Equal(t, true, result)

	page := f.request(t, f.messagePID, &GetConversationMsg{UserID: alice.ID, OtherID: bob.ID, Limit: 50}).(*ConversationPage)
	assert.Empty(t, page.Messages)

	// The deleted message no longer anchors a conversation either.
	list := f.request(t, f.messagePID, &ListConversationsMsg{UserID: alice.ID}).(*ConversationListResult)
	assert.Empty(t, list.Conversations)

	// Deletion by a non-participant is rejected.
	other := f.request(t, f.messagePID, &SendMessageMsg{SenderID: alice.ID, ReceiverID: bob.ID, Content: "again"}).(*models.Message)
	mallory := f.store.addUser(newTestUser("mallory", models.RoleUser))
	denied := f.request(t, f.messagePID, &DeleteMessageMsg{MessageID: other.ID, UserID: mallory.ID})
	appErr, ok := denied.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestListConversations(t *testing.T) {
	f := newActorFixture(t)
	alice := f.store.addUser(newTestUser("alice", models.RoleUser))
	bob := f.store.addUser(newTestUser("bob", models.RoleUser))
	carol := f.store.addUser(newTestUser("carol", models.RoleUser))
	f.store.connect(alice, bob)
	f.store.connect(alice, carol)

	f.request(t, f.messagePID, &SendMessageMsg{SenderID: bob.ID, ReceiverID: alice.ID, Content: "first"})
	f.request(t, f.messagePID, &SendMessageMsg{SenderID: bob.ID, ReceiverID: alice.ID, Content: "second"})
	f.request(t, f.messagePID, &SendMessageMsg{SenderID: alice.ID, ReceiverID: carol.ID, Content: "hey carol"})

	list := f.request(t, f.messagePID, &ListConversationsMsg{UserID: alice.ID}).(*ConversationListResult)
	require.Len(t, list.Conversations, 2)
	assert.Empty(t, list.Mode)

	byUser := make(map[uuid.UUID]*ConversationEntry)
	for _, entry := range list.Conversations {
		byUser[entry.User.ID] = entry
	}
	require.Contains(t, byUser, bob.ID)
	require.Contains(t, byUser, carol.ID)
	assert.Equal(t, 2, byUser[bob.ID].UnreadCount)
	assert.Equal(t, "second", byUser[bob.ID].LastMessage.Content)
	// Alice sent the carol message herself, so nothing is unread there.
	assert.Zero(t, byUser[carol.ID].UnreadCount)
	assert.Equal(t, models.ConversationID(alice.ID, bob.ID), byUser[bob.ID].ID)
}

func TestListConversationsAdminMode(t *testing.T) {
	f := newActorFixture(t)
	admin := f.store.addUser(newTestUser("root", models.RoleAdmin))
	f.store.addUser(newTestUser("alice", models.RoleUser))
	f.store.addUser(newTestUser("bob", models.RoleUser))

	list := f.request(t, f.messagePID, &ListConversationsMsg{UserID: admin.ID}).(*ConversationListResult)
	assert.Equal(t, "admin", list.Mode)
	assert.Len(t, list.Users, 2)
	assert.Empty(t, list.Conversations)
}
