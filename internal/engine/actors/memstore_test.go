package actors

import (
	"context"
	"sort"
	"sync"
	"time"

	"linkup/internal/models"
	"linkup/internal/utils"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the MongoDB repositories, matching
// their error semantics so actor tests run without a database.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	messages      map[uuid.UUID]*models.Message
	notifications map[uuid.UUID]*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*models.User),
		messages:      make(map[uuid.UUID]*models.Message),
		notifications: make(map[uuid.UUID]*models.Notification),
	}
}

func (s *memStore) addUser(user *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return user
}

func (s *memStore) connect(a, b *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Connections = append(a.Connections, b.ID)
	b.Connections = append(b.Connections, a.ID)
}

func (s *memStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	return user, nil
}

func (s *memStore) FindUsersByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*models.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *memStore) ListActiveUsers(_ context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*models.User
	for _, user := range s.users {
		if !user.IsAdmin() {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *memStore) AddPendingRequest(_ context.Context, from, to uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	receiver, ok := s.users[to]
	if !ok {
		return utils.NewUserNotFoundError(to.String())
	}
	if receiver.HasPendingRequestFrom(from) {
		return utils.NewAppError(utils.ErrDuplicate, "Connection request already pending", nil)
	}
	sentAt := time.Now()
	receiver.ConnectionRequests = append(receiver.ConnectionRequests, models.ConnectionRequest{From: from, SentAt: sentAt})
	if sender, ok := s.users[from]; ok {
		sender.SentRequests = append(sender.SentRequests, models.SentRequest{To: to, SentAt: sentAt})
	}
	return nil
}

func (s *memStore) RemovePendingRequest(_ context.Context, from, to uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPending(from, to)
	s.clearPending(to, from)
	return nil
}

// clearPending removes the from->to request from both mirrored lists.
func (s *memStore) clearPending(from, to uuid.UUID) {
	if receiver, ok := s.users[to]; ok {
		kept := receiver.ConnectionRequests[:0]
		for _, req := range receiver.ConnectionRequests {
			if req.From != from {
				kept = append(kept, req)
			}
		}
		receiver.ConnectionRequests = kept
	}
	if sender, ok := s.users[from]; ok {
		kept := sender.SentRequests[:0]
		for _, req := range sender.SentRequests {
			if req.To != to {
				kept = append(kept, req)
			}
		}
		sender.SentRequests = kept
	}
}

func (s *memStore) AddConnection(ctx context.Context, a, b uuid.UUID) error {
	if err := s.RemovePendingRequest(ctx, a, b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userA, ok := s.users[a]
	if !ok {
		return utils.NewUserNotFoundError(a.String())
	}
	userB, ok := s.users[b]
	if !ok {
		return utils.NewUserNotFoundError(b.String())
	}
	if !userA.IsConnectedTo(b) {
		userA.Connections = append(userA.Connections, b)
	}
	if !userB.IsConnectedTo(a) {
		userB.Connections = append(userB.Connections, a)
	}
	return nil
}

func (s *memStore) SaveMessage(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[message.ID] = message
	return nil
}

func (s *memStore) GetMessage(_ context.Context, messageID uuid.UUID) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[messageID]
	if !ok {
		return nil, utils.NewMessageNotFoundError(messageID.String())
	}
	return message, nil
}

func (s *memStore) conversationMessages(a, b uuid.UUID) []*models.Message {
	var result []*models.Message
	for _, m := range s.messages {
		if m.IsDeleted {
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (s *memStore) GetConversation(_ context.Context, a, b uuid.UUID, limit, offset int) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.conversationMessages(a, b)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) CountConversationMessages(_ context.Context, a, b uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.conversationMessages(a, b))), nil
}

func (s *memStore) GetMessagesByUser(_ context.Context, userID uuid.UUID) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Message
	for _, m := range s.messages {
		if !m.IsDeleted && m.Involves(userID) {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (s *memStore) MarkConversationRead(_ context.Context, reader, other uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var updated int64
	for _, m := range s.messages {
		if m.SenderID == other && m.ReceiverID == reader && !m.IsRead && !m.IsDeleted {
			m.IsRead = true
			m.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func (s *memStore) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.IsRead && !m.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (s *memStore) UpsertReaction(_ context.Context, messageID, userID uuid.UUID, emoji string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[messageID]
	if !ok {
		return utils.NewMessageNotFoundError(messageID.String())
	}
	kept := message.Reactions[:0]
	for _, r := range message.Reactions {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	message.Reactions = append(kept, models.Reaction{UserID: userID, Emoji: emoji})
	return nil
}

func (s *memStore) SoftDeleteMessage(_ context.Context, messageID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[messageID]
	if !ok {
		return utils.NewMessageNotFoundError(messageID.String())
	}
	message.IsDeleted = true
	message.DeletedBy = append(message.DeletedBy, models.Deletion{UserID: userID, DeletedAt: time.Now()})
	return nil
}

func (s *memStore) SaveNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	return nil
}

func (s *memStore) ListNotifications(_ context.Context, recipientID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (s *memStore) CountNotifications(_ context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			count++
		}
	}
	return count, nil
}

func (s *memStore) CountUnreadNotifications(_ context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memStore) MarkNotificationRead(_ context.Context, notificationID, recipientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.RecipientID != recipientID {
		return utils.NewNotificationNotFoundError(notificationID.String())
	}
	n.IsRead = true
	return nil
}

func (s *memStore) MarkAllNotificationsRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (s *memStore) DeleteNotification(_ context.Context, notificationID, recipientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.RecipientID != recipientID {
		return utils.NewNotificationNotFoundError(notificationID.String())
	}
	delete(s.notifications, notificationID)
	return nil
}

// pushedEvent is one recorded fan-out attempt.
type pushedEvent struct {
	Target    uuid.UUID
	EventType string
	Payload   interface{}
}

// fakePusher records pushes instead of delivering them.
type fakePusher struct {
	mu     sync.Mutex
	pushes []pushedEvent
}

func (p *fakePusher) PushToUser(target uuid.UUID, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushedEvent{Target: target, EventType: eventType, Payload: payload})
}

func (p *fakePusher) BroadcastEvent(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushedEvent{Target: uuid.Nil, EventType: eventType, Payload: payload})
}

func (p *fakePusher) eventsFor(target uuid.UUID, eventType string) []pushedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []pushedEvent
	for _, e := range p.pushes {
		if e.Target == target && e.EventType == eventType {
			result = append(result, e)
		}
	}
	return result
}
