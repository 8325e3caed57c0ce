package models

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ConversationID derives the canonical identity of a conversation from the
// unordered pair of participants. Two users have exactly one conversation
// regardless of who sent first; there is no stored conversation entity.
func ConversationID(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if strings.Compare(first, second) > 0 {
		first, second = second, first
	}
	return first + ":" + second
}

// ConversationSummary is one row of a user's conversation list, derived
// entirely from the flat message log.
type ConversationSummary struct {
	ID          string    `json:"_id"`
	OtherUserID uuid.UUID `json:"-"`
	LastMessage *Message  `json:"lastMessage"`
	UnreadCount int       `json:"unreadCount"`
}

// DeriveConversations groups the given messages by the other party relative
// to userID, keeps the most recent message per group, and counts unread
// messages addressed to userID. Soft-deleted messages are ignored, so a
// conversation whose messages are all deleted never appears. The result is
// sorted by last-message time, newest first.
func DeriveConversations(messages []*Message, userID uuid.UUID) []*ConversationSummary {
	byOther := make(map[uuid.UUID]*ConversationSummary)

	for _, msg := range messages {
		if msg.IsDeleted || !msg.Involves(userID) {
			continue
		}
		other := msg.OtherParty(userID)
		summary, ok := byOther[other]
		if !ok {
			summary = &ConversationSummary{
				ID:          ConversationID(userID, other),
				OtherUserID: other,
			}
			byOther[other] = summary
		}
		if summary.LastMessage == nil || msg.CreatedAt.After(summary.LastMessage.CreatedAt) {
			summary.LastMessage = msg
		}
		if msg.ReceiverID == userID && !msg.IsRead {
			summary.UnreadCount++
		}
	}

	summaries := make([]*ConversationSummary, 0, len(byOther))
	for _, summary := range byOther {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries
}
