// Package policy is the single place that decides who may message or view
// whom. Handlers and actors must not re-derive the admin exception ad hoc.
package policy

import (
	"linkup/internal/models"

	"github.com/google/uuid"
)

// CanMessage reports whether sender may send a direct message to recipient.
// True iff the sender is an admin or the recipient is a mutual connection.
func CanMessage(sender *models.User, recipientID uuid.UUID) bool {
	if sender == nil {
		return false
	}
	if sender.IsAdmin() {
		return true
	}
	return sender.IsConnectedTo(recipientID)
}

// CanViewConversation reports whether requester may read the message history
// with otherParty. Same rule as CanMessage; a rejection surfaces as an
// authorization failure, never a silently-empty result.
func CanViewConversation(requester *models.User, otherParty uuid.UUID) bool {
	return CanMessage(requester, otherParty)
}
