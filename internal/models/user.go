package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user may do beyond their own data. Admins bypass
// the connection requirement for messaging and conversation views.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// ConnectionRequest is a pending request received from another user.
type ConnectionRequest struct {
	From   uuid.UUID `json:"from"`
	SentAt time.Time `json:"sentAt"`
}

// SentRequest mirrors the receiver's ConnectionRequest entry. Both sides are
// updated together so the two lists stay consistent.
type SentRequest struct {
	To     uuid.UUID `json:"to"`
	SentAt time.Time `json:"sentAt"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Headline       string    `json:"headline,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	Role           Role      `json:"role"`

	// Connections is symmetric: A holds B iff B holds A.
	Connections        []uuid.UUID         `json:"connections"`
	ConnectionRequests []ConnectionRequest `json:"connectionRequests"`
	SentRequests       []SentRequest       `json:"sentRequests"`

	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsConnectedTo reports whether other is in the user's connection list.
func (u *User) IsConnectedTo(other uuid.UUID) bool {
	for _, id := range u.Connections {
		if id == other {
			return true
		}
	}
	return false
}

// HasPendingRequestFrom reports whether the user has a pending request
// received from the given sender.
func (u *User) HasPendingRequestFrom(sender uuid.UUID) bool {
	for _, req := range u.ConnectionRequests {
		if req.From == sender {
			return true
		}
	}
	return false
}

// HasSentRequestTo reports whether the user already has an outstanding
// request addressed to the given receiver.
func (u *User) HasSentRequestTo(receiver uuid.UUID) bool {
	for _, req := range u.SentRequests {
		if req.To == receiver {
			return true
		}
	}
	return false
}

// PublicProfile is the subset of user fields safe to embed in message and
// conversation payloads.
type PublicProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"name"`
	Avatar   string    `json:"avatar,omitempty"`
	Headline string    `json:"headline,omitempty"`
	Role     Role      `json:"role"`
	Status   string    `json:"status,omitempty"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Headline: u.Headline,
		Role:     u.Role,
		Status:   u.Status,
	}
}
