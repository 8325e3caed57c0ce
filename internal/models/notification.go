package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates the user-facing events the notification log
// records. Notifications are created alongside the triggering action and are
// never the sole record of it.
type NotificationType string

const (
	NotificationConnectionRequest    NotificationType = "CONNECTION_REQUEST"
	NotificationConnectionAccepted   NotificationType = "CONNECTION_ACCEPTED"
	NotificationMessage              NotificationType = "MESSAGE"
	NotificationPostFromConnection   NotificationType = "POST_FROM_CONNECTION"
	NotificationPostLike             NotificationType = "POST_LIKE"
	NotificationPostComment          NotificationType = "POST_COMMENT"
	NotificationPostShared           NotificationType = "POST_SHARED"
	NotificationJobApplication       NotificationType = "JOB_APPLICATION"
	NotificationJobApplicationUpdate NotificationType = "JOB_APPLICATION_UPDATE"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationConnectionRequest, NotificationConnectionAccepted,
		NotificationMessage, NotificationPostFromConnection,
		NotificationPostLike, NotificationPostComment, NotificationPostShared,
		NotificationJobApplication, NotificationJobApplicationUpdate:
		return true
	}
	return false
}

type Notification struct {
	ID          uuid.UUID              `json:"id"`
	RecipientID uuid.UUID              `json:"recipientId"`
	SenderID    uuid.UUID              `json:"senderId"`
	Type        NotificationType       `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	IsRead      bool                   `json:"isRead"`
	CreatedAt   time.Time              `json:"createdAt"`
}
