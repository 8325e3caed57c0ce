package database

import (
	"context"
	"fmt"
	"time"

	"linkup/internal/models"
	"linkup/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationDocument represents the MongoDB document structure for notifications
type NotificationDocument struct {
	ID          string                 `bson:"_id"`
	RecipientID string                 `bson:"recipientId"`
	SenderID    string                 `bson:"senderId"`
	Type        string                 `bson:"type"`
	Title       string                 `bson:"title"`
	Message     string                 `bson:"message"`
	Data        map[string]interface{} `bson:"data,omitempty"`
	IsRead      bool                   `bson:"isRead"`
	CreatedAt   time.Time              `bson:"createdAt"`
}

func documentToNotification(doc *NotificationDocument) (*models.Notification, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID in database: %v", err)
	}
	recipientID, err := uuid.Parse(doc.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient ID in database: %v", err)
	}
	senderID, err := uuid.Parse(doc.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID in database: %v", err)
	}

	return &models.Notification{
		ID:          id,
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationType(doc.Type),
		Title:       doc.Title,
		Message:     doc.Message,
		Data:        doc.Data,
		IsRead:      doc.IsRead,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// SaveNotification appends a notification to the log. Persistence happens
// before any real-time push is attempted.
func (m *MongoDB) SaveNotification(ctx context.Context, n *models.Notification) error {
	doc := NotificationDocument{
		ID:          n.ID.String(),
		RecipientID: n.RecipientID.String(),
		SenderID:    n.SenderID.String(),
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Data:        n.Data,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}

	_, err := m.Notifications.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save notification: %v", err)
	}
	return nil
}

// ListNotifications returns one page of the recipient's notifications,
// newest first.
func (m *MongoDB) ListNotifications(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := m.Notifications.Find(ctx, bson.M{"recipientId": recipientID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	for cursor.Next(ctx) {
		var doc NotificationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %v", err)
		}
		n, err := documentToNotification(&doc)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, cursor.Err()
}

// CountNotifications counts all notifications for the recipient.
func (m *MongoDB) CountNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return m.Notifications.CountDocuments(ctx, bson.M{"recipientId": recipientID.String()})
}

// CountUnreadNotifications counts the recipient's unread notifications.
func (m *MongoDB) CountUnreadNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return m.Notifications.CountDocuments(ctx, bson.M{
		"recipientId": recipientID.String(),
		"isRead":      false,
	})
}

// MarkNotificationRead marks one notification read. The filter carries both
// the id and the recipient, so a notification owned by someone else reads as
// not found rather than forbidden.
func (m *MongoDB) MarkNotificationRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	result, err := m.Notifications.UpdateOne(ctx,
		bson.M{"_id": notificationID.String(), "recipientId": recipientID.String()},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotificationNotFoundError(notificationID.String())
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification for the recipient
// and returns the number updated.
func (m *MongoDB) MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result, err := m.Notifications.UpdateMany(ctx,
		bson.M{"recipientId": recipientID.String(), "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %v", err)
	}
	return result.ModifiedCount, nil
}

// DeleteNotification removes one notification, scoped to the recipient the
// same way MarkNotificationRead is.
func (m *MongoDB) DeleteNotification(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	result, err := m.Notifications.DeleteOne(ctx, bson.M{
		"_id":         notificationID.String(),
		"recipientId": recipientID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %v", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotificationNotFoundError(notificationID.String())
	}
	return nil
}
