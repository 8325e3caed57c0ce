package database

import (
	"context"
	"fmt"
	"time"

	"linkup/internal/models"
	"linkup/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reactionDoc struct {
	UserID string `bson:"userId"`
	Emoji  string `bson:"emoji"`
}

type deletionDoc struct {
	UserID    string    `bson:"userId"`
	DeletedAt time.Time `bson:"deletedAt"`
}

// MessageDocument represents the MongoDB document structure for direct messages
type MessageDocument struct {
	ID          string        `bson:"_id"`
	SenderID    string        `bson:"senderId"`
	ReceiverID  string        `bson:"receiverId"`
	Content     string        `bson:"content"`
	MessageType string        `bson:"messageType"`
	MediaURL    string        `bson:"mediaUrl,omitempty"`
	IsRead      bool          `bson:"isRead"`
	ReadAt      *time.Time    `bson:"readAt,omitempty"`
	IsDeleted   bool          `bson:"isDeleted"`
	DeletedBy   []deletionDoc `bson:"deletedBy,omitempty"`
	ReplyTo     string        `bson:"replyTo,omitempty"`
	Reactions   []reactionDoc `bson:"reactions,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
}

func messageToDocument(message *models.Message) *MessageDocument {
	doc := &MessageDocument{
		ID:          message.ID.String(),
		SenderID:    message.SenderID.String(),
		ReceiverID:  message.ReceiverID.String(),
		Content:     message.Content,
		MessageType: string(message.MessageType),
		MediaURL:    message.MediaURL,
		IsRead:      message.IsRead,
		ReadAt:      message.ReadAt,
		IsDeleted:   message.IsDeleted,
		CreatedAt:   message.CreatedAt,
	}
	if message.ReplyTo != nil {
		doc.ReplyTo = message.ReplyTo.String()
	}
	for _, r := range message.Reactions {
		doc.Reactions = append(doc.Reactions, reactionDoc{UserID: r.UserID.String(), Emoji: r.Emoji})
	}
	for _, d := range message.DeletedBy {
		doc.DeletedBy = append(doc.DeletedBy, deletionDoc{UserID: d.UserID.String(), DeletedAt: d.DeletedAt})
	}
	return doc
}

func documentToMessage(doc *MessageDocument) (*models.Message, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID in database: %v", err)
	}
	senderID, err := uuid.Parse(doc.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID in database: %v", err)
	}
	receiverID, err := uuid.Parse(doc.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("invalid receiver ID in database: %v", err)
	}

	message := &models.Message{
		ID:          id,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     doc.Content,
		MessageType: models.MessageType(doc.MessageType),
		MediaURL:    doc.MediaURL,
		IsRead:      doc.IsRead,
		ReadAt:      doc.ReadAt,
		IsDeleted:   doc.IsDeleted,
		CreatedAt:   doc.CreatedAt,
	}
	if doc.ReplyTo != "" {
		replyTo, err := uuid.Parse(doc.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("invalid replyTo ID in database: %v", err)
		}
		message.ReplyTo = &replyTo
	}
	for _, r := range doc.Reactions {
		userID, err := uuid.Parse(r.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid reaction user ID in database: %v", err)
		}
		message.Reactions = append(message.Reactions, models.Reaction{UserID: userID, Emoji: r.Emoji})
	}
	for _, d := range doc.DeletedBy {
		userID, err := uuid.Parse(d.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid deletion user ID in database: %v", err)
		}
		message.DeletedBy = append(message.DeletedBy, models.Deletion{UserID: userID, DeletedAt: d.DeletedAt})
	}
	return message, nil
}

// conversationFilter matches non-deleted messages between the pair in either
// direction.
func conversationFilter(a, b uuid.UUID) bson.M {
	aStr, bStr := a.String(), b.String()
	return bson.M{
		"$or": []bson.M{
			{"senderId": aStr, "receiverId": bStr},
			{"senderId": bStr, "receiverId": aStr},
		},
		"isDeleted": false,
	}
}

// SaveMessage appends a new direct message to the log
func (m *MongoDB) SaveMessage(ctx context.Context, message *models.Message) error {
	_, err := m.Messages.InsertOne(ctx, messageToDocument(message))
	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}
	return nil
}

// GetMessage retrieves a single message by ID
func (m *MongoDB) GetMessage(ctx context.Context, messageID uuid.UUID) (*models.Message, error) {
	var doc MessageDocument
	err := m.Messages.FindOne(ctx, bson.M{"_id": messageID.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewMessageNotFoundError(messageID.String())
	}
	if err != nil {
		return nil, err
	}
	return documentToMessage(&doc)
}

// GetConversation returns one page of non-deleted messages between the two
// users, newest first. Callers reverse the page for display.
func (m *MongoDB) GetConversation(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := m.Messages.Find(ctx, conversationFilter(a, b), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %v", err)
	}
	defer cursor.Close(ctx)

	return decodeMessages(ctx, cursor)
}

// CountConversationMessages counts the non-deleted messages between the pair.
func (m *MongoDB) CountConversationMessages(ctx context.Context, a, b uuid.UUID) (int64, error) {
	return m.Messages.CountDocuments(ctx, conversationFilter(a, b))
}

// GetMessagesByUser retrieves all non-deleted messages the user sent or
// received, newest first. The conversation list is derived from this log.
func (m *MongoDB) GetMessagesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error) {
	userIDStr := userID.String()
	filter := bson.M{
		"$or": []bson.M{
			{"senderId": userIDStr},
			{"receiverId": userIDStr},
		},
		"isDeleted": false,
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get user messages: %v", err)
	}
	defer cursor.Close(ctx)

	return decodeMessages(ctx, cursor)
}

// MarkConversationRead bulk-marks unread messages from other to reader as
// read and returns how many were updated. Idempotent: a second call matches
// nothing and returns zero.
func (m *MongoDB) MarkConversationRead(ctx context.Context, reader, other uuid.UUID) (int64, error) {
	now := time.Now()
	result, err := m.Messages.UpdateMany(ctx,
		bson.M{
			"senderId":   other.String(),
			"receiverId": reader.String(),
			"isRead":     false,
			"isDeleted":  false,
		},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %v", err)
	}
	return result.ModifiedCount, nil
}

// CountUnread counts unread, non-deleted messages addressed to the user
// across all conversations.
func (m *MongoDB) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.Messages.CountDocuments(ctx, bson.M{
		"receiverId": userID.String(),
		"isRead":     false,
		"isDeleted":  false,
	})
}

// UpsertReaction replaces the user's existing reaction on the message, or
// appends one. Concurrent re-reactions are last-write-wins; there is no
// version check on the document.
func (m *MongoDB) UpsertReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error {
	idStr := messageID.String()

	result, err := m.Messages.UpdateOne(ctx,
		bson.M{"_id": idStr},
		bson.M{"$pull": bson.M{"reactions": bson.M{"userId": userID.String()}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reaction: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewMessageNotFoundError(idStr)
	}

	_, err = m.Messages.UpdateOne(ctx,
		bson.M{"_id": idStr},
		bson.M{"$push": bson.M{"reactions": reactionDoc{UserID: userID.String(), Emoji: emoji}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reaction: %v", err)
	}
	return nil
}

// SoftDeleteMessage hides the message and records who deleted it. The record
// is never physically removed.
func (m *MongoDB) SoftDeleteMessage(ctx context.Context, messageID, userID uuid.UUID) error {
	result, err := m.Messages.UpdateOne(ctx,
		bson.M{"_id": messageID.String()},
		bson.M{
			"$set":  bson.M{"isDeleted": true},
			"$push": bson.M{"deletedBy": deletionDoc{UserID: userID.String(), DeletedAt: time.Now()}},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to delete message: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewMessageNotFoundError(messageID.String())
	}
	return nil
}

func decodeMessages(ctx context.Context, cursor *mongo.Cursor) ([]*models.Message, error) {
	var messages []*models.Message
	for cursor.Next(ctx) {
		var doc MessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %v", err)
		}
		message, err := documentToMessage(&doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, cursor.Err()
}
