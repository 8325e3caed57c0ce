// internal/database/user_repository.go
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

// connectionRequestDoc mirrors models.ConnectionRequest in storage form.
type connectionRequestDoc struct {
	From   string    `bson:"from"`
	SentAt time.Time `bson:"sentAt"`
}

type sentRequestDoc struct {
	To     string    `bson:"to"`
	SentAt time.Time `bson:"sentAt"`
}

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID                 string                 `bson:"_id"`
	Username           string                 `bson:"username"`
	Email              string                 `bson:"email"`
	HashedPassword     string                 `bson:"hashedPassword"`
	Headline           string                 `bson:"headline,omitempty"`
	Avatar             string                 `bson:"avatar,omitempty"`
	Role               string                 `bson:"role"`
	Connections        []string               `bson:"connections"`
	ConnectionRequests []connectionRequestDoc `bson:"connectionRequests"`
	SentRequests       []sentRequestDoc       `bson:"sentRequests"`
	Status             string                 `bson:"status"`
	CreatedAt          time.Time              `bson:"createdAt"`
	LastActive         time.Time              `bson:"lastActive"`
}

func userToDocument(user *models.User) *UserDocument {
	doc := &UserDocument{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Headline:       user.Headline,
		Avatar:         user.Avatar,
		Role:           string(user.Role),
		Connections:    make([]string, len(user.Connections)),
		Status:         user.Status,
		CreatedAt:      user.CreatedAt,
		LastActive:     user.LastActive,
	}
	for i, id := range user.Connections {
		doc.Connections[i] = id.String()
	}
	doc.ConnectionRequests = make([]connectionRequestDoc, len(user.ConnectionRequests))
	for i, req := range user.ConnectionRequests {
		doc.ConnectionRequests[i] = connectionRequestDoc{From: req.From.String(), SentAt: req.SentAt}
	}
	doc.SentRequests = make([]sentRequestDoc, len(user.SentRequests))
	for i, req := range user.SentRequests {
		doc.SentRequests[i] = sentRequestDoc{To: req.To.String(), SentAt: req.SentAt}
	}
	return doc
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	userID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	user := &models.User{
		ID:             userID,
		Username:       doc.Username,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		Headline:       doc.Headline,
		Avatar:         doc.Avatar,
		Role:           models.Role(doc.Role),
		Connections:    make([]uuid.UUID, 0, len(doc.Connections)),
		Status:         doc.Status,
		CreatedAt:      doc.CreatedAt,
		LastActive:     doc.LastActive,
	}
	for _, idStr := range doc.Connections {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid connection ID in database: %v", err)
		}
		user.Connections = append(user.Connections, id)
	}
	for _, req := range doc.ConnectionRequests {
		from, err := uuid.Parse(req.From)
		if err != nil {
			return nil, fmt.Errorf("invalid request sender ID in database: %v", err)
		}
		user.ConnectionRequests = append(user.ConnectionRequests, models.ConnectionRequest{From: from, SentAt: req.SentAt})
	}
	for _, req := range doc.SentRequests {
		to, err := uuid.Parse(req.To)
		if err != nil {
			return nil, fmt.Errorf("invalid request receiver ID in database: %v", err)
		}
		user.SentRequests = append(user.SentRequests, models.SentRequest{To: to, SentAt: req.SentAt})
	}
	return user, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := userToDocument(user)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// FindUsersByIDs fetches the given users in one query. Missing IDs are
// silently absent from the result.
func (m *MongoDB) FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	cursor, err := m.Users.Find(ctx, bson.M{"_id": bson.M{"$in": idStrs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		user, err := documentToUser(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, cursor.Err()
}

// ListActiveUsers returns every non-admin user, most recently active first.
// Backs the admin variant of the conversation list.
func (m *MongoDB) ListActiveUsers(ctx context.Context) ([]*models.User, error) {
	filter := bson.M{"role": bson.M{"$ne": string(models.RoleAdmin)}}
	opts := options.Find().SetSort(bson.D{{Key: "lastActive", Value: -1}})

	cursor, err := m.Users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		user, err := documentToUser(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, cursor.Err()
}

// AddPendingRequest records a pending connection request on both sides:
// the receiver's connectionRequests entry and the sender's sentRequests
// mirror. Duplicate entries for the same pair are not added twice.
func (m *MongoDB) AddPendingRequest(ctx context.Context, from, to uuid.UUID) error {
	sentAt := time.Now()

	result, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": to.String(), "connectionRequests.from": bson.M{"$ne": from.String()}},
		bson.M{"$push": bson.M{"connectionRequests": connectionRequestDoc{From: from.String(), SentAt: sentAt}}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the receiver does not exist or the request is already pending.
		count, err := m.Users.CountDocuments(ctx, bson.M{"_id": to.String()})
		if err != nil {
			return err
		}
		if count == 0 {
			return utils.NewUserNotFoundError(to.String())
		}
		return utils.NewAppError(utils.ErrDuplicate, "Connection request already pending", nil)
	}

	_, err = m.Users.UpdateOne(ctx,
		bson.M{"_id": from.String()},
		bson.M{"$push": bson.M{"sentRequests": sentRequestDoc{To: to.String(), SentAt: sentAt}}},
	)
	return err
}

// RemovePendingRequest clears a pending request between the pair in both
// directions on both documents. Used by reject and as part of AddConnection.
func (m *MongoDB) RemovePendingRequest(ctx context.Context, from, to uuid.UUID) error {
	fromStr, toStr := from.String(), to.String()

	_, err := m.Users.UpdateOne(ctx, bson.M{"_id": toStr}, bson.M{"$pull": bson.M{
		"connectionRequests": bson.M{"from": fromStr},
		"sentRequests":       bson.M{"to": fromStr},
	}})
	if err != nil {
		return err
	}

	_, err = m.Users.UpdateOne(ctx, bson.M{"_id": fromStr}, bson.M{"$pull": bson.M{
		"sentRequests":       bson.M{"to": toStr},
		"connectionRequests": bson.M{"from": toStr},
	}})
	return err
}

// AddConnection makes a and b mutual connections and clears any pending
// request between them in either direction, keeping the pair invariant: a
// pair is connected, pending in one direction, or nothing.
func (m *MongoDB) AddConnection(ctx context.Context, a, b uuid.UUID) error {
	aStr, bStr := a.String(), b.String()

	update := func(selfID, otherID string) error {
		result, err := m.Users.UpdateOne(ctx, bson.M{"_id": selfID}, bson.M{
			"$addToSet": bson.M{"connections": otherID},
			"$pull": bson.M{
				"connectionRequests": bson.M{"from": otherID},
				"sentRequests":       bson.M{"to": otherID},
			},
		})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return utils.NewUserNotFoundError(selfID)
		}
		return nil
	}

	if err := update(aStr, bStr); err != nil {
		return err
	}
	return update(bStr, aStr)
}

// UpdateUserStatus records the user's presence status and last-active time.
func (m *MongoDB) UpdateUserStatus(ctx context.Context, userID uuid.UUID, status string) error {
	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": userID.String()}, bson.M{"$set": bson.M{
		"status":     status,
		"lastActive": time.Now(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(userID.String())
	}
	return nil
}
