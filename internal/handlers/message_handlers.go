package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"linkup/internal/engine/actors"
	"linkup/internal/models"
	"linkup/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// SendMessageRequest represents a request to send a direct message
type SendMessageRequest struct {
	ReceiverID  string `json:"receiverId"`
	Content     string `json:"content"`
	MessageType string `json:"messageType,omitempty"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	ReplyTo     string `json:"replyTo,omitempty"`
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// pagination reads page/limit query parameters, 1-based.
func pagination(r *http.Request) (page, limit int) {
	page = 1
	limit = defaultPageSize
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func pathUUID(r *http.Request, name string) (uuid.UUID, *utils.AppError) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, utils.NewValidationError("Invalid " + name)
	}
	return id, nil
}

// HandleSendMessage sends a direct message to another user.
// POST /messages
func (s *Server) HandleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}
		receiverID, err := uuid.Parse(req.ReceiverID)
		if err != nil {
			writeAppError(w, utils.NewValidationError("Invalid receiver ID"))
			return
		}

		msg := &actors.SendMessageMsg{
			SenderID:    senderID,
			ReceiverID:  receiverID,
			Content:     req.Content,
			MessageType: models.MessageType(req.MessageType),
			MediaURL:    req.MediaURL,
		}
		if req.ReplyTo != "" {
			replyTo, err := uuid.Parse(req.ReplyTo)
			if err != nil {
				writeAppError(w, utils.NewValidationError("Invalid replyTo ID"))
				return
			}
			msg.ReplyTo = &replyTo
		}

		result, appErr := s.requestActor(s.Engine.GetMessageActor(), msg)
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Message sent",
			"data":    result,
		})
	}
}

// HandleGetConversation returns one page of the conversation with a user.
// GET /messages/conversation/{userId}
func (s *Server) HandleGetConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		otherID, appErr := pathUUID(r, "userId")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		page, limit := pagination(r)

		result, appErr := s.requestActor(s.Engine.GetMessageActor(), &actors.GetConversationMsg{
			UserID:  userID,
			OtherID: otherID,
			Limit:   limit,
			Offset:  (page - 1) * limit,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		conversation := result.(*actors.ConversationPage)

		totalPages := int((conversation.Total + int64(limit) - 1) / int64(limit))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"messages": conversation.Messages,
			"pagination": map[string]interface{}{
				"page":       page,
				"limit":      limit,
				"total":      conversation.Total,
				"totalPages": totalPages,
			},
		})
	}
}

// HandleMarkConversationRead marks every unread message from a user as read.
// PUT /messages/conversation/{userId}/read
func (s *Server) HandleMarkConversationRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		otherID, appErr := pathUUID(r, "userId")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		result, appErr := s.requestActor(s.Engine.GetMessageActor(), &actors.MarkConversationReadMsg{
			ReaderID: userID,
			OtherID:  otherID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		marked := result.(*actors.MarkReadResult)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":        "Conversation marked as read",
			"conversationId": marked.ConversationID,
			"updatedCount":   marked.UpdatedCount,
		})
	}
}

// HandleListConversations returns the caller's conversation list.
// GET /messages/conversations
func (s *Server) HandleListConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		result, appErr := s.requestActor(s.Engine.GetMessageActor(), &actors.ListConversationsMsg{UserID: userID})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// HandleUnreadCount returns the caller's total unread message count.
// GET /messages/unread-count
func (s *Server) HandleUnreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		result, appErr := s.requestActor(s.Engine.GetMessageActor(), &actors.GetUnreadCountMsg{UserID: userID})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"unreadCount": result})
	}
}

// HandleReactToMessage sets or replaces the caller's reaction on a message.
// POST /messages/{messageId}/react
func (s *Server) HandleReactToMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		messageID, appErr := pathUUID(r, "messageId")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		var req struct {
			Emoji string `json:"emoji"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, appErr := s.requestActor(s.Engine.GetMessageActor(), &actors.ReactToMessageMsg{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     req.Emoji,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Reaction saved",
			"data":    result,
		})
	}
}

// HandleDeleteMessage soft-deletes a message for both participants.
// DELETE /messages/{messageId}
func (s *Server) HandleDeleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		messageID, appErr := pathUUID(r, "messageId")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		_, appErr = s.requestActor(s.Engine.GetMessageActor(), &actors.DeleteMessageMsg{
			MessageID: messageID,
			UserID:    userID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Message deleted"})
	}
}
