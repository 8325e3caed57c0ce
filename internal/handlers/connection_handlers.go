package handlers

import (
	"encoding/json"
	"net/http"

	"linkup/internal/engine/actors"
	"linkup/internal/utils"

	"github.com/google/uuid"
)

// HandleSendConnectionRequest sends a connection request to another user.
// POST /connections/request
func (s *Server) HandleSendConnectionRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req struct {
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}
		targetID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeAppError(w, utils.NewValidationError("Invalid user ID"))
			return
		}

		result, appErr := s.requestActor(s.Engine.GetConnectionActor(), &actors.SendConnectionRequestMsg{
			FromID: userID,
			ToID:   targetID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// HandleAcceptConnectionRequest accepts a pending connection request.
// PUT /connections/accept/{userId}
func (s *Server) HandleAcceptConnectionRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		requesterID, appErr := pathUUID(r, "userId")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		result, appErr := s.requestActor(s.Engine.GetConnectionActor(), &actors.AcceptConnectionRequestMsg{
			UserID:      userID,
			RequesterID: requesterID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// HandleRejectConnectionRequest rejects a pending connection request.
// PUT /connections/reject/{userId}
func (s *Server) HandleRejectConnectionRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		requesterID, appErr := pathUUID(r, "userId")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		result, appErr := s.requestActor(s.Engine.GetConnectionActor(), &actors.RejectConnectionRequestMsg{
			UserID:      userID,
			RequesterID: requesterID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
