package handlers

import (
	"net/http"

	"linkup/internal/engine/actors"
)

// HandleListNotifications returns one page of the caller's notifications.
// GET /notifications
func (s *Server) HandleListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		page, limit := pagination(r)

		result, appErr := s.requestActor(s.Engine.GetNotificationActor(), &actors.ListNotificationsMsg{
			UserID: userID,
			Limit:  limit,
			Offset: (page - 1) * limit,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		notificationPage := result.(*actors.NotificationPage)

		totalPages := int((notificationPage.Total + int64(limit) - 1) / int64(limit))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"notifications": notificationPage.Notifications,
			"unreadCount":   notificationPage.UnreadCount,
			"pagination": map[string]interface{}{
				"page":       page,
				"limit":      limit,
				"total":      notificationPage.Total,
				"totalPages": totalPages,
			},
		})
	}
}

// HandleUnreadNotificationCount returns the caller's unread notification count.
// GET /notifications/unread-count
func (s *Server) HandleUnreadNotificationCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		result, appErr := s.requestActor(s.Engine.GetNotificationActor(), &actors.GetUnreadNotificationCountMsg{UserID: userID})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"unreadCount": result})
	}
}

// HandleMarkNotificationRead marks one of the caller's notifications as read.
// PUT /notifications/{id}/read
func (s *Server) HandleMarkNotificationRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		notificationID, appErr := pathUUID(r, "id")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		_, appErr = s.requestActor(s.Engine.GetNotificationActor(), &actors.MarkNotificationReadMsg{
			NotificationID: notificationID,
			UserID:         userID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Notification marked as read"})
	}
}

// HandleMarkAllNotificationsRead marks every unread notification as read.
// PUT /notifications/read-all
func (s *Server) HandleMarkAllNotificationsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		result, appErr := s.requestActor(s.Engine.GetNotificationActor(), &actors.MarkAllNotificationsReadMsg{UserID: userID})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":      "All notifications marked as read",
			"updatedCount": result,
		})
	}
}

// HandleDeleteNotification deletes one of the caller's notifications.
// DELETE /notifications/{id}
func (s *Server) HandleDeleteNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		notificationID, appErr := pathUUID(r, "id")
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		_, appErr = s.requestActor(s.Engine.GetNotificationActor(), &actors.DeleteNotificationMsg{
			NotificationID: notificationID,
			UserID:         userID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Notification deleted"})
	}
}
