package actors

import (
	"log"
	"time"

	stdctx "context"

	"linkup/internal/models"
	"linkup/internal/utils"
	"linkup/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for ConnectionActor
type (
	SendConnectionRequestMsg struct {
		FromID uuid.UUID
		ToID   uuid.UUID
	}

	AcceptConnectionRequestMsg struct {
		UserID      uuid.UUID // the user accepting
		RequesterID uuid.UUID
	}

	RejectConnectionRequestMsg struct {
		UserID      uuid.UUID // the user rejecting
		RequesterID uuid.UUID
	}
)

// Connection request states reported to callers. Repeat actions come back as
// an informational status rather than an error.
const (
	ConnectionStatusPending          = "pending"
	ConnectionStatusConnected        = "connected"
	ConnectionStatusRejected         = "rejected"
	ConnectionStatusAlreadyConnected = "already_connected"
	ConnectionStatusAlreadyPending   = "already_pending"
)

type ConnectionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ConnectionActor owns the connection-request flow on top of the user
// directory: pending requests, accept/reject, and the notifications and
// real-time events those trigger.
type ConnectionActor struct {
	store           DirectoryStore
	pusher          Pusher
	notificationPID *actor.PID
	metrics         *utils.MetricsCollector
}

func NewConnectionActor(store DirectoryStore, pusher Pusher, notificationPID *actor.PID, metrics *utils.MetricsCollector) *ConnectionActor {
	return &ConnectionActor{
		store:           store,
		pusher:          pusher,
		notificationPID: notificationPID,
		metrics:         metrics,
	}
}

func (a *ConnectionActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *SendConnectionRequestMsg:
		a.handleSendRequest(context, msg)
	case *AcceptConnectionRequestMsg:
		a.handleAccept(context, msg)
	case *RejectConnectionRequestMsg:
		a.handleReject(context, msg)
	}
}

func (a *ConnectionActor) handleSendRequest(context actor.Context, msg *SendConnectionRequestMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.FromID == msg.ToID {
		context.Respond(utils.NewValidationError("You cannot connect with yourself"))
		return
	}

	sender, err := a.store.GetUser(ctx, msg.FromID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load sender"))
		return
	}
	receiver, err := a.store.GetUser(ctx, msg.ToID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load receiver"))
		return
	}

	// Repeat actions are answered, not failed.
	if sender.IsConnectedTo(receiver.ID) {
		context.Respond(&ConnectionResult{Status: ConnectionStatusAlreadyConnected, Message: "You are already connected"})
		return
	}
	if sender.HasSentRequestTo(receiver.ID) {
		context.Respond(&ConnectionResult{Status: ConnectionStatusAlreadyPending, Message: "Connection request already sent"})
		return
	}
	if sender.HasPendingRequestFrom(receiver.ID) {
		context.Respond(&ConnectionResult{Status: ConnectionStatusAlreadyPending, Message: receiver.Username + " has already sent you a request"})
		return
	}

	if err := a.store.AddPendingRequest(ctx, sender.ID, receiver.ID); err != nil {
		if utils.IsErrorCode(err, utils.ErrDuplicate) {
			context.Respond(&ConnectionResult{Status: ConnectionStatusAlreadyPending, Message: "Connection request already sent"})
			return
		}
		context.Respond(asAppError(err, "Failed to save connection request"))
		return
	}

	context.Send(a.notificationPID, &CreateNotificationMsg{
		RecipientID: receiver.ID,
		SenderID:    sender.ID,
		Type:        models.NotificationConnectionRequest,
		Title:       "New connection request",
		Message:     sender.Username + " wants to connect with you",
		Data:        map[string]interface{}{"userId": sender.ID.String()},
	})

	a.metrics.AddOperationLatency("send_connection_request", time.Since(startTime))
	log.Printf("Connection request sent from %s to %s", sender.ID, receiver.ID)
	context.Respond(&ConnectionResult{Status: ConnectionStatusPending, Message: "Connection request sent"})
}

func (a *ConnectionActor) handleAccept(context actor.Context, msg *AcceptConnectionRequestMsg) {
	ctx := stdctx.Background()

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load user"))
		return
	}
	requester, err := a.store.GetUser(ctx, msg.RequesterID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load requester"))
		return
	}

	if user.IsConnectedTo(requester.ID) {
		context.Respond(&ConnectionResult{Status: ConnectionStatusAlreadyConnected, Message: "You are already connected"})
		return
	}
	if !user.HasPendingRequestFrom(requester.ID) {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "No pending request from this user", nil))
		return
	}

	// Connecting clears any pending request between the pair in either
	// direction, keeping the pair in exactly one relationship state.
	if err := a.store.AddConnection(ctx, user.ID, requester.ID); err != nil {
		context.Respond(asAppError(err, "Failed to add connection"))
		return
	}

	context.Send(a.notificationPID, &CreateNotificationMsg{
		RecipientID: requester.ID,
		SenderID:    user.ID,
		Type:        models.NotificationConnectionAccepted,
		Title:       "Connection accepted",
		Message:     user.Username + " accepted your connection request",
		Data:        map[string]interface{}{"userId": user.ID.String()},
	})

	a.pusher.PushToUser(requester.ID, websocket.EventConnectionAccepted, &websocket.ConnectionAcceptedPayload{
		UserID:  user.ID,
		Message: user.Username + " accepted your connection request",
	})

	log.Printf("Connection established between %s and %s", user.ID, requester.ID)
	context.Respond(&ConnectionResult{Status: ConnectionStatusConnected, Message: "Connection request accepted"})
}

func (a *ConnectionActor) handleReject(context actor.Context, msg *RejectConnectionRequestMsg) {
	ctx := stdctx.Background()

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(asAppError(err, "Failed to load user"))
		return
	}

	if !user.HasPendingRequestFrom(msg.RequesterID) {
		// Rejecting an absent request is a no-op, answered as done.
		context.Respond(&ConnectionResult{Status: ConnectionStatusRejected, Message: "No pending request to reject"})
		return
	}

	if err := a.store.RemovePendingRequest(ctx, msg.RequesterID, user.ID); err != nil {
		context.Respond(asAppError(err, "Failed to remove connection request"))
		return
	}
	context.Respond(&ConnectionResult{Status: ConnectionStatusRejected, Message: "Connection request rejected"})
}
