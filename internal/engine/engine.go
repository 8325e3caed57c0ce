package engine

import (
	"linkup/internal/database"
	"linkup/internal/engine/actors"
	"linkup/internal/utils"
	"linkup/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine spawns and owns the domain actors. The notification actor is
// spawned first so the message and connection actors can fire notifications
// at it.
type Engine struct {
	messageActor      *actor.PID
	notificationActor *actor.PID
	connectionActor   *actor.PID
}

func NewEngine(system *actor.ActorSystem, db *database.MongoDB, hub *websocket.Hub, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	notificationProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewNotificationActor(db, hub, metrics)
	})
	notificationPID := context.Spawn(notificationProps)

	messageProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewMessageActor(db, hub, notificationPID, metrics)
	})
	messagePID := context.Spawn(messageProps)

	connectionProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewConnectionActor(db, hub, notificationPID, metrics)
	})
	connectionPID := context.Spawn(connectionProps)

	return &Engine{
		messageActor:      messagePID,
		notificationActor: notificationPID,
		connectionActor:   connectionPID,
	}
}

// GetMessageActor returns the PID of the message actor
func (e *Engine) GetMessageActor() *actor.PID {
	return e.messageActor
}

// GetNotificationActor returns the PID of the notification actor
func (e *Engine) GetNotificationActor() *actor.PID {
	return e.notificationActor
}

// GetConnectionActor returns the PID of the connection actor
func (e *Engine) GetConnectionActor() *actor.PID {
	return e.connectionActor
}
