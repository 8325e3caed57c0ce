package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"linkup/internal/database"
	"linkup/internal/engine"
	"linkup/internal/middleware"
	"linkup/internal/utils"
	"linkup/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Hub            *websocket.Hub
	MongoDB        *database.MongoDB
	Auth           *middleware.Auth
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	engine *engine.Engine,
	metrics *utils.MetricsCollector,
	hub *websocket.Hub,
	mongodb *database.MongoDB,
	auth *middleware.Auth,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         engine,
		Metrics:        metrics,
		Hub:            hub,
		MongoDB:        mongodb,
		Auth:           auth,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// requestActor sends a message to an actor and waits for the reply. An
// *utils.AppError reply is surfaced as the error; anything else is the result.
func (s *Server) requestActor(pid *actor.PID, msg interface{}) (interface{}, *utils.AppError) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(pid.String())
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeAppError(w http.ResponseWriter, appErr *utils.AppError) {
	writeJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]interface{}{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// callerID pulls the authenticated user out of the request context. The auth
// middleware guarantees it for protected routes.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
		return uuid.Nil, false
	}
	return userID, true
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
