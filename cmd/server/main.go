package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"linkup/internal/config"
	"linkup/internal/database"
	"linkup/internal/engine"
	"linkup/internal/handlers"
	"linkup/internal/middleware"
	"linkup/internal/utils"
	"linkup/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	db, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())

	hub := websocket.NewHub(metrics)
	go hub.Run()

	system := actor.NewActorSystem()
	linkupEngine := engine.NewEngine(system, db, hub, metrics)

	auth := middleware.NewAuth(cfg.Auth)
	server := handlers.NewServer(system, linkupEngine, metrics, hub, db, auth)

	router := mux.NewRouter()

	router.HandleFunc("/health", server.HandleHealth()).Methods(http.MethodGet)
	if cfg.Server.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/users/register", server.HandleUserRegistration()).Methods(http.MethodPost)
	router.HandleFunc("/users/login", server.HandleUserLogin()).Methods(http.MethodPost)
	router.HandleFunc("/ws", server.HandleWebSocket()).Methods(http.MethodGet)

	// Message sends are the only rate-limited operation.
	sendLimiter := middleware.NewRateLimiter(1, 5)
	router.Handle("/messages", sendLimiter.Middleware(server.HandleSendMessage())).Methods(http.MethodPost)
	router.HandleFunc("/messages/conversations", server.HandleListConversations()).Methods(http.MethodGet)
	router.HandleFunc("/messages/conversation/{userId}", server.HandleGetConversation()).Methods(http.MethodGet)
	router.HandleFunc("/messages/conversation/{userId}/read", server.HandleMarkConversationRead()).Methods(http.MethodPut)
	router.HandleFunc("/messages/unread-count", server.HandleUnreadCount()).Methods(http.MethodGet)
	router.HandleFunc("/messages/{messageId}/react", server.HandleReactToMessage()).Methods(http.MethodPost)
	router.HandleFunc("/messages/{messageId}", server.HandleDeleteMessage()).Methods(http.MethodDelete)

	router.HandleFunc("/notifications", server.HandleListNotifications()).Methods(http.MethodGet)
	router.HandleFunc("/notifications/unread-count", server.HandleUnreadNotificationCount()).Methods(http.MethodGet)
	router.HandleFunc("/notifications/read-all", server.HandleMarkAllNotificationsRead()).Methods(http.MethodPut)
	router.HandleFunc("/notifications/{id}/read", server.HandleMarkNotificationRead()).Methods(http.MethodPut)
	router.HandleFunc("/notifications/{id}", server.HandleDeleteNotification()).Methods(http.MethodDelete)

	router.HandleFunc("/connections/request", server.HandleSendConnectionRequest()).Methods(http.MethodPost)
	router.HandleFunc("/connections/accept/{userId}", server.HandleAcceptConnectionRequest()).Methods(http.MethodPut)
	router.HandleFunc("/connections/reject/{userId}", server.HandleRejectConnectionRequest()).Methods(http.MethodPut)

	// Auth runs inside CORS so preflight requests are answered without a token.
	handler := middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins))(auth.Middleware(router))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
