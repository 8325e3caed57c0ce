package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"linkup/internal/models"
	"linkup/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Headline string `json:"headline,omitempty"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a response to a login request
type LoginResponse struct {
	Success bool                  `json:"success"`
	Token   string                `json:"token,omitempty"`
	Error   string                `json:"error,omitempty"`
	User    *models.PublicProfile `json:"user,omitempty"`
}

// HandleUserRegistration handles requests to register a new user.
// POST /users/register
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}
		if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
			writeAppError(w, utils.NewValidationError("Username, email and a password of at least 8 characters are required"))
			return
		}

		if _, err := s.MongoDB.GetUserByEmail(r.Context(), req.Email); err == nil {
			writeAppError(w, utils.NewAppError(utils.ErrUserAlreadyExists, "A user with this email already exists", nil))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to hash password", err))
			return
		}

		user := &models.User{
			ID:             uuid.New(),
			Username:       req.Username,
			Email:          req.Email,
			HashedPassword: string(hashed),
			Headline:       req.Headline,
			Role:           models.RoleUser,
			CreatedAt:      time.Now(),
			LastActive:     time.Now(),
		}
		if err := s.MongoDB.SaveUser(r.Context(), user); err != nil {
			writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
			return
		}

		token, err := s.Auth.GenerateToken(user.ID, user.Role)
		if err != nil {
			writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate token", err))
			return
		}

		log.Printf("Registered new user %s (%s)", user.Username, user.ID)
		writeJSON(w, http.StatusCreated, &LoginResponse{
			Success: true,
			Token:   token,
			User:    user.Public(),
		})
	}
}

// HandleUserLogin handles requests to log in a user.
// POST /users/login
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		user, err := s.MongoDB.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			// Same answer for unknown email and wrong password.
			writeAppError(w, utils.NewAppError(utils.ErrInvalidCredentials, "Invalid email or password", nil))
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
			writeAppError(w, utils.NewAppError(utils.ErrInvalidCredentials, "Invalid email or password", nil))
			return
		}

		token, err := s.Auth.GenerateToken(user.ID, user.Role)
		if err != nil {
			writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate token", err))
			return
		}

		writeJSON(w, http.StatusOK, &LoginResponse{
			Success: true,
			Token:   token,
			User:    user.Public(),
		})
	}
}
