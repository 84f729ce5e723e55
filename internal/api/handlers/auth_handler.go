package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	middleware "github.com/Udhayakumar116/ai-question-gen/internal/api/middlewares"
	"github.com/Udhayakumar116/ai-question-gen/internal/services"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	users  *services.UserService
	secret string
	logger *zap.Logger
}

func NewAuthHandler(users *services.UserService, secret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, logger: logger}
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Signup(r.Context(), req.FirstName, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidUser):
		http.Error(w, "a valid email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	case errors.Is(err, services.ErrUserExists):
		http.Error(w, "user exists", http.StatusConflict)
		return
	case err != nil:
		writeServiceError(w, h.logger, "signup", err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, user.ID)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, "login", err)
		return
	}

	h.respondWithToken(w, http.StatusOK, user.ID)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, userID string) {
	token, err := middleware.IssueToken(h.secret, userID, tokenTTL)
	if err != nil {
		writeServiceError(w, h.logger, "issue token", err)
		return
	}
	writeJSON(w, status, map[string]string{"token": token, "user_id": userID})
}
