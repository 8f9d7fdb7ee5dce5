package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/auth"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/storage"
)

// defaultCategories are seeded for every new account so the first expense
// can be filed immediately.
var defaultCategories = []string{
	"Food", "Transport", "Housing", "Leisure", "Health", "Education", "Other",
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	ctx := r.Context()
	if _, err := s.store.FindUserByEmail(ctx, req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		writeStoreError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := core.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		writeStoreError(w, r, err)
		return
	}

	for _, name := range defaultCategories {
		cat := core.Category{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Name:      name,
			CreatedAt: s.now(),
		}
		if err := s.store.CreateCategory(ctx, cat); err != nil {
			slog.ErrorContext(ctx, "Failed to seed default category",
				"user_id", user.ID, "name", name, "error", err)
		}
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "invalid credentials")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), userID(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
