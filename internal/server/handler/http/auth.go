// Package http provides the chi routes and handlers of the StockKeeper API.
package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/middleware"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// AuthService defines the authentication operations required by the HTTP handlers.
type AuthService interface {
	// Register creates a new account.
	Register(ctx context.Context, req models.RegisterRequest) error
	// Login exchanges credentials for a token pair.
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	// Refresh exchanges a refresh token for a new pair.
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	// Logout revokes the user's refresh tokens.
	Logout(ctx context.Context, userID string) error
}

// AuthHandler handles HTTP requests for registration, login, refresh and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Log         *zap.Logger
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	if err := h.AuthService.Register(r.Context(), req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	middleware.WriteMessage(w, http.StatusCreated, "registered")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	resp, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	resp, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout for the authenticated user.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), middleware.GetUserIDFromContext(r.Context())); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
