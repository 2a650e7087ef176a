package service

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/client/session"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// Refresher renews the stored session.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AuthService logs users in and out and keeps the session store in step.
type AuthService struct {
	api       Requester
	refresher Refresher
	store     session.Store
	log       *zap.Logger
}

// NewAuthService constructs an AuthService. refresher is normally the same
// api.Client passed as api.
func NewAuthService(api Requester, refresher Refresher, store session.Store, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{api: api, refresher: refresher, store: store, log: log}
}

// Login exchanges credentials for a token pair and persists it together
// with the user's company.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := s.api.Do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if err := s.store.SetTokens(session.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}
	if err := s.store.SetCompany(resp.Company); err != nil {
		return nil, fmt.Errorf("store company: %w", err)
	}
	return &resp, nil
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	return s.api.Do(ctx, http.MethodPost, "/auth/register", req, nil)
}

// Refresh renews the token pair on demand.
func (s *AuthService) Refresh(ctx context.Context) error {
	return s.refresher.Refresh(ctx)
}

// Logout tells the server to revoke the session and clears local
// credentials even when that call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		s.log.Warn("logout request failed", zap.Error(err))
	}
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// LoggedIn reports whether an access token is stored.
func (s *AuthService) LoggedIn() bool {
	return s.store.AccessToken() != ""
}
