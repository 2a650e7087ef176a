package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/middleware"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	registerErr error
	loginResp   *models.AuthResponse
	loginErr    error
	refreshResp *models.AuthResponse
	refreshErr  error
	logoutErr   error

	gotEmail   string
	gotRefresh string
	gotLogout  string
}

func (f *fakeAuthService) Register(_ context.Context, req models.RegisterRequest) error {
	f.gotEmail = req.Email
	return f.registerErr
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (*models.AuthResponse, error) {
	f.gotEmail = email
	return f.loginResp, f.loginErr
}

func (f *fakeAuthService) Refresh(_ context.Context, token string) (*models.AuthResponse, error) {
	f.gotRefresh = token
	return f.refreshResp, f.refreshErr
}

func (f *fakeAuthService) Logout(_ context.Context, userID string) error {
	f.gotLogout = userID
	return f.logoutErr
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request body",
		},
		{
			name:           "validation error",
			body:           `{"email":"bad"}`,
			service:        &fakeAuthService{registerErr: fmt.Errorf("%w: email must be a valid email", apperrors.ErrValidation)},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "valid email",
		},
		{
			name:           "user already exists",
			body:           `{"email":"bob@example.com","password":"secret1"}`,
			service:        &fakeAuthService{registerErr: fmt.Errorf("%w: user already exists", apperrors.ErrDuplicate)},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "user already exists",
		},
		{
			name:           "storage failure",
			body:           `{"email":"bob@example.com","password":"secret1"}`,
			service:        &fakeAuthService{registerErr: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "created",
			body:           `{"email":"bob@example.com","password":"secret1"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusCreated,
			expectedSubstr: "registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}

			h.Register(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "db down") {
				t.Errorf("internal error details leaked: %q", rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `{`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request body",
		},
		{
			name:           "wrong credentials",
			body:           `{"email":"a@b.com","password":"nope"}`,
			service:        &fakeAuthService{loginErr: fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)},
			expectedCode:   http.StatusUnauthorized,
			expectedSubstr: "invalid email or password",
		},
		{
			name: "success",
			body: `{"email":"a@b.com","password":"secret1"}`,
			service: &fakeAuthService{loginResp: &models.AuthResponse{
				AccessToken: "acc", RefreshToken: "ref", Company: "acme",
			}},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"access_token":"acc"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}

			h.Login(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := &fakeAuthService{refreshResp: &models.AuthResponse{AccessToken: "a2", RefreshToken: "r2"}}
	h := &AuthHandler{AuthService: svc}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(`{"refresh_token":"r1"}`))
	h.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotRefresh != "r1" {
		t.Errorf("expected refresh token r1, got %q", svc.gotRefresh)
	}
	if !strings.Contains(rec.Body.String(), `"refresh_token":"r2"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	svc.refreshErr = fmt.Errorf("%w: refresh token is invalid", apperrors.ErrUnauthorized)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(`{"refresh_token":"r1"}`))
	h.Refresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &fakeAuthService{}
	h := &AuthHandler{AuthService: svc}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
	h.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if svc.gotLogout != "user-1" {
		t.Errorf("expected logout for user-1, got %q", svc.gotLogout)
	}
}
