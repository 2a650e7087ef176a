// Package service provides the API server's business logic, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	// UserExists returns true if a user with the given email exists.
	UserExists(ctx context.Context, email string) (bool, error)
	// CreateUser stores a new user.
	CreateUser(ctx context.Context, u models.User) error
	// GetUserByEmail returns apperrors.ErrNotFound for unknown emails.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns apperrors.ErrNotFound for unknown IDs.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// SaveRefreshToken records the hash of an issued refresh token.
	SaveRefreshToken(ctx context.Context, userID, hash string, expiresAt time.Time) error
	// ConsumeRefreshToken revokes a live token and returns its owner.
	ConsumeRefreshToken(ctx context.Context, hash string, now time.Time) (string, error)
	// RevokeUserTokens revokes all refresh tokens of a user.
	RevokeUserTokens(ctx context.Context, userID string) error
}

// TokenConfig controls token signing and lifetimes.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthService registers users, issues token pairs and rotates refresh tokens.
type AuthService struct {
	repo AuthRepository
	cfg  TokenConfig
	// now is replaced in tests.
	now func() time.Time
}

// NewAuthService constructs an AuthService using the provided repository.
func NewAuthService(repo AuthRepository, cfg TokenConfig) *AuthService {
	if cfg.Issuer == "" {
		cfg.Issuer = "stockkeeper"
	}
	return &AuthService{repo: repo, cfg: cfg, now: time.Now}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return err
	}
	email := req.Email
	exists, err := s.repo.UserExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("user %s: %w", email, apperrors.ErrDuplicate)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Company:      req.Company,
	})
}

// Login checks the credentials and issues a token pair. Unknown users and
// wrong passwords both yield apperrors.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	if err := validateStruct(models.LoginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}
	resp, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	resp.Company = u.Company
	return resp, nil
}

// Refresh exchanges a live refresh token for a new pair. The presented
// token is revoked, so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required: %w", apperrors.ErrUnauthorized)
	}
	userID, err := s.repo.ConsumeRefreshToken(ctx, hashToken(refreshToken), s.now())
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("refresh token rejected: %w", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	resp, err := s.issue(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u, err := s.repo.GetUserByID(ctx, userID); err == nil {
		resp.Company = u.Company
	}
	return resp, nil
}

// Logout revokes every refresh token of the user.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.repo.RevokeUserTokens(ctx, userID)
}

// ParseAccessToken validates an HS256 access token and returns its subject.
func (s *AuthService) ParseAccessToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.cfg.Secret, nil
	},
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject: %w", apperrors.ErrUnauthorized)
	}
	return claims.Subject, nil
}

func (s *AuthService) issue(ctx context.Context, userID string) (*models.AuthResponse, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	refresh := base64.RawURLEncoding.EncodeToString(raw)
	if err := s.repo.SaveRefreshToken(ctx, userID, hashToken(refresh), now.Add(s.cfg.RefreshTTL)); err != nil {
		return nil, err
	}
	return &models.AuthResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
