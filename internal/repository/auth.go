// Package repository provides PostgreSQL persistence for StockKeeper
// accounts, refresh tokens and inventory records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

const uniqueViolation = "23505"

// PostgresAuthRepository stores users and their refresh tokens.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists reports whether a user with the given email exists.
func (s *PostgresAuthRepository) UserExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// CreateUser inserts u. A taken email yields apperrors.ErrDuplicate.
func (s *PostgresAuthRepository) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash, company) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.Company,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", u.Email, apperrors.ErrDuplicate)
	}
	return err
}

// GetUserByEmail loads a user by login email.
func (s *PostgresAuthRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, company FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Company)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return &u, nil
}

// GetUserByID loads a user by ID.
func (s *PostgresAuthRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, company FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Company)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByID: %w", err)
	}
	return &u, nil
}

// SaveRefreshToken records the hash of an issued refresh token.
func (s *PostgresAuthRepository) SaveRefreshToken(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	_, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`,
		hash, userID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("SaveRefreshToken: %w", err)
	}
	return nil
}

// ConsumeRefreshToken revokes a live refresh token and returns its owner.
// Unknown, revoked and expired tokens yield apperrors.ErrNotFound, so a
// token can be consumed only once.
func (s *PostgresAuthRepository) ConsumeRefreshToken(ctx context.Context, hash string, now time.Time) (string, error) {
	var userID string
	err := s.DB.QueryRowContext(ctx, `
		UPDATE refresh_tokens SET revoked = true
		 WHERE token_hash = $1 AND revoked = false AND expires_at > $2
		RETURNING user_id
	`, hash, now).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ConsumeRefreshToken: %w", err)
	}
	return userID, nil
}

// RevokeUserTokens revokes every refresh token of the user.
func (s *PostgresAuthRepository) RevokeUserTokens(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND revoked = false`,
		userID)
	if err != nil {
		return fmt.Errorf("RevokeUserTokens: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
