package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"sales-admin/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
	ErrResetTokenNotFound   = errors.New("password reset token not found")
)

// Only the SHA-256 of a token is stored. Lookups hash the presented value.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshTokenRepository defines the interface for refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// PasswordResetRepository stores single-use password reset tokens
type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	// Consume marks the token used and stores the new password hash of its
	// owner in one transaction
	Consume(ctx context.Context, token string, usedAt time.Time, passwordHash string) error
}

type refreshTokenRepository struct {
	db *sql.DB
}

// NewRefreshTokenRepository creates a new instance of RefreshTokenRepository
func NewRefreshTokenRepository(db *sql.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.UserID, hashToken(token.Token), token.ExpiresAt, token.CreatedAt, token.Revoked,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// FindByToken returns the session for token. Revoked sessions are reported as ErrRefreshTokenRevoked.
func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken := &domain.RefreshToken{Token: token}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE token_hash = $1`, hashToken(token),
	).Scan(
		&refreshToken.ID,
		&refreshToken.UserID,
		&refreshToken.ExpiresAt,
		&refreshToken.CreatedAt,
		&refreshToken.Revoked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	if refreshToken.Revoked {
		return nil, ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, hashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return expectRow(result, ErrRefreshTokenNotFound)
}

// RevokeAllForUser ends every session of a user, used after a password reset
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

type passwordResetRepository struct {
	db *sql.DB
}

// NewPasswordResetRepository creates a new instance of PasswordResetRepository
func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, hashToken(token.Token), token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}
	return nil
}

func (r *passwordResetRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	resetToken := &domain.PasswordResetToken{Token: token}
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1`, hashToken(token),
	).Scan(
		&resetToken.ID,
		&resetToken.UserID,
		&resetToken.ExpiresAt,
		&usedAt,
		&resetToken.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to find password reset token: %w", err)
	}

	if usedAt.Valid {
		resetToken.UsedAt = &usedAt.Time
	}
	return resetToken, nil
}

// Consume fails with ErrResetTokenNotFound when the token was already used, leaving the password untouched.
func (r *passwordResetRepository) Consume(ctx context.Context, token string, usedAt time.Time, passwordHash string) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		var userID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			UPDATE password_reset_tokens SET used_at = $2
			WHERE token_hash = $1 AND used_at IS NULL
			RETURNING user_id`, hashToken(token), usedAt,
		).Scan(&userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrResetTokenNotFound
			}
			return fmt.Errorf("failed to mark password reset token used: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
			userID, passwordHash, usedAt)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return expectRow(result, ErrUserNotFound)
	})
}
