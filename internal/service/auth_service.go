package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")

	ErrInvalidResetToken = domain.NewError(domain.ErrValidation, "Invalid or expired password reset token")
	ErrWrongPassword     = domain.NewError(domain.ErrValidation, "Current password is incorrect")
	ErrPasswordRequired  = domain.NewError(domain.ErrValidation, "Current password is required to set a new password")

	ErrRefreshTokenNotOwned = domain.NewError(domain.ErrForbidden, "Refresh token belongs to another user")
)

// TokenConfig holds the signing secret and lifetimes of issued tokens
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration

	// LogResetTokens writes issued reset tokens to the log. Never set in production.
	LogResetTokens bool
}

// RegisterInput is a public sign-up request
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileUpdate changes the caller's own account. Nil fields are left as is.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	Password        *string
	CurrentPassword *string
}

// AuthResult is returned by sign-up and login
type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Logout revokes a refresh token of userID. Unknown or revoked tokens count as logged out.
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	// ForgotPassword issues a reset token when the email is known. The token is
	// empty when no user matched.
	ForgotPassword(ctx context.Context, email string) (token string, err error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// Claims represents the JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	resetRepo        repository.PasswordResetRepository
	tokens           TokenConfig
	logger           *zap.Logger
	now              func() time.Time
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	resetRepo repository.PasswordResetRepository,
	tokens TokenConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		resetRepo:        resetRepo,
		tokens:           tokens,
		logger:           logger,
		now:              time.Now,
	}
}

// Register creates a SALES account and signs it in
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         domain.RoleSales,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))

	return s.issueTokens(ctx, user)
}

// Login authenticates a user and returns JWT tokens
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := verifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	session, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return nil
		}
		return fmt.Errorf("failed to find refresh token: %w", err)
	}
	if session.UserID != userID {
		return ErrRefreshTokenNotOwned
	}

	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *authService) RefreshToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if s.now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	newAccessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.tokens.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return "", nil
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	resetToken := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(s.tokens.ResetTTL),
		CreatedAt: now,
	}

	if err := s.resetRepo.Create(ctx, resetToken); err != nil {
		return "", fmt.Errorf("failed to store password reset token: %w", err)
	}

	fields := []zap.Field{
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", resetToken.ExpiresAt),
	}
	if s.tokens.LogResetTokens {
		fields = append(fields, zap.String("reset_token", resetToken.Token))
	}
	s.logger.Info("Password reset token issued", fields...)

	return resetToken.Token, nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	resetToken, err := s.resetRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find password reset token: %w", err)
	}

	now := s.now()
	if resetToken.UsedAt != nil || now.After(resetToken.ExpiresAt) {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByID(ctx, resetToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	// A rejected password must leave the token usable
	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.resetRepo.Consume(ctx, token, now, hashedPassword); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) || errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.logger.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}

	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email != user.Email {
			existing, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
				return nil, fmt.Errorf("failed to check existing user: %w", err)
			}
			if existing != nil {
				return nil, repository.ErrUserAlreadyExists
			}
			user.Email = email
		}
	}

	if update.Password != nil {
		if update.CurrentPassword == nil || *update.CurrentPassword == "" {
			return nil, ErrPasswordRequired
		}
		if err := verifyPassword(user.PasswordHash, *update.CurrentPassword); err != nil {
			return nil, ErrWrongPassword
		}
		hashedPassword, err := hashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *authService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// generateAccessToken generates a JWT access token with user ID and role claims
func (s *authService) generateAccessToken(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokens.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.tokens.Secret))
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *authService) generateRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	now := s.now()
	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(s.tokens.RefreshTTL),
		CreatedAt: now,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
