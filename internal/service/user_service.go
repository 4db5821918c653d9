package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrCannotDeleteSelf = domain.NewError(domain.ErrValidation, "You cannot delete your own account")

// CreateUserInput is an administrator-created account
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UserService manages accounts on behalf of administrators
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, actorID, userID uuid.UUID) error
	// EnsureAdmin creates an ADMIN account for email unless one already exists
	EnsureAdmin(ctx context.Context, name, email, password string) (created bool, err error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	role := input.Role
	if role == "" {
		role = domain.RoleSales
	}
	if !role.Valid() {
		return nil, domain.NewError(domain.ErrValidation, "Invalid role %q", role)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Delete(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted",
		zap.String("user_id", userID.String()),
		zap.String("deleted_by", actorID.String()),
	)
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, fmt.Errorf("failed to check admin user: %w", err)
	}

	if _, err := s.Create(ctx, CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	}); err != nil {
		return false, err
	}

	return true, nil
}
