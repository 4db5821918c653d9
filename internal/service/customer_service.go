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
)

var (
	ErrCustomerEmailTaken      = domain.NewError(domain.ErrConflict, "Customer with this email already exists")
	ErrCustomerPhoneTaken      = domain.NewError(domain.ErrConflict, "Customer with this phone already exists")
	ErrOtherCustomerEmailTaken = domain.NewError(domain.ErrConflict, "Another customer with this email exists")
	ErrOtherCustomerPhoneTaken = domain.NewError(domain.ErrConflict, "Another customer with this phone exists")
)

// CustomerInput carries the writable customer fields
type CustomerInput struct {
	Name    string
	Phone   string
	Email   *string
	Address *string
}

// CustomerService defines the interface for customer business logic
type CustomerService interface {
	Create(ctx context.Context, input CustomerInput) (*domain.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int, error)
	Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	input = cleanCustomerInput(input)

	if err := s.checkUnique(ctx, uuid.Nil, input, ErrCustomerEmailTaken, ErrCustomerPhoneTaken); err != nil {
		return nil, err
	}

	now := time.Now()
	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	customers, total, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error) {
	input = cleanCustomerInput(input)

	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if err := s.checkUnique(ctx, id, input, ErrOtherCustomerEmailTaken, ErrOtherCustomerPhoneTaken); err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.Email = input.Email
	customer.Address = input.Address

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

// checkUnique rejects an email or phone already held by a customer other than self
func (s *customerService) checkUnique(ctx context.Context, self uuid.UUID, input CustomerInput, emailErr, phoneErr error) error {
	if input.Email != nil {
		existing, err := s.customerRepo.FindByEmail(ctx, *input.Email)
		if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
			return fmt.Errorf("failed to check customer email: %w", err)
		}
		if existing != nil && existing.ID != self {
			return emailErr
		}
	}

	existing, err := s.customerRepo.FindByPhone(ctx, input.Phone)
	if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
		return fmt.Errorf("failed to check customer phone: %w", err)
	}
	if existing != nil && existing.ID != self {
		return phoneErr
	}

	return nil
}

func cleanCustomerInput(input CustomerInput) CustomerInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = trimOptional(input.Email, true)
	input.Address = trimOptional(input.Address, false)
	return input
}

// trimOptional trims s and maps blank values to nil
func trimOptional(s *string, lower bool) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	if lower {
		v = strings.ToLower(v)
	}
	return &v
}
