package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput carries the fields of a new product
type ProductInput struct {
	Name        string
	SKU         string
	Description string
	Price       decimal.Decimal
	CostPrice   decimal.Decimal
	CategoryID  uuid.UUID
}

// ProductUpdate is a partial product update. Nil fields are left as is.
type ProductUpdate struct {
	Name        *string
	SKU         *string
	Description *string
	Price       *decimal.Decimal
	CostPrice   *decimal.Decimal
	CategoryID  *uuid.UUID
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error)
	Update(ctx context.Context, id uuid.UUID, update ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Restock adds quantity units to the product's inventory. It never decrements.
	Restock(ctx context.Context, id uuid.UUID, quantity int, reorderLevel *int) (*domain.Inventory, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validatePrices(input.Price, input.CostPrice); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		SKU:         strings.TrimSpace(input.SKU),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		CostPrice:   input.CostPrice,
		CategoryID:  input.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.Get(ctx, product.ID)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, update ProductUpdate) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if update.Name != nil {
		product.Name = strings.TrimSpace(*update.Name)
	}
	if update.SKU != nil {
		product.SKU = strings.TrimSpace(*update.SKU)
	}
	if update.Description != nil {
		product.Description = strings.TrimSpace(*update.Description)
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.CostPrice != nil {
		product.CostPrice = *update.CostPrice
	}
	if update.CategoryID != nil && *update.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, *update.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		product.CategoryID = *update.CategoryID
	}

	if err := validatePrices(product.Price, product.CostPrice); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.Get(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) Restock(ctx context.Context, id uuid.UUID, quantity int, reorderLevel *int) (*domain.Inventory, error) {
	if quantity <= 0 {
		return nil, domain.NewError(domain.ErrValidation, "Restock quantity must be greater than 0")
	}
	if reorderLevel != nil && *reorderLevel < 0 {
		return nil, domain.NewError(domain.ErrValidation, "Reorder level cannot be negative")
	}

	inventory, err := s.productRepo.Restock(ctx, id, quantity, reorderLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to restock product: %w", err)
	}

	s.logger.Info("Product restocked",
		zap.String("product_id", id.String()),
		zap.Int("added", quantity),
		zap.Int("quantity", inventory.Quantity),
	)

	return inventory, nil
}

func validatePrices(price, costPrice decimal.Decimal) error {
	if price.IsNegative() {
		return domain.NewError(domain.ErrValidation, "Price cannot be negative")
	}
	if costPrice.IsNegative() {
		return domain.NewError(domain.ErrValidation, "Cost price cannot be negative")
	}
	return nil
}
