package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/metrics"
	"sales-admin/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyOrder           = domain.NewError(domain.ErrValidation, "Order must contain at least one item")
	ErrInvalidQuantity      = domain.NewError(domain.ErrValidation, "Item quantity must be greater than 0")
	ErrInvalidPaymentMethod = domain.NewError(domain.ErrValidation, "Payment method must be one of CASH, CARD, UPI, NETBANKING")
	ErrQuantityTooLarge     = domain.NewError(domain.ErrValidation, "Quantity per product must not exceed %d", MaxItemQuantity)
)

// MaxItemQuantity bounds the combined quantity of one product in an order to
// what an INTEGER column holds
const MaxItemQuantity = math.MaxInt32

// OrderService defines the interface for order placement and retrieval
type OrderService interface {
	PlaceOrder(ctx context.Context, input domain.PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	metrics      *metrics.OrderMetrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	orderMetrics *metrics.OrderMetrics,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		metrics:      orderMetrics,
		logger:       logger,
		now:          time.Now,
	}
}

// PlaceOrder validates every line against current stock, snapshots prices and
// persists the order while decrementing inventory, all in one transaction.
func (s *orderService) PlaceOrder(ctx context.Context, input domain.PlaceOrderInput) (*domain.Order, error) {
	start := s.now()

	order, err := s.placeOrder(ctx, input)
	if err != nil {
		s.metrics.RecordRejected(rejectionReason(err))
		s.logger.Warn("Order rejected",
			zap.String("customer_id", input.CustomerID.String()),
			zap.String("user_id", input.UserID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	total, _ := order.TotalAmount.Float64()
	s.metrics.RecordPlaced(total, s.now().Sub(start))
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

func (s *orderService) placeOrder(ctx context.Context, input domain.PlaceOrderInput) (*domain.Order, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	if _, err := s.customerRepo.FindByID(ctx, input.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Lines naming the same product are checked against their combined quantity
	requested := make(map[uuid.UUID]int, len(input.Items))
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, line := range input.Items {
		if _, seen := requested[line.ProductID]; !seen {
			productIDs = append(productIDs, line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
	}

	order := &domain.Order{
		ID:            uuid.New(),
		CustomerID:    input.CustomerID,
		UserID:        input.UserID,
		Status:        domain.OrderStatusCompleted,
		PaymentMethod: input.PaymentMethod,
		CreatedAt:     s.now(),
	}

	err := s.orderRepo.InTx(ctx, func(tx repository.OrderTx) error {
		products, err := tx.LockProducts(ctx, productIDs)
		if err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(input.Items))
		for i, line := range input.Items {
			product, ok := products[line.ProductID]
			if !ok {
				return domain.NewError(domain.ErrNotFound, "Product %s not found", line.ProductID)
			}
			if product.Inventory == nil {
				return domain.NewError(domain.ErrConfiguration, "Product %s has no inventory record", product.Name)
			}
			if want := requested[product.ID]; want > product.Inventory.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Inventory.Quantity,
					Requested:   want,
				}
			}

			items = append(items, domain.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       product.Price,
				Position:    i,
			})
		}

		order.Items = items
		order.TotalAmount = domain.ComputeTotal(items)

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		for _, id := range productIDs {
			ok, err := tx.DecrementStock(ctx, id, requested[id])
			if err != nil {
				return err
			}
			if !ok {
				product := products[id]
				return &domain.InsufficientStockError{
					ProductID:   id,
					ProductName: product.Name,
					Available:   product.Inventory.Quantity,
					Requested:   requested[id],
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	placed, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load placed order: %w", err)
	}

	return placed, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListOrders applies the listing defaults: COMPLETED status, createdAt desc, 10 per page
func (s *orderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	filter.Status = domain.ParseOrderStatus(string(filter.Status))
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	if filter.SortBy != "createdAt" && filter.SortBy != "totalAmount" {
		filter.SortBy = "createdAt"
	}
	if filter.SortOrder != domain.SortOrderAsc {
		filter.SortOrder = domain.SortOrderDesc
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func validateOrderInput(input domain.PlaceOrderInput) error {
	if len(input.Items) == 0 {
		return ErrEmptyOrder
	}
	combined := make(map[uuid.UUID]int, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if line.Quantity > MaxItemQuantity-combined[line.ProductID] {
			return ErrQuantityTooLarge
		}
		combined[line.ProductID] += line.Quantity
	}
	if !input.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.ReasonInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConfiguration):
		return metrics.ReasonInvalid
	default:
		return metrics.ReasonError
	}
}
