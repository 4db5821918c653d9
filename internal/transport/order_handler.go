package transport

import (
	"fmt"
	"net/http"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"lte=2147483647"`
}

// CreateOrderRequest is the body of POST /api/orders. Quantities, an empty item
// list and the payment method are checked by the order service.
type CreateOrderRequest struct {
	CustomerID    string             `json:"customerId" validate:"required,uuid"`
	UserID        string             `json:"userId" validate:"omitempty,uuid"`
	Items         []OrderItemRequest `json:"items" validate:"dive"`
	PaymentMethod string             `json:"paymentMethod"`
}

func (req CreateOrderRequest) input(caller uuid.UUID) domain.PlaceOrderInput {
	input := domain.PlaceOrderInput{
		CustomerID:    uuid.MustParse(req.CustomerID),
		UserID:        caller,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Items:         make([]domain.OrderLine, 0, len(req.Items)),
	}
	if req.UserID != "" {
		input.UserID = uuid.MustParse(req.UserID)
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, domain.OrderLine{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
		})
	}
	return input
}

// OrderHandler handles order placement, listing and the dashboard statistics
type OrderHandler struct {
	orderService service.OrderService
	statsService service.StatisticsService
	location     *time.Location
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler. Date-only filters are read in loc.
func NewOrderHandler(
	orderService service.OrderService,
	statsService service.StatisticsService,
	loc *time.Location,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		statsService: statsService,
		location:     loc,
		logger:       logger,
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router, mw Middlewares) {
	mw = mw.withDefaults()

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(mw.Auth)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/stats/dashboard", h.Statistics)
		r.Get("/{id}", h.Get)
	})
}

// Create places an order. userId defaults to the authenticated user.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	// Unknown customer, user or product ids are bad references here
	order, err := h.orderService.PlaceOrder(r.Context(), req.input(caller))
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusBadRequest, "Failed to create order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, middleware.SuccessResponse{
		Success: true,
		Data:    order,
		Message: "Order created successfully",
	})
}

// List supports status, customerId, userId, startDate, endDate, limit, offset,
// sortBy and sortOrder
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, h.location)
	filter := domain.OrderFilter{
		Status:     domain.OrderStatus(q.get("status")),
		CustomerID: q.UUID("customerId"),
		UserID:     q.UUID("userId"),
		StartDate:  q.Date("startDate", false),
		EndDate:    q.Date("endDate", true),
		Limit:      q.Int("limit"),
		Offset:     q.Int("offset"),
		SortBy:     q.get("sortBy"),
		SortOrder:  domain.ParseSortOrder(q.get("sortOrder")),
	}
	if err := q.Err(); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "")
		return
	}

	orders, total, err := h.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.SuccessResponse{
		Success: true,
		Data:    emptyIfNil(orders),
		Message: fmt.Sprintf("Retrieved %d orders", len(orders)),
		Total:   &total,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch order")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, order)
}

func (h *OrderHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetStatistics(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch order statistics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.SuccessResponse{
		Success: true,
		Data:    stats,
		Message: "Order statistics retrieved successfully",
	})
}
