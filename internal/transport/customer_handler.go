package transport

import (
	"net/http"

	"sales-admin/internal/domain"
	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CustomerRequest is the body of customer create and update
type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,max=20"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

func (req CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   &req.Email,
		Address: &req.Address,
	}
}

// CustomerHandler handles customer CRUD
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, logger: logger}
}

// RegisterRoutes registers the customer routes. Any authenticated user may manage customers.
func (h *CustomerHandler) RegisterRoutes(r chi.Router, mw Middlewares) {
	mw = mw.withDefaults()

	r.Route("/api/customers", func(r chi.Router) {
		r.Use(mw.Auth)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List supports search, limit, offset, sortBy (createdAt or name) and sortOrder
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, nil)
	filter := domain.CustomerFilter{
		Search:    q.get("search"),
		Limit:     q.Int("limit"),
		Offset:    q.Int("offset"),
		SortBy:    q.get("sortBy"),
		SortOrder: domain.ParseSortOrder(q.get("sortOrder")),
	}
	if err := q.Err(); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "")
		return
	}

	customers, total, err := h.customerService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch customers")
		return
	}

	middleware.RespondWithPage(w, emptyIfNil(customers), total)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch customer")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	customer, err := h.customerService.Create(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to create customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, middleware.SuccessResponse{
		Success: true,
		Data:    customer,
		Message: "Customer created",
	})
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var req CustomerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to update customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.SuccessResponse{
		Success: true,
		Data:    customer,
		Message: "Customer updated",
	})
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to delete customer")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "Customer deleted")
}
