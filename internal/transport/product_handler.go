package transport

import (
	"net/http"

	"sales-admin/internal/domain"
	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest accepts prices as JSON numbers or strings
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	CostPrice   decimal.Decimal `json:"costPrice" validate:"gte=0"`
	CategoryID  string          `json:"categoryId" validate:"required,uuid"`
}

// UpdateProductRequest is a partial update. Omitted fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=64"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	CostPrice   *decimal.Decimal `json:"costPrice" validate:"omitempty,gte=0"`
	CategoryID  *string          `json:"categoryId" validate:"omitempty,uuid"`
}

// RestockRequest adds stock and optionally moves the reorder level
type RestockRequest struct {
	Quantity     int  `json:"quantity" validate:"required,gt=0"`
	ReorderLevel *int `json:"reorderLevel" validate:"omitempty,gte=0"`
}

// ProductHandler handles the product catalog and restocking
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

// RegisterRoutes registers the product routes. Reads need a token, writes need ADMIN.
func (h *ProductHandler) RegisterRoutes(r chi.Router, mw Middlewares) {
	mw = mw.withDefaults()

	r.Route("/api/products", func(r chi.Router) {
		r.Use(mw.Auth)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(mw.Admin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/restock", h.Restock)
		})
	})
}

// List supports categoryId, search, lowStock, limit and offset
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, nil)
	filter := domain.ProductFilter{
		CategoryID: q.UUID("categoryId"),
		Search:     q.get("search"),
		LowStock:   q.Bool("lowStock"),
		Limit:      q.Int("limit"),
		Offset:     q.Int("offset"),
	}
	if err := q.Err(); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "")
		return
	}

	products, total, err := h.productService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch products")
		return
	}

	middleware.RespondWithPage(w, emptyIfNil(products), total)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch product")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	// A category that does not exist is a bad reference, not a missing resource
	product, err := h.productService.Create(r.Context(), service.ProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		CategoryID:  uuid.MustParse(req.CategoryID),
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusBadRequest, "Failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, middleware.SuccessResponse{
		Success: true,
		Data:    product,
		Message: "Product created successfully",
	})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	update := service.ProductUpdate{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
	}
	if req.CategoryID != nil {
		categoryID := uuid.MustParse(*req.CategoryID)
		update.CategoryID = &categoryID
	}

	product, err := h.productService.Update(r.Context(), id, update)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.SuccessResponse{
		Success: true,
		Data:    product,
		Message: "Product updated successfully",
	})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to delete product")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "Product deleted successfully")
}

// Restock only ever adds stock. Order placement is the sole path that removes it.
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	inventory, err := h.productService.Restock(r.Context(), id, req.Quantity, req.ReorderLevel)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to restock product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.SuccessResponse{
		Success: true,
		Data:    inventory,
		Message: "Product restocked successfully",
	})
}
