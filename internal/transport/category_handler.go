package transport

import (
	"net/http"

	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

// CategoryHandler handles product categories
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, logger: logger}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router, mw Middlewares) {
	mw = mw.withDefaults()

	r.Route("/api/categories", func(r chi.Router) {
		r.Use(mw.Auth)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(mw.Admin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch categories")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, emptyIfNil(categories))
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch category")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, middleware.SuccessResponse{
		Success: true,
		Data:    category,
		Message: "Category created successfully",
	})
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.SuccessResponse{
		Success: true,
		Data:    category,
		Message: "Category updated successfully",
	})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to delete category")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "Category deleted successfully")
}
