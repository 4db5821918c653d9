package transport

import (
	"net/http"

	"sales-admin/internal/domain"
	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateUserRequest is an administrator-created account
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN SALES"`
}

// UserHandler handles account administration
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers the admin-only user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, mw Middlewares) {
	mw = mw.withDefaults()

	r.Route("/api/users", func(r chi.Router) {
		r.Use(mw.Auth, mw.Admin)
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

// List returns every account without password hashes
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to fetch users")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, emptyIfNil(users))
}

// Create adds an account with the requested role, SALES by default
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, err := h.userService.Create(r.Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to create user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, middleware.SuccessResponse{
		Success: true,
		Data:    user,
		Message: "User created successfully",
	})
}
