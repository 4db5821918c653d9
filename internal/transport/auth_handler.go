package transport

import (
	"net/http"

	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token for refresh and logout
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ForgotPasswordRequest starts the password reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UpdateProfileRequest changes the caller's own account
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=3"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Password        *string `json:"password" validate:"omitempty,min=6,max=72"`
	CurrentPassword *string `json:"currentPassword"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"token"`
}

// ForgotPasswordResponse exposes the reset token outside production
type ForgotPasswordResponse struct {
	ResetToken string `json:"resetToken"`
}

const forgotPasswordMessage = "If an account with that email exists, a password reset token has been issued"

// AuthHandler handles sign-up, sessions and profile operations
type AuthHandler struct {
	authService      service.AuthService
	userService      service.UserService
	exposeResetToken bool
	logger           *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. exposeResetToken returns reset
// tokens in the response body and is meant for local development only.
func NewAuthHandler(authService service.AuthService, userService service.UserService, exposeResetToken bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		userService:      userService,
		exposeResetToken: exposeResetToken,
		logger:           logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, mw Middlewares) {
	mw = mw.withDefaults()

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Patch("/profile", h.UpdateProfile)
			r.With(mw.Admin).Delete("/users/{userId}", h.DeleteUser)
		})
	})
}

// Register handles public sign-up. New accounts always get the SALES role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to register user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, middleware.SuccessResponse{
		Success: true,
		Data:    result,
		Message: "User registered successfully",
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to login")
		return
	}

	h.logger.Info("User logged in", zap.String("user_id", result.User.ID.String()))
	middleware.RespondWithData(w, http.StatusOK, result)
}

// RefreshToken exchanges a refresh token for a new access token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	token, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to refresh token")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, RefreshResponse{AccessToken: token})
}

// Logout revokes one of the caller's refresh tokens
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req RefreshRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.authService.Logout(r.Context(), userID, req.RefreshToken); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to logout")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "Logged out successfully")
}

// ForgotPassword answers 200 whether or not the email belongs to an account
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	token, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to process password reset")
		return
	}

	response := middleware.SuccessResponse{Success: true, Message: forgotPasswordMessage}
	if h.exposeResetToken && token != "" {
		response.Data = ForgotPasswordResponse{ResetToken: token}
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// ResetPassword sets a new password from a reset token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to reset password")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "Password has been reset successfully")
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to get user profile")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, user)
}

// UpdateProfile changes the caller's name, email or password
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to update profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.SuccessResponse{
		Success: true,
		Data:    user,
		Message: "Profile updated successfully",
	})
}

// DeleteUser removes another account. Admins cannot delete themselves.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	userID, ok := uuidParam(r, "userId")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.userService.Delete(r.Context(), actorID, userID); err != nil {
		respondWithServiceError(w, h.logger, err, http.StatusNotFound, "Failed to delete user")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "User deleted successfully")
}
