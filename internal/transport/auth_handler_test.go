package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type authTestServer struct {
	router      *chi.Mux
	authService service.AuthService
	userService service.UserService
}

func newAuthTestServer() *authTestServer {
	logger := zap.NewNop()
	userRepo := newMockUserRepository()
	authService := service.NewAuthService(
		userRepo,
		newMockRefreshTokenRepository(),
		newMockPasswordResetRepository(userRepo),
		service.TokenConfig{
			Secret:     testSecret,
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
			ResetTTL:   30 * time.Minute,
		},
		logger,
	)
	userService := service.NewUserService(userRepo, logger)

	router := chi.NewRouter()
	mw := Middlewares{
		Auth:  middleware.AuthMiddleware(testSecret, logger),
		Admin: middleware.RequireAdmin(logger),
	}
	NewAuthHandler(authService, userService, true, logger).RegisterRoutes(router, mw)
	NewUserHandler(userService, logger).RegisterRoutes(router, mw)

	return &authTestServer{router: router, authService: authService, userService: userService}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Total   *int            `json:"total"`
}

func (s *authTestServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	return serve(t, s.router, method, path, token, body)
}

func serve(t *testing.T, h http.Handler, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env), "response must be a JSON envelope")
	return w.Code, env
}

func (s *authTestServer) registerAdmin(t *testing.T) string {
	t.Helper()
	_, err := s.userService.EnsureAdmin(context.Background(), "Administrator", "admin@example.com", "admin-pass")
	require.NoError(t, err)
	result, err := s.authService.Login(context.Background(), "admin@example.com", "admin-pass")
	require.NoError(t, err)
	return result.AccessToken
}

// Invalid registration data is rejected with a 400 envelope
func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("registration with invalid data returns validation errors", prop.ForAll(
		func(invalidCase int) bool {
			s := newAuthTestServer()

			var reqBody RegisterRequest
			switch invalidCase % 4 {
			case 0:
				reqBody = RegisterRequest{Name: "Jane Doe", Email: "", Password: "secret1"}
			case 1:
				reqBody = RegisterRequest{Name: "Jane Doe", Email: "not-an-email", Password: "secret1"}
			case 2:
				reqBody = RegisterRequest{Name: "Jane Doe", Email: "jane@example.com", Password: "short"}
			case 3:
				reqBody = RegisterRequest{Name: "Jo", Email: "jane@example.com", Password: "secret1"}
			}

			code, env := s.do(t, http.MethodPost, "/api/auth/register", "", reqBody)
			if code != http.StatusBadRequest {
				t.Logf("FAIL: Expected 400 status code, got %d", code)
				return false
			}
			return !env.Success && env.Error == "Validation failed"
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Successful registration returns the profile and both tokens
func TestProperty_SuccessfulRegistrationReturnsProfileAndTokens(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("registration returns a SALES profile with tokens", prop.ForAll(
		func(email, password, name string) bool {
			s := newAuthTestServer()

			code, env := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
				Name: name, Email: email, Password: password,
			})
			if code != http.StatusCreated {
				t.Logf("FAIL: Expected 201 status code, got %d (%s)", code, env.Error)
				return false
			}

			var result service.AuthResult
			if err := json.Unmarshal(env.Data, &result); err != nil {
				t.Logf("FAIL: Could not decode response: %v", err)
				return false
			}
			if result.User == nil || result.User.Email != email || result.User.Role != domain.RoleSales {
				t.Logf("FAIL: unexpected profile %+v", result.User)
				return false
			}

			claims, err := s.authService.ValidateToken(result.AccessToken)
			if err != nil || claims.UserID != result.User.ID {
				t.Logf("FAIL: access token does not identify the new user: %v", err)
				return false
			}
			return result.RefreshToken != ""
		},
		gen.RegexMatch(`^[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)$`),
		gen.RegexMatch(`^[A-Za-z0-9]{6,20}$`),
		gen.RegexMatch(`^[A-Z][a-z]{2,15}$`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	s := newAuthTestServer()
	body := RegisterRequest{Name: "Jane Doe", Email: "jane@example.com", Password: "secret1"}

	code, _ := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, code)

	body.Email = "JANE@example.com"
	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User with this email already exists", env.Error)
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	s := newAuthTestServer()

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Jane Doe", Email: "jane@example.com", Password: strings.Repeat("é", 40),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", env.Error)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newAuthTestServer()
	s.registerAdmin(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "admin@example.com", Password: "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
}

func TestRefreshAndLogout(t *testing.T) {
	s := newAuthTestServer()
	_, env := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Jane Doe", Email: "jane@example.com", Password: "secret1",
	})
	var result service.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &result))

	code, env := s.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: result.RefreshToken})
	require.Equal(t, http.StatusOK, code)
	var refreshed RefreshResponse
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)

	adminToken := s.registerAdmin(t)
	code, env = s.do(t, http.MethodPost, "/api/auth/logout", adminToken, RefreshRequest{RefreshToken: result.RefreshToken})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Refresh token belongs to another user", env.Error)

	code, env = s.do(t, http.MethodPost, "/api/auth/logout", result.AccessToken, RefreshRequest{RefreshToken: result.RefreshToken})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logged out successfully", env.Message)

	code, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: result.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMe_RequiresToken(t *testing.T) {
	s := newAuthTestServer()

	code, env := s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Missing authorization header", env.Error)

	token := s.registerAdmin(t)
	code, env = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)

	var user domain.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NotContains(t, string(env.Data), "password")
}

func TestForgotAndResetPassword(t *testing.T) {
	s := newAuthTestServer()
	s.registerAdmin(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: "nobody@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, forgotPasswordMessage, env.Message)
	assert.Empty(t, env.Data)

	code, env = s.do(t, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: "admin@example.com"})
	require.Equal(t, http.StatusOK, code)
	var issued ForgotPasswordResponse
	require.NoError(t, json.Unmarshal(env.Data, &issued))
	require.NotEmpty(t, issued.ResetToken)

	tooLong := ResetPasswordRequest{Token: issued.ResetToken, Password: strings.Repeat("x", 80)}
	code, env = s.do(t, http.MethodPost, "/api/auth/reset-password", "", tooLong)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Error)

	// 40 characters pass the tag but exceed bcrypt's 72 byte limit
	tooLong.Password = strings.Repeat("é", 40)
	code, env = s.do(t, http.MethodPost, "/api/auth/reset-password", "", tooLong)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", env.Error)

	reset := ResetPasswordRequest{Token: issued.ResetToken, Password: "new-pass"}
	code, env = s.do(t, http.MethodPost, "/api/auth/reset-password", "", reset)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Password has been reset successfully", env.Message)

	code, env = s.do(t, http.MethodPost, "/api/auth/reset-password", "", reset)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid or expired password reset token", env.Error)

	code, _ = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "admin@example.com", Password: "new-pass"})
	assert.Equal(t, http.StatusOK, code)
}

func TestUpdateProfile(t *testing.T) {
	s := newAuthTestServer()
	token := s.registerAdmin(t)

	code, env := s.do(t, http.MethodPatch, "/api/auth/profile", token, map[string]string{"name": "Head Office"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profile updated successfully", env.Message)

	code, env = s.do(t, http.MethodPatch, "/api/auth/profile", token, map[string]string{"password": "another-pass"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Current password is required to set a new password", env.Error)
}

func TestAdminRoutes(t *testing.T) {
	s := newAuthTestServer()
	adminToken := s.registerAdmin(t)

	_, env := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Sam Sales", Email: "sam@example.com", Password: "secret1",
	})
	var sales service.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &sales))

	t.Run("sales users cannot list accounts", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/users", sales.AccessToken, nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Insufficient permissions", env.Error)
	})

	t.Run("admin creates a user", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/users", adminToken, CreateUserRequest{
			Name: "Second Admin", Email: "second@example.com", Password: "secret1", Role: "ADMIN",
		})
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "User created successfully", env.Message)

		code, env = s.do(t, http.MethodGet, "/api/users", adminToken, nil)
		require.Equal(t, http.StatusOK, code)
		var users []domain.User
		require.NoError(t, json.Unmarshal(env.Data, &users))
		assert.Len(t, users, 3)
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/users", adminToken, CreateUserRequest{
			Name: "Bad Role", Email: "bad@example.com", Password: "secret1", Role: "OWNER",
		})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("admin deletes a sales user", func(t *testing.T) {
		code, env := s.do(t, http.MethodDelete, "/api/auth/users/"+sales.User.ID.String(), adminToken, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "User deleted successfully", env.Message)

		code, _ = s.do(t, http.MethodDelete, "/api/auth/users/"+sales.User.ID.String(), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("malformed user id", func(t *testing.T) {
		code, env := s.do(t, http.MethodDelete, "/api/auth/users/not-a-uuid", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid user ID", env.Error)
	})
}
