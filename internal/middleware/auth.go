package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"

	requestUserKey contextKey = "request_user"
)

// requestUser is placed in the context by LoggingMiddleware before routing.
// AuthMiddleware records the caller on it so the outer request log sees who
// was authenticated further down the chain.
type requestUser struct {
	id uuid.UUID
	ok bool
}

func withRequestUser(ctx context.Context) (context.Context, *requestUser) {
	user := &requestUser{}
	return context.WithValue(ctx, requestUserKey, user), user
}

func recordRequestUser(ctx context.Context, userID uuid.UUID) {
	if user, ok := ctx.Value(requestUserKey).(*requestUser); ok {
		user.id, user.ok = userID, true
	}
}

// AuthMiddleware validates HS256 bearer tokens and puts the user id and role into the request context
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" || strings.Contains(tokenString, " ") {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "Token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			rawID, _ := claims["user_id"].(string)
			userID, err := uuid.Parse(rawID)
			if err != nil {
				logger.Warn("Token carries an invalid user_id claim")
				RespondWithError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			role, ok := claims["role"].(string)
			if !ok || role == "" {
				logger.Warn("Missing role in token claims")
				RespondWithError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			recordRequestUser(r.Context(), userID)
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserRoleKey, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user's id from the request context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserRole extracts the authenticated user's role from the request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
