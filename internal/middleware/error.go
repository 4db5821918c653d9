package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse is the success envelope. Total is set on paged listings.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Total   *int        `json:"total,omitempty"`
}

// RespondWithError sends a failure envelope
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a failure envelope with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}

// RespondWithValidationErrors sends a 400 listing each invalid field
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	RespondWithErrorDetails(w, http.StatusBadRequest, "Validation failed", map[string]interface{}{
		"validation_errors": errors,
	})
}

// RespondWithData sends a success envelope carrying data
func RespondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	RespondWithJSON(w, statusCode, SuccessResponse{Success: true, Data: data})
}

// RespondWithMessage sends a success envelope carrying only a message
func RespondWithMessage(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, SuccessResponse{Success: true, Message: message})
}

// RespondWithPage sends one page of a listing along with the total match count
func RespondWithPage(w http.ResponseWriter, data interface{}, total int) {
	RespondWithJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data, Total: &total})
}

// ErrorHandlingMiddleware converts panics into 500 envelopes
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Stack("stack"),
					)

					RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
