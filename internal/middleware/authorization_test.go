package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func withRole(r *http.Request, role string) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return r.WithContext(ctx)
}

func TestProperty_AdminRoutesRejectOtherRoles(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only ADMIN passes RequireAdmin", prop.ForAll(
		func(role string) bool {
			handler := RequireAdmin(zap.NewNop())(okHandler())

			req := withRole(httptest.NewRequest("DELETE", "/api/products/1", nil), role)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if role == "ADMIN" {
				return w.Code == http.StatusOK
			}
			return w.Code == http.StatusForbidden
		},
		gen.OneConstOf("ADMIN", "SALES", "admin", "", "OWNER"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRequireAdmin_NoRoleInContext(t *testing.T) {
	handler := RequireAdmin(zap.NewNop())(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/users", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
