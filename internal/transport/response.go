// Package transport holds the HTTP handlers of the admin API.
package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/middleware"
	"sales-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	// Money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// errorStatus maps an error kind to its HTTP status. notFound is the status
// used for ErrNotFound, since a missing referenced id is a bad request.
func errorStatus(err error, notFound int) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return notFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes the failure envelope for err. Unclassified
// errors are logged and answered with fallback.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, notFound int, fallback string) {
	status := errorStatus(err, notFound)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, status, fallback)
		return
	}

	msg, ok := domain.Message(err)
	if !ok {
		msg = err.Error()
	}
	middleware.RespondWithError(w, status, msg)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func currentUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

// queryParser collects the first invalid query parameter
type queryParser struct {
	values  map[string][]string
	loc     *time.Location
	invalid string
}

func newQueryParser(r *http.Request, loc *time.Location) *queryParser {
	if loc == nil {
		loc = time.Local
	}
	return &queryParser{values: r.URL.Query(), loc: loc}
}

func (p *queryParser) get(name string) string {
	if v := p.values[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (p *queryParser) fail(name string) {
	if p.invalid == "" {
		p.invalid = name
	}
}

func (p *queryParser) Int(name string) int {
	raw := p.get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name)
		return 0
	}
	return n
}

func (p *queryParser) Bool(name string) bool {
	raw := p.get(name)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name)
	}
	return b
}

func (p *queryParser) UUID(name string) *uuid.UUID {
	raw := p.get(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		p.fail(name)
		return nil
	}
	return &id
}

// Date accepts RFC3339 or YYYY-MM-DD in the configured zone. With endOfDay a
// date-only value covers the whole day.
func (p *queryParser) Date(name string, endOfDay bool) *time.Time {
	raw := p.get(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, p.loc)
	if err != nil {
		p.fail(name)
		return nil
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t
}

// Err reports the first invalid parameter
func (p *queryParser) Err() error {
	if p.invalid == "" {
		return nil
	}
	return domain.NewError(domain.ErrValidation, "Invalid %s", p.invalid)
}

// emptyIfNil keeps JSON arrays from rendering as null
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
