package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sales-admin/internal/domain"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, phone, email, address, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	customer := &domain.Customer{}
	var email, address sql.NullString
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&email,
		&address,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	customer.Email = stringPtr(email)
	customer.Address = stringPtr(address)
	return customer, nil
}

// Create inserts a new customer. Email and phone collisions surface as ErrCustomerAlreadyExists.
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, phone, email, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Phone,
		nullStringPtr(customer.Email),
		nullStringPtr(customer.Address),
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCustomerAlreadyExists
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// FindByEmail retrieves a customer by email
func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.findOne(ctx, "email", email)
}

// FindByPhone retrieves a customer by phone
func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return r.findOne(ctx, "phone", phone)
}

func (r *customerRepository) findOne(ctx context.Context, column, value string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + column + ` = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by %s: %w", column, err)
	}

	return customer, nil
}

// List retrieves customers with optional search, pagination, and sorting
func (r *customerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]string{
		"createdAt": "created_at",
		"name":      "name",
	}

	sortBy, ok := validSortFields[filter.SortBy]
	if !ok {
		sortBy = "created_at"
	}

	sortOrder := filter.SortOrder
	if sortOrder != domain.SortOrderAsc && sortOrder != domain.SortOrderDesc {
		sortOrder = domain.SortOrderDesc
	}

	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		whereClause = fmt.Sprintf("WHERE name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d", argIndex, argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		%s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, customerColumns, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, total, nil
}

// Update replaces the mutable customer fields
func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, phone = $3, email = $4, address = $5
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Phone,
		nullStringPtr(customer.Email),
		nullStringPtr(customer.Address),
	).Scan(&customer.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCustomerNotFound
		}
		if isUniqueViolation(err) {
			return ErrCustomerAlreadyExists
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return nil
}

// Delete removes a customer without orders
func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var hasOrders bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE customer_id = $1)`, id).Scan(&hasOrders)
	if err != nil {
		return fmt.Errorf("failed to check customer orders: %w", err)
	}
	if hasOrders {
		return ErrCustomerHasOrders
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		// An order inserted after the check still trips the foreign key
		if isForeignKeyViolation(err) {
			return ErrCustomerHasOrders
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}
