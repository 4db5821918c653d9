package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sales-admin/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	ErrUserNotFound          = domain.NewError(domain.ErrNotFound, "User not found")
	ErrUserAlreadyExists     = domain.NewError(domain.ErrConflict, "User with this email already exists")
	ErrUserHasOrders         = domain.NewError(domain.ErrConflict, "Cannot delete user with existing orders")
	ErrCustomerNotFound      = domain.NewError(domain.ErrNotFound, "Customer not found")
	ErrCustomerAlreadyExists = domain.NewError(domain.ErrConflict, "Customer with this email or phone already exists")
	ErrCustomerHasOrders     = domain.NewError(domain.ErrConflict, "Cannot delete customer with existing orders")
	ErrCategoryNotFound      = domain.NewError(domain.ErrNotFound, "Category not found")
	ErrCategoryAlreadyExists = domain.NewError(domain.ErrConflict, "Category with this name already exists")
	ErrCategoryInUse         = domain.NewError(domain.ErrConflict, "Cannot delete category with existing products")
	ErrProductNotFound       = domain.NewError(domain.ErrNotFound, "Product not found")
	ErrProductAlreadyExists  = domain.NewError(domain.ErrConflict, "Product with this SKU already exists")
	ErrProductInUse          = domain.NewError(domain.ErrConflict, "Cannot delete product referenced by orders")
	ErrInventoryNotFound     = domain.NewError(domain.ErrConfiguration, "Product inventory not found")
	ErrOrderNotFound         = domain.NewError(domain.ErrNotFound, "Order not found")
)

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

// expectRow returns notFound when an update or delete matched nothing
func expectRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// nullString maps empty strings to NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
