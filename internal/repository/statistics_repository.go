package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sales-admin/internal/domain"

	"github.com/shopspring/decimal"
)

// StatisticsRepository runs the aggregate queries behind the dashboard
type StatisticsRepository interface {
	// Summary counts orders and sums their totals, optionally only those created at or after since
	Summary(ctx context.Context, since *time.Time) (int, decimal.Decimal, error)
	TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error)
	TopCustomers(ctx context.Context, limit int) ([]domain.TopCustomer, error)
	TopSalesUsers(ctx context.Context, limit int) ([]domain.TopSalesUser, error)
}

type statisticsRepository struct {
	db *sql.DB
}

// NewStatisticsRepository creates a new instance of StatisticsRepository
func NewStatisticsRepository(db *sql.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) Summary(ctx context.Context, since *time.Time) (int, decimal.Decimal, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders`
	args := []interface{}{}
	if since != nil {
		query += ` WHERE created_at >= $1`
		args = append(args, *since)
	}

	var (
		count int
		total decimal.Decimal
	)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count, &total); err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to summarize orders: %w", err)
	}

	return count, total, nil
}

func (r *statisticsRepository) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, p.name, SUM(oi.quantity) AS total_quantity, SUM(oi.quantity * oi.price) AS total_revenue
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		GROUP BY oi.product_id, p.name
		ORDER BY total_quantity DESC, oi.product_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	defer rows.Close()

	products := []domain.TopProduct{}
	for rows.Next() {
		var (
			product domain.TopProduct
			name    sql.NullString
		)
		if err := rows.Scan(&product.ProductID, &name, &product.TotalQuantity, &product.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan product ranking: %w", err)
		}
		product.ProductName = nameOrUnknown(name)
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product ranking: %w", err)
	}

	return products, nil
}

func (r *statisticsRepository) TopCustomers(ctx context.Context, limit int) ([]domain.TopCustomer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.customer_id, c.name, COUNT(o.id), SUM(o.total_amount) AS total_spent
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		GROUP BY o.customer_id, c.name
		ORDER BY total_spent DESC, o.customer_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.TopCustomer{}
	for rows.Next() {
		var (
			customer domain.TopCustomer
			name     sql.NullString
		)
		if err := rows.Scan(&customer.CustomerID, &name, &customer.TotalOrders, &customer.TotalSpent); err != nil {
			return nil, fmt.Errorf("failed to scan customer ranking: %w", err)
		}
		customer.CustomerName = nameOrUnknown(name)
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer ranking: %w", err)
	}

	return customers, nil
}

func (r *statisticsRepository) TopSalesUsers(ctx context.Context, limit int) ([]domain.TopSalesUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.user_id, u.name, COUNT(o.id), SUM(o.total_amount) AS total_revenue
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		GROUP BY o.user_id, u.name
		ORDER BY total_revenue DESC, o.user_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank sales users: %w", err)
	}
	defer rows.Close()

	users := []domain.TopSalesUser{}
	for rows.Next() {
		var (
			user domain.TopSalesUser
			name sql.NullString
		)
		if err := rows.Scan(&user.UserID, &name, &user.TotalOrders, &user.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan sales user ranking: %w", err)
		}
		user.UserName = nameOrUnknown(name)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales user ranking: %w", err)
	}

	return users, nil
}
