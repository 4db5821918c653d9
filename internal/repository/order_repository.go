package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"sales-admin/internal/domain"

	"github.com/google/uuid"
)

// OrderTx is the set of statements order placement runs inside one transaction
type OrderTx interface {
	// LockProducts row-locks the given products in ascending id order and
	// returns them keyed by id with their inventory attached. Unknown ids are
	// absent from the result.
	LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	InsertOrder(ctx context.Context, order *domain.Order) error
	// DecrementStock lowers a product's quantity by qty only while enough stock
	// remains, reporting whether a row was updated.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	InTx(ctx context.Context, fn func(tx OrderTx) error) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// InTx runs fn in a transaction that commits only when fn returns nil
func (r *orderRepository) InTx(ctx context.Context, fn func(tx OrderTx) error) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		return fn(&orderTx{tx: tx})
	})
}

type orderTx struct {
	tx *sql.Tx
}

func (t *orderTx) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		sorted = append(sorted, id.String())
	}
	sort.Strings(sorted)

	rows, err := t.tx.QueryContext(ctx, `
		SELECT p.id, p.name, p.sku, p.price, p.category_id,
		       i.id, i.quantity, i.reorder_level
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.id = ANY($1::uuid[])
		ORDER BY p.id
		FOR UPDATE OF p
	`, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*domain.Product, len(ids))
	for rows.Next() {
		product := &domain.Product{}
		var (
			invID        uuid.NullUUID
			quantity     sql.NullInt64
			reorderLevel sql.NullInt64
		)
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.SKU,
			&product.Price,
			&product.CategoryID,
			&invID,
			&quantity,
			&reorderLevel,
		); err != nil {
			return nil, fmt.Errorf("failed to scan locked product: %w", err)
		}
		if invID.Valid {
			product.Inventory = &domain.Inventory{
				ID:           invID.UUID,
				ProductID:    product.ID,
				Quantity:     int(quantity.Int64),
				ReorderLevel: int(reorderLevel.Int64),
			}
		}
		products[product.ID] = product
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked products: %w", err)
	}

	return products, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, user_id, status, total_amount, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		order.ID,
		order.CustomerID,
		order.UserID,
		order.Status,
		order.TotalAmount,
		order.PaymentMethod,
		order.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewError(domain.ErrNotFound, "Customer or user not found")
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.Price, item.Position); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

func (t *orderTx) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = quantity - $2
		WHERE product_id = $1 AND quantity >= $2
	`, productID, qty)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

const orderSelect = `
	SELECT o.id, o.customer_id, c.name, c.phone, o.user_id, u.name,
	       o.status, o.total_amount, o.payment_method, o.created_at
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id
	LEFT JOIN users u ON u.id = o.user_id
`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	order := &domain.Order{Items: []domain.OrderItem{}}
	var customerName, customerPhone, userName sql.NullString
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&customerName,
		&customerPhone,
		&order.UserID,
		&userName,
		&order.Status,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.CustomerName = nameOrUnknown(customerName)
	order.CustomerPhone = customerPhone.String
	order.UserName = nameOrUnknown(userName)
	return order, nil
}

func nameOrUnknown(ns sql.NullString) string {
	if !ns.Valid || ns.String == "" {
		return domain.UnknownName
	}
	return ns.String
}

// FindByID retrieves a hydrated order by ID
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// List retrieves a page of hydrated orders and the total number of matches
func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]string{
		"createdAt":   "o.created_at",
		"totalAmount": "o.total_amount",
	}

	sortBy, ok := validSortFields[filter.SortBy]
	if !ok {
		sortBy = "o.created_at"
	}

	sortOrder := filter.SortOrder
	if sortOrder != domain.SortOrderAsc && sortOrder != domain.SortOrderDesc {
		sortOrder = domain.SortOrderDesc
	}

	conditions := []string{"o.status = $1"}
	args := []interface{}{domain.ParseOrderStatus(string(filter.Status))}
	argIndex := 2

	if filter.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", argIndex))
		args = append(args, *filter.CustomerID)
		argIndex++
	}
	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`%s
		%s
		ORDER BY %s %s, o.id
		LIMIT $%d OFFSET $%d
	`, orderSelect, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// attachItems loads the items of all given orders in one query, preserving line order
func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		byID[order.ID] = order
		ids = append(ids, order.ID.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price, oi.position
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item        domain.OrderItem
			productName sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&productName,
			&item.Quantity,
			&item.Price,
			&item.Position,
		); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		item.ProductName = nameOrUnknown(productName)
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}
