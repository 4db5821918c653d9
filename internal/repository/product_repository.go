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

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error)
	Restock(ctx context.Context, productID uuid.UUID, quantity int, reorderLevel *int) (*domain.Inventory, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.sku, COALESCE(p.description, ''), p.price, p.cost_price, p.category_id,
	       p.created_at, p.updated_at,
	       c.id, c.name, COALESCE(c.description, ''), c.created_at, c.updated_at,
	       i.id, i.quantity, i.reorder_level, i.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN inventory i ON i.product_id = p.id
`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	category := &domain.Category{}
	var (
		invID        uuid.NullUUID
		quantity     sql.NullInt64
		reorderLevel sql.NullInt64
		invUpdatedAt sql.NullTime
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.SKU,
		&product.Description,
		&product.Price,
		&product.CostPrice,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
		&invID,
		&quantity,
		&reorderLevel,
		&invUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Category = category
	if invID.Valid {
		product.Inventory = &domain.Inventory{
			ID:           invID.UUID,
			ProductID:    product.ID,
			Quantity:     int(quantity.Int64),
			ReorderLevel: int(reorderLevel.Int64),
			UpdatedAt:    invUpdatedAt.Time,
		}
	}

	return product, nil
}

// Create inserts the product and its empty inventory record in one transaction
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, sku, description, price, cost_price, category_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			product.ID,
			product.Name,
			product.SKU,
			nullString(product.Description),
			product.Price,
			product.CostPrice,
			product.CategoryID,
			product.CreatedAt,
			product.UpdatedAt,
		)
		if err != nil {
			return err
		}

		inventory := &domain.Inventory{
			ID:        uuid.New(),
			ProductID: product.ID,
			UpdatedAt: product.CreatedAt,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO inventory (id, product_id, quantity, reorder_level, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, inventory.ID, inventory.ProductID, inventory.Quantity, inventory.ReorderLevel, inventory.UpdatedAt)
		if err != nil {
			return err
		}

		product.Inventory = inventory
		return nil
	})

	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrProductAlreadyExists
		case isForeignKeyViolation(err):
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, sku = $3, description = $4, price = $5, cost_price = $6, category_id = $7
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.SKU,
		nullString(product.Description),
		product.Price,
		product.CostPrice,
		product.CategoryID,
	).Scan(&product.UpdatedAt)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrProductNotFound
		case isUniqueViolation(err):
			return ErrProductAlreadyExists
		case isForeignKeyViolation(err):
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes the inventory record and then the product. A product still
// referenced by order items is left untouched.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory WHERE product_id = $1`, id); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return err
		case isForeignKeyViolation(err):
			return ErrProductInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// FindByID retrieves a product with its category and inventory
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with optional category, search and low stock filters
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.sku ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+search+"%")
		argIndex++
	}

	if filter.LowStock {
		conditions = append(conditions, "i.quantity <= i.reorder_level")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		%s
	`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`%s
		%s
		ORDER BY p.created_at DESC, p.id
		LIMIT $%d OFFSET $%d
	`, productSelect, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// Restock adds quantity to a product's inventory and optionally resets its reorder level
func (r *productRepository) Restock(ctx context.Context, productID uuid.UUID, quantity int, reorderLevel *int) (*domain.Inventory, error) {
	var level sql.NullInt64
	if reorderLevel != nil {
		level = sql.NullInt64{Int64: int64(*reorderLevel), Valid: true}
	}

	inventory := &domain.Inventory{ProductID: productID}
	err := r.db.QueryRowContext(ctx, `
		UPDATE inventory
		SET quantity = quantity + $2, reorder_level = COALESCE($3, reorder_level)
		WHERE product_id = $1
		RETURNING id, quantity, reorder_level, updated_at
	`, productID, quantity, level).Scan(
		&inventory.ID,
		&inventory.Quantity,
		&inventory.ReorderLevel,
		&inventory.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
				return nil, fmt.Errorf("failed to check product: %w", err)
			}
			if !exists {
				return nil, ErrProductNotFound
			}
			return nil, ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to restock product: %w", err)
	}

	return inventory, nil
}
