package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock repositories for testing
type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, existing := range m.users {
		if existing.ID == user.ID {
			delete(m.users, email)
			m.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, user := range m.users {
		if user.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

type mockPasswordResetRepository struct {
	tokens map[string]*domain.PasswordResetToken
	users  *mockUserRepository
}

func newMockPasswordResetRepository(users *mockUserRepository) *mockPasswordResetRepository {
	return &mockPasswordResetRepository{
		tokens: make(map[string]*domain.PasswordResetToken),
		users:  users,
	}
}

func (m *mockPasswordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockPasswordResetRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	resetToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrResetTokenNotFound
	}
	copied := *resetToken
	return &copied, nil
}

func (m *mockPasswordResetRepository) Consume(ctx context.Context, token string, usedAt time.Time, passwordHash string) error {
	resetToken, exists := m.tokens[token]
	if !exists || resetToken.UsedAt != nil {
		return repository.ErrResetTokenNotFound
	}
	user, err := m.users.FindByID(ctx, resetToken.UserID)
	if err != nil {
		return err
	}
	m.users.mu.Lock()
	user.PasswordHash = passwordHash
	m.users.mu.Unlock()
	resetToken.UsedAt = &usedAt
	return nil
}

type mockCustomerRepository struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*domain.Customer
	withOrder map[uuid.UUID]bool
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{
		customers: make(map[uuid.UUID]*domain.Customer),
		withOrder: make(map[uuid.UUID]bool),
	}
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, exists := m.customers[id]
	if !exists {
		return nil, repository.ErrCustomerNotFound
	}
	copied := *customer
	return &copied, nil
}

func (m *mockCustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, customer := range m.customers {
		if customer.Email != nil && *customer.Email == email {
			return customer, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (m *mockCustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, customer := range m.customers {
		if customer.Phone == phone {
			return customer, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (m *mockCustomerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*domain.Customer
	for _, customer := range m.customers {
		if filter.Search == "" || strings.Contains(strings.ToLower(customer.Name), strings.ToLower(filter.Search)) {
			matched = append(matched, customer)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	total := len(matched)
	if filter.Offset >= total {
		return []*domain.Customer{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.customers[customer.ID]; !exists {
		return repository.ErrCustomerNotFound
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.customers[id]; !exists {
		return repository.ErrCustomerNotFound
	}
	if m.withOrder[id] {
		return repository.ErrCustomerHasOrders
	}
	delete(m.customers, id)
	return nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[uuid.UUID]*domain.Category),
	}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	categories := make([]*domain.Category, 0, len(m.categories))
	for _, category := range m.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

// mockProductRepository keeps products with their inventory inline
type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, existing := range m.products {
		if existing.SKU == product.SKU {
			return repository.ErrProductAlreadyExists
		}
	}
	product.Inventory = &domain.Inventory{ID: uuid.New(), ProductID: product.ID}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	if product.Inventory != nil {
		inv := *product.Inventory
		copied.Inventory = &inv
	}
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error) {
	var matched []*domain.Product
	for _, product := range m.products {
		if filter.CategoryID != nil && product.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.LowStock && !product.Inventory.LowStock() {
			continue
		}
		matched = append(matched, product)
	}
	return matched, len(matched), nil
}

func (m *mockProductRepository) Restock(ctx context.Context, productID uuid.UUID, quantity int, reorderLevel *int) (*domain.Inventory, error) {
	product, exists := m.products[productID]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	if product.Inventory == nil {
		return nil, repository.ErrInventoryNotFound
	}
	product.Inventory.Quantity += quantity
	if reorderLevel != nil {
		product.Inventory.ReorderLevel = *reorderLevel
	}
	inv := *product.Inventory
	return &inv, nil
}

// mockOrderRepository serializes transactions behind one mutex, standing in
// for row locks, and restores stock when the callback fails
type mockOrderRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	orders   map[uuid.UUID]*domain.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		products: make(map[uuid.UUID]*domain.Product),
		orders:   make(map[uuid.UUID]*domain.Order),
	}
}

func (m *mockOrderRepository) addProduct(name, price string, stock int) *domain.Product {
	id := uuid.New()
	product := &domain.Product{
		ID:    id,
		Name:  name,
		SKU:   "SKU-" + id.String()[:8],
		Price: decimal.RequireFromString(price),
		Inventory: &domain.Inventory{
			ID:        uuid.New(),
			ProductID: id,
			Quantity:  stock,
		},
	}
	m.products[id] = product
	return product
}

func (m *mockOrderRepository) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Inventory.Quantity
}

func (m *mockOrderRepository) InTx(ctx context.Context, fn func(tx repository.OrderTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[uuid.UUID]int, len(m.products))
	for id, product := range m.products {
		if product.Inventory != nil {
			snapshot[id] = product.Inventory.Quantity
		}
	}

	tx := &mockOrderTx{repo: m}
	if err := fn(tx); err != nil {
		for id, qty := range snapshot {
			m.products[id].Inventory.Quantity = qty
		}
		return err
	}

	for _, order := range tx.inserted {
		m.orders[order.ID] = order
	}
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*domain.Order
	for _, order := range m.orders {
		if order.Status == filter.Status {
			matched = append(matched, order)
		}
	}
	return matched, len(matched), nil
}

type mockOrderTx struct {
	repo     *mockOrderRepository
	inserted []*domain.Order
}

func (t *mockOrderTx) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	locked := make(map[uuid.UUID]*domain.Product, len(ids))
	for _, id := range ids {
		product, exists := t.repo.products[id]
		if !exists {
			continue
		}
		copied := *product
		if product.Inventory != nil {
			inv := *product.Inventory
			copied.Inventory = &inv
		}
		locked[id] = &copied
	}
	return locked, nil
}

func (t *mockOrderTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	copied := *order
	t.inserted = append(t.inserted, &copied)
	return nil
}

func (t *mockOrderTx) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	product, exists := t.repo.products[productID]
	if !exists || product.Inventory == nil || product.Inventory.Quantity < qty {
		return false, nil
	}
	product.Inventory.Quantity -= qty
	return true, nil
}

type mockStatisticsRepository struct {
	since []*time.Time
}

func (m *mockStatisticsRepository) Summary(ctx context.Context, since *time.Time) (int, decimal.Decimal, error) {
	m.since = append(m.since, since)
	return len(m.since), decimal.NewFromInt(int64(len(m.since) * 100)), nil
}

func (m *mockStatisticsRepository) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	return []domain.TopProduct{{ProductName: "Widget", TotalQuantity: limit}}, nil
}

func (m *mockStatisticsRepository) TopCustomers(ctx context.Context, limit int) ([]domain.TopCustomer, error) {
	return []domain.TopCustomer{{CustomerName: domain.UnknownName}}, nil
}

func (m *mockStatisticsRepository) TopSalesUsers(ctx context.Context, limit int) ([]domain.TopSalesUser, error) {
	return []domain.TopSalesUser{}, nil
}
