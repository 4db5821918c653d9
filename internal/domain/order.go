package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// ParseOrderStatus returns the matching status, falling back to COMPLETED for
// empty or unknown values. Existing clients rely on the fallback.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case OrderStatusCompleted, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded:
		return OrderStatus(s)
	default:
		return OrderStatusCompleted
	}
}

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCard       PaymentMethod = "CARD"
	PaymentUPI        PaymentMethod = "UPI"
	PaymentNetBanking PaymentMethod = "NETBANKING"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentNetBanking:
		return true
	}
	return false
}

// Order is a completed sale. TotalAmount is derived from the items at creation time.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CustomerID    uuid.UUID       `json:"customerId" db:"customer_id"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	UserName      string          `json:"userName,omitempty"`
	Status        OrderStatus     `json:"status" db:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem is one line of an order. Price is the unit price captured when the order was placed.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Position    int             `json:"-" db:"position"`
}

// Subtotal returns quantity times the snapshot price
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums the item subtotals
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderLine is one requested line of a new order
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput is the validated input of order placement
type PlaceOrderInput struct {
	CustomerID    uuid.UUID
	UserID        uuid.UUID
	Items         []OrderLine
	PaymentMethod PaymentMethod
}

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ParseSortOrder maps asc/desc (any case) to a SortOrder, defaulting to DESC
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(SortOrderAsc)) {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Status     OrderStatus
	CustomerID *uuid.UUID
	UserID     *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  SortOrder
}

// OrderStatistics is the dashboard rollup
type OrderStatistics struct {
	TotalOrders               int             `json:"totalOrders"`
	TotalOrdersToday          int             `json:"totalOrdersToday"`
	TotalOrdersThisWeek       int             `json:"totalOrdersThisWeek"`
	TotalOrdersThisMonth      int             `json:"totalOrdersThisMonth"`
	TotalSalesAmount          decimal.Decimal `json:"totalSalesAmount"`
	TotalSalesAmountToday     decimal.Decimal `json:"totalSalesAmountToday"`
	TotalSalesAmountThisWeek  decimal.Decimal `json:"totalSalesAmountThisWeek"`
	TotalSalesAmountThisMonth decimal.Decimal `json:"totalSalesAmountThisMonth"`
	TopSellingProducts        []TopProduct    `json:"topSellingProducts"`
	TopCustomers              []TopCustomer   `json:"topCustomers"`
	TopSalesUsers             []TopSalesUser  `json:"topSalesUsers"`
}

type TopProduct struct {
	ProductID     uuid.UUID       `json:"productId"`
	ProductName   string          `json:"productName"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type TopCustomer struct {
	CustomerID   uuid.UUID       `json:"customerId"`
	CustomerName string          `json:"customerName"`
	TotalOrders  int             `json:"totalOrders"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
}

type TopSalesUser struct {
	UserID       uuid.UUID       `json:"userId"`
	UserName     string          `json:"userName"`
	TotalOrders  int             `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// UnknownName is shown in rankings when the referenced entity no longer exists
const UnknownName = "Unknown"
