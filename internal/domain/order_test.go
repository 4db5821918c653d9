package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// Order total equals the sum of quantity times snapshot price
func TestProperty_ComputeTotalMatchesItemSubtotals(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total is the sum of quantity * price over all items", prop.ForAll(
		func(quantities []int, cents []int64) bool {
			n := len(quantities)
			if len(cents) < n {
				n = len(cents)
			}

			items := make([]OrderItem, 0, n)
			expected := decimal.Zero
			for i := 0; i < n; i++ {
				price := decimal.New(cents[i], -2)
				items = append(items, OrderItem{Quantity: quantities[i], Price: price})
				expected = expected.Add(price.Mul(decimal.NewFromInt(int64(quantities[i]))))
			}

			total := ComputeTotal(items)
			if !total.Equal(expected) {
				t.Logf("FAIL: expected %s, got %s", expected, total)
				return false
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 50)),
		gen.SliceOf(gen.Int64Range(1, 1_000_000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestComputeTotal_Empty(t *testing.T) {
	if total := ComputeTotal(nil); !total.IsZero() {
		t.Errorf("expected zero total, got %s", total)
	}
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want OrderStatus
	}{
		{"", OrderStatusCompleted},
		{"COMPLETED", OrderStatusCompleted},
		{"PAID", OrderStatusPaid},
		{"CANCELLED", OrderStatusCancelled},
		{"REFUNDED", OrderStatusRefunded},
		{"paid", OrderStatusCompleted},
		{"SHIPPED", OrderStatusCompleted},
	}

	for _, tt := range tests {
		if got := ParseOrderStatus(tt.in); got != tt.want {
			t.Errorf("ParseOrderStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	if ParseSortOrder("asc") != SortOrderAsc {
		t.Error("expected asc to map to ASC")
	}
	if ParseSortOrder("DESC") != SortOrderDesc {
		t.Error("expected DESC to map to DESC")
	}
	if ParseSortOrder("sideways") != SortOrderDesc {
		t.Error("expected unknown sort order to default to DESC")
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentNetBanking} {
		if !m.Valid() {
			t.Errorf("expected %s to be valid", m)
		}
	}
	if PaymentMethod("CHEQUE").Valid() {
		t.Error("expected CHEQUE to be invalid")
	}
}
