package cart

import (
	"errors"
	"math"
	"testing"

	"farmgate/internal/config"
	"farmgate/internal/store"
	"farmgate/internal/types"
)

var testPricing = config.PricingConfig{
	DeliveryFlatFee:       4.99,
	FreeDeliveryThreshold: 50.0,
	TaxRate:               0.08,
}

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	st, err := store.NewLocalStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create local store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewAggregator(st, testPricing)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeTotals(t *testing.T) {
	line := func(price float64, qty int) types.LineItem {
		return types.LineItem{ProductID: 1, Name: "p", UnitPrice: price, Quantity: qty}
	}

	tests := []struct {
		name     string
		items    []types.LineItem
		subtotal float64
		fee      float64
		tax      float64
	}{
		{
			name:     "empty cart prices to zero",
			items:    nil,
			subtotal: 0, fee: 0, tax: 0,
		},
		{
			name: "small order pays delivery",
			// 3 x 4.99 = 14.97
			items:    []types.LineItem{line(4.99, 3)},
			subtotal: 14.97, fee: 4.99, tax: 14.97 * 0.08,
		},
		{
			name:     "exactly at threshold still pays delivery",
			items:    []types.LineItem{line(50.0, 1)},
			subtotal: 50.0, fee: 4.99, tax: 4.0,
		},
		{
			name:     "above threshold waives delivery",
			items:    []types.LineItem{line(50.01, 1)},
			subtotal: 50.01, fee: 0, tax: 50.01 * 0.08,
		},
		{
			name: "multiple lines sum before the threshold check",
			items: []types.LineItem{
				{ProductID: 1, UnitPrice: 30, Quantity: 1},
				{ProductID: 2, UnitPrice: 25, Quantity: 1},
			},
			subtotal: 55, fee: 0, tax: 4.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, testPricing)
			if !approx(got.Subtotal, tt.subtotal) {
				t.Errorf("Subtotal = %v, want %v", got.Subtotal, tt.subtotal)
			}
			if !approx(got.DeliveryFee, tt.fee) {
				t.Errorf("DeliveryFee = %v, want %v", got.DeliveryFee, tt.fee)
			}
			if !approx(got.Tax, tt.tax) {
				t.Errorf("Tax = %v, want %v", got.Tax, tt.tax)
			}
			want := tt.subtotal + tt.fee + tt.tax
			if !approx(got.Total, want) {
				t.Errorf("Total = %v, want %v", got.Total, want)
			}
		})
	}
}

func TestAddMergesSameProduct(t *testing.T) {
	agg := newTestAggregator(t)

	p := types.Product{ID: 9, Name: "Honey", Price: 12.50, Unit: "jar"}
	if err := agg.Add(p, 1); err != nil {
		t.Fatal(err)
	}
	if err := agg.Add(p, 2); err != nil {
		t.Fatal(err)
	}

	items, err := agg.Items()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d lines, want 1", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", items[0].Quantity)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	agg := newTestAggregator(t)

	if err := agg.Add(types.Product{ID: 1, Price: 2}, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Add with qty 0 = %v", err)
	}
	if err := agg.Add(types.Product{ID: 1, Price: 2}, -3); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Add with negative qty = %v", err)
	}
	if err := agg.Add(types.Product{ID: 1, Price: -2}, 1); err == nil {
		t.Error("negative price accepted")
	}

	items, err := agg.Items()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("rejected adds must not touch the cart, got %d lines", len(items))
	}
}

func TestSetQuantity(t *testing.T) {
	agg := newTestAggregator(t)

	if err := agg.Add(types.Product{ID: 2, Name: "Milk", Price: 3}, 1); err != nil {
		t.Fatal(err)
	}

	if err := agg.SetQuantity(2, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("SetQuantity(-1) = %v", err)
	}

	if err := agg.SetQuantity(2, 5); err != nil {
		t.Fatal(err)
	}
	items, _ := agg.Items()
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Errorf("items = %+v", items)
	}

	if err := agg.SetQuantity(2, 0); err != nil {
		t.Fatal(err)
	}
	items, _ = agg.Items()
	if len(items) != 0 {
		t.Errorf("SetQuantity(0) should remove the line, got %+v", items)
	}
}

func TestComputeTotalsFromStore(t *testing.T) {
	agg := newTestAggregator(t)

	// 3 x 4.99 = 14.97: below threshold, fee applies.
	if err := agg.Add(types.Product{ID: 3, Name: "Eggs", Price: 4.99}, 3); err != nil {
		t.Fatal(err)
	}

	totals, err := agg.ComputeTotals()
	if err != nil {
		t.Fatal(err)
	}
	if !approx(totals.Subtotal, 14.97) {
		t.Errorf("Subtotal = %v", totals.Subtotal)
	}
	if !approx(totals.DeliveryFee, 4.99) {
		t.Errorf("DeliveryFee = %v", totals.DeliveryFee)
	}
	if Round2(totals.Tax) != 1.20 {
		t.Errorf("Tax rounds to %v, want 1.20", Round2(totals.Tax))
	}
	if Round2(totals.Total) != 21.16 {
		t.Errorf("Total rounds to %v, want 21.16", Round2(totals.Total))
	}
}

func TestClear(t *testing.T) {
	agg := newTestAggregator(t)
	if err := agg.Add(types.Product{ID: 4, Name: "Bread", Price: 6}, 2); err != nil {
		t.Fatal(err)
	}
	if err := agg.Clear(); err != nil {
		t.Fatal(err)
	}
	items, _ := agg.Items()
	if len(items) != 0 {
		t.Errorf("cart not empty after Clear")
	}

	totals, err := agg.ComputeTotals()
	if err != nil {
		t.Fatal(err)
	}
	if totals.Total != 0 {
		t.Errorf("empty cart total = %v, want 0 (no delivery fee on nothing)", totals.Total)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1.005, 1.0}, // float 1.005 is just under, rounds down
		{1.204, 1.2},
		{1.196, 1.2},
		{0, 0},
		{-2.346, -2.35},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); !approx(got, tt.want) {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
