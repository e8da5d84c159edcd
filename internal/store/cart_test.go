package store

import (
	"testing"

	"farmgate/internal/types"

	"github.com/google/go-cmp/cmp"
)

func TestUpsertCartItemMerges(t *testing.T) {
	s := newTestStore(t)

	item := types.LineItem{ProductID: 7, Name: "Tomatoes", UnitPrice: 3.25, Unit: "lb", Quantity: 2}
	if err := s.UpsertCartItem(item); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertCartItem(item); err != nil {
		t.Fatal(err)
	}

	items, err := s.CartItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("same product twice should yield one line, got %d", len(items))
	}

	want := item
	want.Quantity = 4
	if diff := cmp.Diff(want, items[0]); diff != "" {
		t.Errorf("merged line mismatch (-want +got):\n%s", diff)
	}
}

func TestCartItemsOrder(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []int64{3, 1, 2} {
		if err := s.UpsertCartItem(types.LineItem{ProductID: id, Name: "p", UnitPrice: 1, Quantity: 1}); err != nil {
			t.Fatal(err)
		}
	}
	items, err := s.CartItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}
	// Rows added in the same second sort by product id within added_at.
	seen := map[int64]bool{}
	for _, item := range items {
		seen[item.ProductID] = true
	}
	for _, id := range []int64{1, 2, 3} {
		if !seen[id] {
			t.Errorf("missing product %d", id)
		}
	}
}

func TestSetCartQuantity(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertCartItem(types.LineItem{ProductID: 5, Name: "Kale", UnitPrice: 2, Quantity: 3}); err != nil {
		t.Fatal(err)
	}

	if err := s.SetCartQuantity(5, 8); err != nil {
		t.Fatal(err)
	}
	item, ok := s.CartItem(5)
	if !ok || item.Quantity != 8 {
		t.Errorf("CartItem(5) = %+v, %v", item, ok)
	}

	// Zero removes the row entirely.
	if err := s.SetCartQuantity(5, 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.CartItem(5); ok {
		t.Error("row survived SetCartQuantity(0)")
	}
}

func TestRemoveCartItemAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.RemoveCartItem(999); err != nil {
		t.Errorf("removing absent item: %v", err)
	}
}

func TestClearCart(t *testing.T) {
	s := newTestStore(t)

	for id := int64(1); id <= 3; id++ {
		if err := s.UpsertCartItem(types.LineItem{ProductID: id, Name: "p", UnitPrice: 1, Quantity: 1}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.ClearCart(); err != nil {
		t.Fatal(err)
	}
	items, err := s.CartItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("cart not empty after clear: %d items", len(items))
	}
}
