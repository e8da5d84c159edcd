// Package cart maintains the persisted shopping cart: one line item per
// product id, merged on add, with totals computed under a fixed pricing
// policy. Monetary values stay unrounded float64 until presentation.
package cart

import (
	"errors"
	"fmt"
	"math"

	"farmgate/internal/config"
	"farmgate/internal/logging"
	"farmgate/internal/store"
	"farmgate/internal/types"
)

var (
	// ErrInvalidQuantity is returned for negative quantities. Zero is not
	// invalid: it means removal.
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Aggregator mutates the persisted cart and computes totals.
type Aggregator struct {
	store   *store.LocalStore
	pricing config.PricingConfig
}

// NewAggregator creates an aggregator over the persisted store with the
// given pricing policy.
func NewAggregator(st *store.LocalStore, pricing config.PricingConfig) *Aggregator {
	return &Aggregator{store: st, pricing: pricing}
}

// Add merges quantity units of the product into the cart: an existing line
// for the same product id has its quantity incremented, otherwise a new line
// is appended.
func (a *Aggregator) Add(p types.Product, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("add: %w", ErrInvalidQuantity)
	}
	if p.Price < 0 {
		return fmt.Errorf("add: unit price must not be negative")
	}

	item := types.LineItem{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   p.Price,
		Unit:        p.Unit,
		Quantity:    quantity,
		Farmer:      p.Farmer,
		Location:    p.Location,
		HarvestedAt: p.HarvestedAt,
	}
	if err := a.store.UpsertCartItem(item); err != nil {
		return err
	}
	logging.Cart("Added product %d x%d", p.ID, quantity)
	return nil
}

// SetQuantity replaces a line's quantity. Zero removes the line; negative
// values are rejected.
func (a *Aggregator) SetQuantity(productID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("set quantity: %w", ErrInvalidQuantity)
	}
	return a.store.SetCartQuantity(productID, quantity)
}

// Remove deletes a line unconditionally; an absent id is a no-op.
func (a *Aggregator) Remove(productID int64) error {
	return a.store.RemoveCartItem(productID)
}

// Clear empties the cart (checkout or explicit clear).
func (a *Aggregator) Clear() error {
	return a.store.ClearCart()
}

// Items returns the cart lines in insertion order.
func (a *Aggregator) Items() ([]types.LineItem, error) {
	return a.store.CartItems()
}

// Totals is the cart pricing breakdown. Values are exact (unrounded);
// Round2 is for display only.
type Totals struct {
	Subtotal    float64
	DeliveryFee float64
	Tax         float64
	Total       float64
}

// ComputeTotals prices the current cart: subtotal is the sum of
// price x quantity, the delivery fee is waived above the free-delivery
// threshold, tax applies to the subtotal, and total is their sum.
func (a *Aggregator) ComputeTotals() (Totals, error) {
	items, err := a.store.CartItems()
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(items, a.pricing), nil
}

// ComputeTotals prices the given lines under the policy.
func ComputeTotals(items []types.LineItem, pricing config.PricingConfig) Totals {
	var t Totals
	for _, item := range items {
		t.Subtotal += item.UnitPrice * float64(item.Quantity)
	}

	if t.Subtotal > 0 && t.Subtotal <= pricing.FreeDeliveryThreshold {
		t.DeliveryFee = pricing.DeliveryFlatFee
	}
	t.Tax = t.Subtotal * pricing.TaxRate
	t.Total = t.Subtotal + t.DeliveryFee + t.Tax
	return t
}

// Round2 rounds a monetary value to 2 digits for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
