package store

import (
	"database/sql"
	"fmt"
	"time"

	"farmgate/internal/logging"
	"farmgate/internal/types"
)

// CartItems returns all cart rows in insertion order.
func (s *LocalStore) CartItems() ([]types.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT product_id, name, unit_price, unit, quantity, farmer, location, harvested_at
		 FROM cart_items
		 ORDER BY added_at, product_id`,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to query cart items: %v", err)
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var items []types.LineItem
	for rows.Next() {
		var item types.LineItem
		var harvested sql.NullTime
		if err := rows.Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Unit,
			&item.Quantity, &item.Farmer, &item.Location, &harvested); err != nil {
			logging.Get(logging.CategoryStore).Warn("Skipping unreadable cart row: %v", err)
			continue
		}
		if harvested.Valid {
			item.HarvestedAt = harvested.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CartItem returns the cart row for the product id, if present.
func (s *LocalStore) CartItem(productID int64) (types.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var item types.LineItem
	var harvested sql.NullTime
	err := s.db.QueryRow(
		`SELECT product_id, name, unit_price, unit, quantity, farmer, location, harvested_at
		 FROM cart_items WHERE product_id = ?`, productID,
	).Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Unit,
		&item.Quantity, &item.Farmer, &item.Location, &harvested)
	if err != nil {
		if err != sql.ErrNoRows {
			logging.Get(logging.CategoryStore).Error("Failed to read cart item %d: %v", productID, err)
		}
		return types.LineItem{}, false
	}
	if harvested.Valid {
		item.HarvestedAt = harvested.Time
	}
	return item, true
}

// UpsertCartItem merges the item into the cart: an existing row for the same
// product id gets its quantity incremented by item.Quantity, otherwise the
// row is inserted. The whole read-modify-write happens in one statement so no
// partial state is ever visible.
func (s *LocalStore) UpsertCartItem(item types.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.CartDebug("Upserting cart item: product=%d qty=%d", item.ProductID, item.Quantity)

	var harvested interface{}
	if !item.HarvestedAt.IsZero() {
		harvested = item.HarvestedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(
		`INSERT INTO cart_items (product_id, name, unit_price, unit, quantity, farmer, location, harvested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		item.ProductID, item.Name, item.UnitPrice, item.Unit,
		item.Quantity, item.Farmer, item.Location, harvested,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to upsert cart item %d: %v", item.ProductID, err)
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return nil
}

// SetCartQuantity replaces the quantity for a product; zero removes the row.
func (s *LocalStore) SetCartQuantity(productID int64, quantity int) error {
	if quantity == 0 {
		return s.RemoveCartItem(productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE cart_items SET quantity = ? WHERE product_id = ?",
		quantity, productID,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to set quantity for %d: %v", productID, err)
		return fmt.Errorf("failed to set cart quantity: %w", err)
	}
	return nil
}

// RemoveCartItem deletes the row for the product id. Removing an absent id is
// a no-op, not an error.
func (s *LocalStore) RemoveCartItem(productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM cart_items WHERE product_id = ?", productID)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to remove cart item %d: %v", productID, err)
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// ClearCart empties the cart.
func (s *LocalStore) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.Cart("Clearing cart")
	_, err := s.db.Exec("DELETE FROM cart_items")
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to clear cart: %v", err)
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
