// Package types holds the domain types shared across the farmgate client:
// roles, user profiles, products, orders, and cart line items.
package types

import "time"

// Role is the active identity of an authenticated user.
type Role string

const (
	// RoleFarmer sells produce through the farmer page tree.
	RoleFarmer Role = "farmer"

	// RoleCustomer buys produce through the customer page tree.
	RoleCustomer Role = "customer"

	// RoleMulti marks a user holding both identities with no role
	// selected yet this session.
	RoleMulti Role = "multi"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleCustomer, RoleMulti:
		return true
	}
	return false
}

// Complement returns the other concrete role. Multi has no complement.
func (r Role) Complement() (Role, bool) {
	switch r {
	case RoleFarmer:
		return RoleCustomer, true
	case RoleCustomer:
		return RoleFarmer, true
	}
	return "", false
}

// User is the profile returned by the user-info endpoint.
type User struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        Role   `json:"role,omitempty"`
	HasFarmer   bool   `json:"has_farmer"`
	HasCustomer bool   `json:"has_customer"`
	Phone       string `json:"phone,omitempty"`
	District    string `json:"district,omitempty"`
	Address     string `json:"address,omitempty"`
}

// ResolveRole derives the effective role from a profile and an optionally
// cached role. This is the single derivation path for roles anywhere in the
// client: the server's role field wins when consistent with its has_* flag,
// a cached role resolves a dual-identity profile, and otherwise has_farmer
// takes precedence over has_customer. The second return is false when the
// user holds both identities and nothing picks one, i.e. explicit selection
// is required.
func ResolveRole(u User, cached Role) (Role, bool) {
	if u.Role == RoleFarmer && u.HasFarmer {
		return RoleFarmer, true
	}
	if u.Role == RoleCustomer && u.HasCustomer {
		return RoleCustomer, true
	}

	if u.HasFarmer && u.HasCustomer {
		if cached == RoleFarmer || cached == RoleCustomer {
			return cached, true
		}
		return RoleMulti, false
	}
	if u.HasFarmer {
		return RoleFarmer, true
	}
	if u.HasCustomer {
		return RoleCustomer, true
	}
	return "", false
}

// Product is a marketplace listing.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Unit        string    `json:"unit"`
	Quantity    float64   `json:"quantity,omitempty"`
	Category    string    `json:"category,omitempty"`
	Farmer      string    `json:"farmer,omitempty"`
	Location    string    `json:"location,omitempty"`
	HarvestedAt time.Time `json:"harvested_at,omitzero"`
}

// LineItem is one cart row, keyed by product id.
type LineItem struct {
	ProductID   int64     `json:"product_id"`
	Name        string    `json:"name"`
	UnitPrice   float64   `json:"unit_price"`
	Unit        string    `json:"unit"`
	Quantity    int       `json:"quantity"`
	Farmer      string    `json:"farmer,omitempty"`
	Location    string    `json:"location,omitempty"`
	HarvestedAt time.Time `json:"harvested_at,omitzero"`
}

// Order status values used by both page trees.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Order is a placed order as returned by the order endpoints.
type Order struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"`
	Total     float64    `json:"total"`
	Items     []LineItem `json:"items,omitempty"`
	Customer  string     `json:"customer,omitempty"`
	CreatedAt time.Time  `json:"created_at,omitzero"`
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}
