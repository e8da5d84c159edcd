package api

import (
	"context"
	"fmt"
	"net/http"

	"farmgate/internal/logging"
	"farmgate/internal/types"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and, when the server supports
// second-role auto-registration, a short-lived upgrade token.
type LoginResponse struct {
	Token        string     `json:"token"`
	UpgradeToken string     `json:"upgrade_token,omitempty"`
	User         types.User `json:"user"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password,omitempty"`
	Name     string     `json:"name"`
	Role     types.Role `json:"role"`
	Phone    string     `json:"phone,omitempty"`
	District string     `json:"district,omitempty"`
	Address  string     `json:"address,omitempty"`

	// UpgradeToken authorizes registering a second role for an existing
	// account without re-entering the password.
	UpgradeToken string `json:"upgrade_token,omitempty"`
}

// RegisterResponse mirrors LoginResponse.
type RegisterResponse struct {
	Token        string     `json:"token"`
	UpgradeToken string     `json:"upgrade_token,omitempty"`
	User         types.User `json:"user"`
}

// Login authenticates and persists the returned tokens immediately so
// subsequent requests in the same process are authenticated.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return LoginResponse{}, err
	}
	if resp.Token == "" {
		return LoginResponse{}, fmt.Errorf("login response carried no token")
	}
	if err := c.store.SetToken(resp.Token); err != nil {
		return LoginResponse{}, err
	}
	if resp.UpgradeToken != "" {
		if err := c.store.SetUpgradeToken(resp.UpgradeToken); err != nil {
			logging.Get(logging.CategoryAPI).Warn("Failed to persist upgrade token: %v", err)
		}
	}
	logging.API("Login succeeded for %s", email)
	return resp, nil
}

// Register creates an account (or a second role, when req.UpgradeToken is
// set) and persists the returned token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/register", req, &resp); err != nil {
		return RegisterResponse{}, err
	}
	if resp.Token != "" {
		if err := c.store.SetToken(resp.Token); err != nil {
			return RegisterResponse{}, err
		}
	}
	if resp.UpgradeToken != "" {
		if err := c.store.SetUpgradeToken(resp.UpgradeToken); err != nil {
			logging.Get(logging.CategoryAPI).Warn("Failed to persist upgrade token: %v", err)
		}
	}
	return resp, nil
}

// Logout notifies the server. Best-effort by contract: callers clear local
// state regardless of this call's outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// UserInfo fetches the current profile. Concurrent calls collapse into a
// single request.
func (c *Client) UserInfo(ctx context.Context) (types.User, error) {
	v, err, _ := c.userFlight.Do("user", func() (interface{}, error) {
		var u types.User
		if err := c.do(ctx, http.MethodGet, "/user", nil, &u); err != nil {
			return types.User{}, err
		}
		return u, nil
	})
	if err != nil {
		return types.User{}, err
	}
	return v.(types.User), nil
}

// SwitchAccount reissues a token scoped to the given role and persists it.
func (c *Client) SwitchAccount(ctx context.Context, role types.Role) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"role": string(role)}
	if err := c.do(ctx, http.MethodPost, "/switch-account", body, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("switch-account response carried no token")
	}
	if err := c.store.SetToken(resp.Token); err != nil {
		return err
	}
	logging.API("Switched active role to %s", role)
	return nil
}

// AddressUpdate is the body of PATCH /update-address/.
type AddressUpdate struct {
	Phone    string `json:"phone,omitempty"`
	District string `json:"district,omitempty"`
	Address  string `json:"address,omitempty"`
}

// UpdateAddress patches the profile's address fields.
func (c *Client) UpdateAddress(ctx context.Context, upd AddressUpdate) (types.User, error) {
	var u types.User
	if err := c.do(ctx, http.MethodPatch, "/update-address/", upd, &u); err != nil {
		return types.User{}, err
	}
	return u, nil
}

// AvailableDistricts returns reference data for address forms.
func (c *Client) AvailableDistricts(ctx context.Context) ([]string, error) {
	var districts []string
	if err := c.do(ctx, http.MethodGet, "/available-districts/", nil, &districts); err != nil {
		return nil, err
	}
	return districts, nil
}

// FarmerDashboard is the farmer landing summary.
type FarmerDashboard struct {
	TotalProducts int     `json:"total_products"`
	PendingOrders int     `json:"pending_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// Dashboard fetches the farmer dashboard.
func (c *Client) Dashboard(ctx context.Context) (FarmerDashboard, error) {
	var d FarmerDashboard
	if err := c.do(ctx, http.MethodGet, "/farmer/dashboard/", nil, &d); err != nil {
		return FarmerDashboard{}, err
	}
	return d, nil
}

// FarmerProducts lists the farmer's listings.
func (c *Client) FarmerProducts(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := c.do(ctx, http.MethodGet, "/farmer/products/", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateFarmerProduct creates a listing.
func (c *Client) CreateFarmerProduct(ctx context.Context, p types.Product) (types.Product, error) {
	var created types.Product
	if err := c.do(ctx, http.MethodPost, "/farmer/products/", p, &created); err != nil {
		return types.Product{}, err
	}
	return created, nil
}

// DeleteFarmerProduct removes a listing.
func (c *Client) DeleteFarmerProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/farmer/products/%d/", id), nil, nil)
}

// FarmerOrders lists orders on the farmer side.
func (c *Client) FarmerOrders(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.do(ctx, http.MethodGet, "/farmer/orders/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus patches an order's status on the farmer side.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	if !types.ValidOrderStatus(status) {
		return fmt.Errorf("unknown order status %q", status)
	}
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/farmer/orders/%d/", id), body, nil)
}

// Marketplace lists products available to customers.
func (c *Client) Marketplace(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := c.do(ctx, http.MethodGet, "/customer/marketplace/", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// OrderHistory lists the customer's past orders.
func (c *Client) OrderHistory(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.do(ctx, http.MethodGet, "/customer/orders/history/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PlaceOrder submits the given line items as a new order.
func (c *Client) PlaceOrder(ctx context.Context, items []types.LineItem) (types.Order, error) {
	body := map[string]interface{}{"items": items}
	var order types.Order
	if err := c.do(ctx, http.MethodPost, "/customer/orders/", body, &order); err != nil {
		return types.Order{}, err
	}
	return order, nil
}

// RemoteCart fetches the server-side cart copy.
func (c *Client) RemoteCart(ctx context.Context) ([]types.LineItem, error) {
	var items []types.LineItem
	if err := c.do(ctx, http.MethodGet, "/customer/cart/", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PushCartItem adds a line item to the server-side cart.
func (c *Client) PushCartItem(ctx context.Context, item types.LineItem) error {
	return c.do(ctx, http.MethodPost, "/customer/cart/", item, nil)
}

// DeleteRemoteCartItem removes one line from the server-side cart.
func (c *Client) DeleteRemoteCartItem(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/customer/cart/%d/", productID), nil, nil)
}

// ClearRemoteCart empties the server-side cart.
func (c *Client) ClearRemoteCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/customer/cart/", nil, nil)
}
