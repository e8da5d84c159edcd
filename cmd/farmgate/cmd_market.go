package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"farmgate/internal/config"
	"farmgate/internal/guard"
	"farmgate/internal/logging"
	"farmgate/internal/types"
	"farmgate/internal/ux"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// marketCmd browses the customer marketplace
var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Browse the marketplace",
	RunE:  runMarket,
}

// farmerCmd groups the farmer page tree
var farmerCmd = &cobra.Command{
	Use:   "farmer",
	Short: "Farmer dashboard, products, and orders",
}

var farmerDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the farmer dashboard",
	RunE:  runFarmerDashboard,
}

var farmerProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List your product listings",
	RunE:  runFarmerProducts,
}

var (
	prodName     string
	prodPrice    float64
	prodUnit     string
	prodQty      float64
	prodCategory string
)

var farmerAddProductCmd = &cobra.Command{
	Use:   "add-product",
	Short: "Create a product listing",
	RunE:  runFarmerAddProduct,
}

var farmerDeleteProductCmd = &cobra.Command{
	Use:   "delete-product <id>",
	Short: "Delete a product listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runFarmerDeleteProduct,
}

var (
	watchOrders   bool
	watchInterval time.Duration
)

var farmerOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List incoming orders",
	Long: `Lists orders placed against your listings. With --watch the list
refreshes on an interval until interrupted; config edits (pricing, API
endpoint, logging) are picked up without restarting.`,
	RunE: runFarmerOrders,
}

var farmerSetStatusCmd = &cobra.Command{
	Use:   "set-status <order-id> <status>",
	Short: "Update an order's status",
	Long:  `Status must be one of: pending, confirmed, delivered, cancelled.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runFarmerSetStatus,
}

func init() {
	farmerAddProductCmd.Flags().StringVar(&prodName, "name", "", "product name")
	farmerAddProductCmd.Flags().Float64Var(&prodPrice, "price", 0, "unit price")
	farmerAddProductCmd.Flags().StringVar(&prodUnit, "unit", "", "unit label")
	farmerAddProductCmd.Flags().Float64Var(&prodQty, "quantity", 0, "available quantity")
	farmerAddProductCmd.Flags().StringVar(&prodCategory, "category", "", "category")

	farmerOrdersCmd.Flags().BoolVar(&watchOrders, "watch", false, "keep refreshing until interrupted")
	farmerOrdersCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "refresh interval with --watch")

	farmerCmd.AddCommand(farmerDashboardCmd, farmerProductsCmd,
		farmerAddProductCmd, farmerDeleteProductCmd, farmerOrdersCmd,
		farmerSetStatusCmd)
}

// requireRole hydrates the session and enforces the route guard for a
// command. The guard itself is pure; hydration happens before the check.
func requireRole(cmd *cobra.Command, a *app, required guard.RoleSet) error {
	a.hydrate(cmd.Context())
	d := guard.Allow(a.sessions.Current(), required)
	if d.Allowed {
		return nil
	}
	if d.Redirect == guard.RedirectLogin {
		a.notify.Notify(ux.Warning, "Sign in required", "run 'farmgate auth login'")
	} else {
		a.notify.Notify(ux.Warning, "Wrong role", "switch roles with 'farmgate auth switch-role'")
	}
	return fmt.Errorf("access denied")
}

func runMarket(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.CustomerRoutes); err != nil {
		return err
	}

	products, err := a.client.Marketplace(cmd.Context())
	if err != nil {
		a.notify.Notify(ux.Error, "Could not load marketplace", friendlyError(err))
		return err
	}
	if len(products) == 0 {
		fmt.Println("No products available.")
		return nil
	}

	for _, p := range products {
		fmt.Printf("%4d  %-24s %7.2f/%-6s", p.ID, p.Name, p.Price, p.Unit)
		if p.Farmer != "" {
			fmt.Printf("  %s", p.Farmer)
		}
		if p.Location != "" {
			fmt.Printf(" (%s)", p.Location)
		}
		fmt.Println()
	}
	return nil
}

func runFarmerDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.FarmerRoutes); err != nil {
		return err
	}

	d, err := a.client.Dashboard(cmd.Context())
	if err != nil {
		a.notify.Notify(ux.Error, "Could not load dashboard", friendlyError(err))
		return err
	}

	fmt.Printf("Products:       %d\n", d.TotalProducts)
	fmt.Printf("Pending orders: %d\n", d.PendingOrders)
	fmt.Printf("Revenue:        %.2f\n", d.TotalRevenue)
	return nil
}

func runFarmerProducts(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.FarmerRoutes); err != nil {
		return err
	}

	products, err := a.client.FarmerProducts(cmd.Context())
	if err != nil {
		a.notify.Notify(ux.Error, "Could not load products", friendlyError(err))
		return err
	}
	if len(products) == 0 {
		fmt.Println("No listings yet.")
		return nil
	}
	for _, p := range products {
		fmt.Printf("%4d  %-24s %7.2f/%-6s %s\n", p.ID, p.Name, p.Price, p.Unit, p.Category)
	}
	return nil
}

func runFarmerAddProduct(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.FarmerRoutes); err != nil {
		return err
	}

	if prodName == "" || prodPrice <= 0 {
		return fmt.Errorf("--name and a positive --price are required")
	}

	created, err := a.client.CreateFarmerProduct(cmd.Context(), types.Product{
		Name:     prodName,
		Price:    prodPrice,
		Unit:     prodUnit,
		Quantity: prodQty,
		Category: prodCategory,
	})
	if err != nil {
		a.notify.Notify(ux.Error, "Could not create listing", friendlyError(err))
		return err
	}
	a.notify.Successf("Listing created", "#%d %s", created.ID, created.Name)
	return nil
}

func runFarmerDeleteProduct(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.FarmerRoutes); err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("product id must be a number")
	}
	if err := a.client.DeleteFarmerProduct(cmd.Context(), id); err != nil {
		a.notify.Notify(ux.Error, "Could not delete listing", friendlyError(err))
		return err
	}
	a.notify.Successf("Listing deleted", "#%d", id)
	return nil
}

func runFarmerOrders(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.FarmerRoutes); err != nil {
		return err
	}

	orders, err := a.client.FarmerOrders(cmd.Context())
	if err != nil {
		a.notify.Notify(ux.Error, "Could not load orders", friendlyError(err))
		return err
	}
	printOrders(orders)

	if !watchOrders {
		return nil
	}
	return watchFarmerOrders(cmd.Context(), a)
}

// watchFarmerOrders refetches orders on a ticker until the context is
// cancelled. The config file is watched alongside so a pricing or logging
// change takes effect mid-session.
func watchFarmerOrders(ctx context.Context, a *app) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		a.cfg = cfg
		if err := logging.ReloadConfig(); err != nil {
			logger.Debug("logging config reload failed", zap.Error(err))
		}
		a.notify.Notify(ux.Info, "Config reloaded", path)
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			orders, err := a.client.FarmerOrders(ctx)
			if err != nil {
				a.notify.Notify(ux.Warning, "Refresh failed", friendlyError(err))
				continue
			}
			fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
			printOrders(orders)
		}
	}
}

func runFarmerSetStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.FarmerRoutes); err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("order id must be a number")
	}
	status := args[1]
	if !types.ValidOrderStatus(status) {
		return fmt.Errorf("status must be pending, confirmed, delivered, or cancelled")
	}

	if err := a.client.UpdateOrderStatus(cmd.Context(), id, status); err != nil {
		a.notify.Notify(ux.Error, "Could not update order", friendlyError(err))
		return err
	}
	a.notify.Successf("Order updated", "#%d -> %s", id, status)
	return nil
}

func printOrders(orders []types.Order) {
	if len(orders) == 0 {
		fmt.Println("No orders.")
		return
	}
	for _, o := range orders {
		fmt.Printf("#%-6d %-10s %8.2f", o.ID, o.Status, o.Total)
		if o.Customer != "" {
			fmt.Printf("  %s", o.Customer)
		}
		if !o.CreatedAt.IsZero() {
			fmt.Printf("  %s", o.CreatedAt.Format("2006-01-02"))
		}
		fmt.Println()
	}
}
