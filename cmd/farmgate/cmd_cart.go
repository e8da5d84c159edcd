package main

import (
	"fmt"
	"strconv"

	"farmgate/internal/cart"
	"farmgate/internal/guard"
	"farmgate/internal/types"
	"farmgate/internal/ux"

	"github.com/spf13/cobra"
)

// cartCmd manages the local shopping cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
	Long: `Add, change, and price cart items. The cart lives in the local
store and survives reloads; totals follow the fixed pricing policy
(delivery fee waived above the free-delivery threshold).`,
}

var (
	addQty      int
	addName     string
	addPrice    float64
	addUnit     string
	addFarmer   string
	addLocation string
)

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Long: `Adds quantity units of a product. Adding a product already in the
cart increments its quantity instead of duplicating the line.`,
	Args: cobra.ExactArgs(1),
	RunE: runCartAdd,
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set a line's quantity (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE:  runCartClear,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cart lines and totals",
	RunE:  runCartShow,
}

var cartSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the local cart to the server and pull its copy",
	RunE:  runCartSync,
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the cart",
	RunE:  runCartCheckout,
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQty, "qty", "q", 1, "quantity to add")
	cartAddCmd.Flags().StringVar(&addName, "name", "", "product name")
	cartAddCmd.Flags().Float64Var(&addPrice, "price", 0, "unit price")
	cartAddCmd.Flags().StringVar(&addUnit, "unit", "", "unit label (lb, kg, bunch)")
	cartAddCmd.Flags().StringVar(&addFarmer, "farmer", "", "farmer attribution")
	cartAddCmd.Flags().StringVar(&addLocation, "location", "", "origin location")

	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartRemoveCmd, cartClearCmd,
		cartShowCmd, cartSyncCmd, cartCheckoutCmd)
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("product id must be a number")
	}

	p := types.Product{
		ID:       id,
		Name:     addName,
		Price:    addPrice,
		Unit:     addUnit,
		Farmer:   addFarmer,
		Location: addLocation,
	}

	// Resolve display fields from the marketplace when not given; the cart
	// works offline with explicit flags.
	if p.Name == "" {
		if listed, ok := lookupProduct(cmd, a, id); ok {
			p = listed
		}
	}

	if err := a.cart.Add(p, addQty); err != nil {
		a.notify.Notify(ux.Error, "Could not add to cart", err.Error())
		return err
	}

	a.notify.Successf("Added to cart", "%s x%d", displayName(p), addQty)
	return nil
}

func runCartSet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("product id must be a number")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity must be a number")
	}

	if err := a.cart.SetQuantity(id, qty); err != nil {
		a.notify.Notify(ux.Error, "Could not update cart", err.Error())
		return err
	}
	if qty == 0 {
		a.notify.Notify(ux.Success, "Removed", fmt.Sprintf("product %d", id))
	} else {
		a.notify.Successf("Updated", "product %d quantity %d", id, qty)
	}
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("product id must be a number")
	}
	if err := a.cart.Remove(id); err != nil {
		return err
	}
	a.notify.Notify(ux.Success, "Removed", fmt.Sprintf("product %d", id))
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cart.Clear(); err != nil {
		return err
	}
	a.notify.Notify(ux.Success, "Cart cleared", "")
	return nil
}

func runCartShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	items, err := a.cart.Items()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return nil
	}

	for _, item := range items {
		line := fmt.Sprintf("%4d  %-24s %3d x %7.2f/%-6s = %8.2f",
			item.ProductID, item.Name, item.Quantity, item.UnitPrice,
			item.Unit, cart.Round2(item.UnitPrice*float64(item.Quantity)))
		if item.Farmer != "" {
			line += "  (" + item.Farmer + ")"
		}
		fmt.Println(line)
	}

	totals, err := a.cart.ComputeTotals()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Subtotal:     %8.2f\n", cart.Round2(totals.Subtotal))
	fmt.Printf("Delivery fee: %8.2f\n", cart.Round2(totals.DeliveryFee))
	fmt.Printf("Tax:          %8.2f\n", cart.Round2(totals.Tax))
	fmt.Printf("Total:        %8.2f\n", cart.Round2(totals.Total))
	return nil
}

func runCartSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.hydrate(cmd.Context())
	if d := guard.Allow(a.sessions.Current(), guard.CustomerRoutes); !d.Allowed {
		a.notify.Notify(ux.Warning, "Sign in required", "cart sync needs a customer session ("+d.Redirect+")")
		return fmt.Errorf("access denied")
	}

	items, err := a.cart.Items()
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := a.client.PushCartItem(cmd.Context(), item); err != nil {
			a.notify.Notify(ux.Error, "Cart sync failed", friendlyError(err))
			return err
		}
	}

	remote, err := a.client.RemoteCart(cmd.Context())
	if err != nil {
		a.notify.Notify(ux.Error, "Cart sync failed", friendlyError(err))
		return err
	}
	a.notify.Successf("Cart synced", "%d lines on server", len(remote))
	return nil
}

func runCartCheckout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.hydrate(cmd.Context())
	if d := guard.Allow(a.sessions.Current(), guard.CustomerRoutes); !d.Allowed {
		a.notify.Notify(ux.Warning, "Sign in required", "checkout needs a customer session ("+d.Redirect+")")
		return fmt.Errorf("access denied")
	}

	items, err := a.cart.Items()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.notify.Notify(ux.Warning, "Cart is empty", "nothing to order")
		return nil
	}

	order, err := a.client.PlaceOrder(cmd.Context(), items)
	if err != nil {
		a.notify.Notify(ux.Error, "Checkout failed", friendlyError(err))
		return err
	}

	if err := a.cart.Clear(); err != nil {
		return err
	}
	a.notify.Successf("Order placed", "order #%d total %.2f", order.ID, cart.Round2(order.Total))
	return nil
}

// lookupProduct finds a product in the marketplace listing; requires a
// session, so failures just mean the caller supplies flags instead.
func lookupProduct(cmd *cobra.Command, a *app, id int64) (types.Product, bool) {
	a.hydrate(cmd.Context())
	if a.sessions.Current().Anonymous() {
		return types.Product{}, false
	}
	products, err := a.client.Marketplace(cmd.Context())
	if err != nil {
		return types.Product{}, false
	}
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return types.Product{}, false
}

func displayName(p types.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("product %d", p.ID)
}
