package main

import (
	"fmt"

	"farmgate/internal/guard"
	"farmgate/internal/ux"

	"github.com/spf13/cobra"
)

// ordersCmd shows the customer order history
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show your order history",
	RunE:  runOrders,
}

var ordersDetail bool

func init() {
	ordersCmd.Flags().BoolVar(&ordersDetail, "detail", false, "show line items for each order")
}

func runOrders(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.CustomerRoutes); err != nil {
		return err
	}

	orders, err := a.client.OrderHistory(cmd.Context())
	if err != nil {
		a.notify.Notify(ux.Error, "Could not load orders", friendlyError(err))
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	for _, o := range orders {
		fmt.Printf("#%-6d %-10s %8.2f", o.ID, o.Status, o.Total)
		if !o.CreatedAt.IsZero() {
			fmt.Printf("  %s", o.CreatedAt.Format("2006-01-02"))
		}
		fmt.Println()
		if ordersDetail {
			for _, item := range o.Items {
				fmt.Printf("        %-24s %3d x %7.2f/%s\n",
					item.Name, item.Quantity, item.UnitPrice, item.Unit)
			}
		}
	}
	return nil
}
