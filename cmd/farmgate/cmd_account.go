package main

import (
	"fmt"
	"strings"

	"farmgate/internal/api"
	"farmgate/internal/guard"
	"farmgate/internal/session"
	"farmgate/internal/ux"

	"github.com/spf13/cobra"
)

// accountCmd groups profile maintenance
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your profile",
}

var (
	addrPhone    string
	addrDistrict string
	addrAddress  string
)

var updateAddressCmd = &cobra.Command{
	Use:   "update-address",
	Short: "Update your delivery address",
	RunE:  runUpdateAddress,
}

var districtsCmd = &cobra.Command{
	Use:   "districts",
	Short: "List districts available for delivery",
	RunE:  runDistricts,
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show saved CLI preferences",
	RunE:  runPrefs,
}

func init() {
	updateAddressCmd.Flags().StringVar(&addrPhone, "phone", "", "phone number")
	updateAddressCmd.Flags().StringVar(&addrDistrict, "district", "", "district")
	updateAddressCmd.Flags().StringVar(&addrAddress, "address", "", "street address")

	accountCmd.AddCommand(updateAddressCmd, districtsCmd, prefsCmd)
}

func runUpdateAddress(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.AccountRoutes); err != nil {
		return err
	}

	upd := api.AddressUpdate{
		Phone:    addrPhone,
		District: addrDistrict,
		Address:  addrAddress,
	}
	if err := session.ValidateAddress(upd); err != nil {
		a.notify.Notify(ux.Error, "Invalid address", err.Error())
		return err
	}

	user, err := a.client.UpdateAddress(cmd.Context(), upd)
	if err != nil {
		a.notify.Notify(ux.Error, "Could not update address", friendlyError(err))
		return err
	}

	a.notify.Successf("Address updated", "%s, %s", user.Address, user.District)
	return nil
}

func runDistricts(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := requireRole(cmd, a, guard.AccountRoutes); err != nil {
		return err
	}

	districts, err := a.client.AvailableDistricts(cmd.Context())
	if err != nil {
		a.notify.Notify(ux.Error, "Could not load districts", friendlyError(err))
		return err
	}
	for _, d := range districts {
		fmt.Println(d)
	}
	return nil
}

func runPrefs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	prefs := a.prefs.Load()
	fmt.Printf("Remembered email: %s\n", valueOr(prefs.RememberedEmail, "(none)"))
	fmt.Printf("Preferred role:   %s\n", valueOr(string(prefs.PreferredRole), "(none)"))
	fmt.Printf("Plain output:     %v\n", prefs.PlainOutput)
	return nil
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
