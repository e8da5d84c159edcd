package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"farmgate/internal/api"
	"farmgate/internal/session"
	"farmgate/internal/types"
	"farmgate/internal/ux"

	"github.com/spf13/cobra"
)

// authCmd manages the session lifecycle
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your marketplace session",
	Long: `Sign in, sign out, register, and manage roles.

Available subcommands:
  login         - Sign in with email and password
  logout        - Sign out and clear local session state
  register      - Create a new account (farmer or customer)
  whoami        - Show the current session
  select-role   - Pick a role when your account holds both
  switch-role   - Switch the active role without signing in again
  add-role      - Register the complementary role for this account`,
}

var (
	loginEmail    string
	loginPassword string

	regEmail    string
	regPassword string
	regConfirm  string
	regName     string
	regRole     string
	regPhone    string
	regDistrict string
	regAddress  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local session state",
	Long: `Signs out. The server is notified best-effort; local state is
cleared even when that call fails.`,
	RunE: runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

var selectRoleCmd = &cobra.Command{
	Use:   "select-role <farmer|customer>",
	Short: "Pick a role when your account holds both",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelectRole,
}

var switchRoleCmd = &cobra.Command{
	Use:   "switch-role <farmer|customer>",
	Short: "Switch the active role without signing in again",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitchRole,
}

var addRoleCmd = &cobra.Command{
	Use:   "add-role",
	Short: "Register the complementary role for this account",
	Long: `Registers your second role (farmer accounts gain a customer role and
vice versa) using the upgrade token issued at login. When no upgrade
token is available the command explains how to proceed instead of
failing.`,
	RunE: runAddRole,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&regEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&regPassword, "password", "p", "", "password")
	registerCmd.Flags().StringVar(&regConfirm, "confirm", "", "password confirmation")
	registerCmd.Flags().StringVarP(&regName, "name", "n", "", "display name")
	registerCmd.Flags().StringVarP(&regRole, "role", "r", "", "farmer or customer")
	registerCmd.Flags().StringVar(&regPhone, "phone", "", "phone number")
	registerCmd.Flags().StringVar(&regDistrict, "district", "", "district")
	registerCmd.Flags().StringVar(&regAddress, "address", "", "street address")

	authCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd,
		selectRoleCmd, switchRoleCmd, addRoleCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	email := loginEmail
	prefs := a.prefs.Load()
	if email == "" {
		email = prompt(fmt.Sprintf("Email [%s]: ", prefs.RememberedEmail))
		if email == "" {
			email = prefs.RememberedEmail
		}
	}
	password := loginPassword
	if password == "" {
		password = prompt("Password: ")
	}

	if err := a.sessions.Login(cmd.Context(), email, password); err != nil {
		a.notify.Notify(ux.Error, "Login failed", friendlyError(err))
		return err
	}

	prefs.RememberedEmail = email
	if err := a.prefs.Save(prefs); err != nil {
		logger.Debug("failed to save preferences")
	}

	sess := a.sessions.Current()
	if sess.State == session.StateMultiUnresolved {
		a.notify.Notify(ux.Info, "Choose a role",
			"your account holds both roles; run 'farmgate auth select-role <farmer|customer>'")
		return nil
	}
	a.notify.Successf("Signed in", "%s (%s)", sess.Email, sess.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.sessions.Logout(cmd.Context())
	a.notify.Notify(ux.Success, "Signed out", "local session and cart cleared")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	req := api.RegisterRequest{
		Email:    regEmail,
		Password: regPassword,
		Name:     regName,
		Role:     types.Role(regRole),
		Phone:    regPhone,
		District: regDistrict,
		Address:  regAddress,
	}
	confirm := regConfirm
	if confirm == "" {
		confirm = regPassword
	}

	if err := a.sessions.Register(cmd.Context(), req, confirm); err != nil {
		a.notify.Notify(ux.Error, "Registration failed", friendlyError(err))
		return err
	}

	sess := a.sessions.Current()
	a.notify.Successf("Account created", "%s (%s)", sess.Email, sess.Role)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.hydrate(cmd.Context())
	sess := a.sessions.Current()
	if sess.Anonymous() {
		fmt.Println("Not signed in.")
		return nil
	}

	fmt.Printf("Email:  %s\n", sess.Email)
	fmt.Printf("Name:   %s\n", sess.Name)
	fmt.Printf("Role:   %s\n", sess.Role)
	fmt.Printf("State:  %s\n", sess.State)
	roles := []string{}
	if sess.HasFarmer {
		roles = append(roles, "farmer")
	}
	if sess.HasCustomer {
		roles = append(roles, "customer")
	}
	fmt.Printf("Roles:  %s\n", strings.Join(roles, ", "))
	return nil
}

func runSelectRole(cmd *cobra.Command, args []string) error {
	return runRoleChange(cmd, args[0], true)
}

func runSwitchRole(cmd *cobra.Command, args []string) error {
	return runRoleChange(cmd, args[0], false)
}

func runRoleChange(cmd *cobra.Command, roleArg string, selecting bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	role := types.Role(roleArg)
	if role != types.RoleFarmer && role != types.RoleCustomer {
		return fmt.Errorf("role must be farmer or customer")
	}

	a.hydrate(cmd.Context())

	if selecting {
		err = a.sessions.SelectRole(cmd.Context(), role)
	} else {
		err = a.sessions.SwitchRole(cmd.Context(), role)
	}
	if err != nil {
		a.notify.Notify(ux.Error, "Role change failed", friendlyError(err))
		return err
	}

	prefs := a.prefs.Load()
	prefs.PreferredRole = role
	if err := a.prefs.Save(prefs); err != nil {
		logger.Debug("failed to save preferences")
	}

	a.notify.Successf("Active role", "%s", role)
	fmt.Printf("Home: %s\n", roleHome(role))
	return nil
}

func runAddRole(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.hydrate(cmd.Context())

	if err := a.sessions.RegisterSecondRole(cmd.Context()); err != nil {
		if errors.Is(err, session.ErrUpgradeUnavailable) {
			a.notify.Notify(ux.Warning, "Feature unavailable", err.Error())
			return nil
		}
		a.notify.Notify(ux.Error, "Could not add role", friendlyError(err))
		return err
	}

	sess := a.sessions.Current()
	a.notify.Successf("Role added", "account now holds farmer and customer; active role %s", sess.Role)
	return nil
}

// roleHome maps an active role to its landing route.
func roleHome(role types.Role) string {
	if role == types.RoleFarmer {
		return "/farmer/dashboard"
	}
	return "/customer/marketplace"
}

// friendlyError renders network-originated failures for notifications.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, api.ErrTimeout):
		return "the server did not respond in time; try again"
	case errors.Is(err, api.ErrUnauthorized):
		return "your session has expired; sign in again"
	}
	return err.Error()
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
