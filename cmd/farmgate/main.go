package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"farmgate/internal/api"
	"farmgate/internal/cart"
	"farmgate/internal/config"
	"farmgate/internal/logging"
	"farmgate/internal/session"
	"farmgate/internal/store"
	"farmgate/internal/ux"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// app bundles the wired subsystems for command handlers.
type app struct {
	cfg      *config.Config
	store    *store.LocalStore
	client   *api.Client
	sessions *session.Manager
	cart     *cart.Aggregator
	notify   *ux.Notifier
	prefs    *ux.PreferencesStore
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "farmgate",
	Short: "farmgate - farmer/customer marketplace client",
	Long: `farmgate is the command-line client for the farm marketplace.

It keeps your session, role, and shopping cart in a local store
(~/.farmgate) and talks to the marketplace API for everything else.
Users holding both a farmer and a customer account can switch roles
without signing in again.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// newApp wires config, store, client, and managers for a command invocation.
func newApp() (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stateDir := filepath.Dir(path)
	if err := logging.Initialize(stateDir); err != nil {
		logger.Warn("logging init failed", zap.Error(err))
	}
	logging.Boot("farmgate %s starting", cfg.Version)

	st, err := store.NewLocalStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.RequestTimeout(), st)
	mgr := session.NewManager(st, client)

	return &app{
		cfg:      cfg,
		store:    st,
		client:   client,
		sessions: mgr,
		cart:     cart.NewAggregator(st, cfg.Pricing),
		notify:   ux.NewNotifier(),
		prefs:    ux.NewPreferencesStore(stateDir),
	}, nil
}

// close releases app resources.
func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("store close failed", zap.Error(err))
	}
}

// hydrate restores the session from the persisted store. Rehydration
// failure is not fatal for commands that work anonymously; protected
// commands check the guard afterwards.
func (a *app) hydrate(ctx context.Context) {
	if err := a.sessions.Hydrate(ctx); err != nil {
		logger.Debug("session rehydration failed", zap.Error(err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.farmgate/config.yaml)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(marketCmd)
	rootCmd.AddCommand(farmerCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(accountCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
