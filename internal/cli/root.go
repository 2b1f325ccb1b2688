// Package cli implements levelupctl, the operator console for reviewing
// payments from a terminal.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hongminglow/levelup-be/internal/admin"
	"github.com/hongminglow/levelup-be/internal/bootstrap"
	"github.com/hongminglow/levelup-be/internal/config"
	"github.com/hongminglow/levelup-be/internal/feed"
	"github.com/hongminglow/levelup-be/internal/storage"
)

// cliActor is recorded as the reviewer for status changes made here.
const cliActor = "cli"

var (
	jsonOutput bool
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "levelupctl",
		Short: "levelupctl - LevelUp payment review console",
		Long: `levelupctl talks to the same store and change feed as the API server.

Status changes made here reach open payment watches and send the same
notification emails as the admin API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(credentialCmd)
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// backend bundles the services a command needs.
type backend struct {
	store  storage.Store
	broker feed.Broker
	admin  *admin.Service
}

func (b *backend) Close() {
	b.store.Close()
	_ = b.broker.Close()
}

// openBackend is replaced in tests.
var openBackend = func(ctx context.Context) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	broker, err := bootstrap.OpenBroker(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init change feed: %w", err)
	}
	store, err := bootstrap.OpenStore(ctx, cfg, broker)
	if err != nil {
		_ = broker.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &backend{
		store:  store,
		broker: broker,
		admin:  admin.NewService(store, store, bootstrap.Notifier(cfg), cfg.Location()),
	}, nil
}

// withBackend opens the backend for the duration of fn.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b)
}
