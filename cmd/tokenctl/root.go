package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/infra/logging"
	red "scenario-quiz/internal/infra/redis"
	"scenario-quiz/internal/usecase"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "tokenctl",
	Short:         "Manage the access-token ledger",
	Long:          "tokenctl issues and lists access tokens in the shared ledger used by the quiz server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to config yaml")

	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(listCmd)
}

var errMemoryStore = errors.New("store.driver is memory: the ledger lives inside the server process, use the admin API instead")

// openLedger loads the ledger from the configured shared store. The
// returned close func releases the store connection.
func openLedger(cmd *cobra.Command) (usecase.LedgerUseCase, func() error, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, false)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.Driver != "redis" {
		return nil, nil, errMemoryStore
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	logger := logging.NewWriter(io.Discard, cfg.Log, false)
	ledger, err := usecase.NewLedgerUseCase(ctx, red.NewLedgerStore(client, ""), logger)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger, client.Close, nil
}
