package main

import (
	"context"
	"fmt"
	"os"

	"github.com/barlow-drilling/drillbooks/internal/config"
	"github.com/barlow-drilling/drillbooks/internal/database"
	"github.com/barlow-drilling/drillbooks/internal/ledger"
	"github.com/barlow-drilling/drillbooks/internal/logger"
	"github.com/barlow-drilling/drillbooks/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	var store database.Store
	if cfg.DatabaseDriver == "memory" {
		store = database.NewMemoryStore()
	} else {
		store, err = database.NewStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
	}
	defer store.Close()

	a := &app{
		cfg:     cfg,
		store:   store,
		engine:  ledger.NewEngine(store, cfg.InvoicePrefix),
		reports: report.NewAggregator(store),
	}

	rootCmd := newRootCmd(a)
	return rootCmd.ExecuteContext(context.Background())
}
