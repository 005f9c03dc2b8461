// Package main is the operator CLI for the NJYOT storefront data store.
// It loads configuration, opens the configured persistence medium, seeds
// default data and runs one administrative command against the store.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"njyot/internal/config"
	"njyot/internal/database"
	"njyot/internal/shop"
	"njyot/internal/storage"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg  *config.Config
	db   *database.Store
	shop *shop.Service
}

func main() {
	// Cancel in-flight persistence on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI(&app{}).RunContext(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newCLI(a *app) *cli.App {
	return &cli.App{
		Name:  "njyot",
		Usage: "manage the NJYOT storefront data store",
		Before: func(c *cli.Context) error {
			return a.open(c.Context)
		},
		After: func(c *cli.Context) error {
			return a.close(c.Context)
		},
		Commands: []*cli.Command{
			initCommand(a),
			statsCommand(a),
			productsCommand(a),
			ordersCommand(a),
			trackCommand(a),
			settingsCommand(a),
			adminCommand(a),
			exportCommand(a),
		},
	}
}

// open loads configuration, sets up logging and opens the store.
func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so command output on stdout stays clean.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Debug("configuration loaded",
		"env", cfg.Env,
		"store", cfg.StoreBackend,
		"ephemeral", cfg.Ephemeral,
	)

	medium, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, medium, database.WithAdminPassword(cfg.AdminPassword))
	if err != nil {
		medium.Close()
		return err
	}
	a.db = db
	a.shop = shop.New(db)
	return nil
}

// close flushes the store. It uses a fresh context so a cancelled command
// still gets its final write.
func (a *app) close(context.Context) error {
	if a.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storage.DefaultTimeout)
	defer cancel()
	return a.db.Close(ctx)
}
