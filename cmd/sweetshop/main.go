// Package main implements the interactive terminal client for the Sweet
// Shop storefront.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/sweetshop/internal/app"
	"github.com/abgdnv/sweetshop/internal/config"
	"github.com/abgdnv/sweetshop/internal/ui"
	"github.com/abgdnv/sweetshop/pkg/bootstrap"
	"github.com/abgdnv/sweetshop/pkg/configloader"
)

const appName = "sweetshop"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
}

// run loads the configuration, wires the dependencies and hands control to
// the view router. The router starts at the shop view; the guard redirects
// to login when no persisted session exists.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](appName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	deps, err := app.SetupDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}

	router := app.SetupRouter(deps, cfg, os.Stdin, os.Stdout)
	return router.Run(ctx, ui.ViewShop)
}
