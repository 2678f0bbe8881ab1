// Command wordcheck checks documents against a table of wording rules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/cli"
	"github.com/custodia-labs/wordcheck/internal/core/services"
	"github.com/custodia-labs/wordcheck/internal/logger"
	"github.com/custodia-labs/wordcheck/internal/normalisers"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening rule store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing rule store: %v", err)
		}
	}()
	logger.Debugw("opened rule store", "path", store.Path())

	sessions := services.NewSessionManager(services.SessionDeps{
		Registry: services.NewNormaliserRegistry(normalisers.All()...),
		Fetcher: fetcher.New(fetcher.Config{
			Timeout:       settings.Fetch.Timeout,
			RatePerSecond: settings.Fetch.RatePerSecond,
			MaxBytes:      settings.Fetch.MaxBytes,
		}),
		Snapshots: store,
		Reader:    tabular.NewReader(),
		TableName: settings.Rules.TableName,
		MaxBytes:  settings.Fetch.MaxBytes,
	})

	cli.SetServices(sessions, settingsService)
	cli.SetVersion(version)
	return cli.Execute(ctx)
}
