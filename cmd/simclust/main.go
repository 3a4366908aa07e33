// Command simclust clusters images by visual similarity.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/simclust/internal/adapters/driven/codec"
	"github.com/custodia-labs/simclust/internal/adapters/driven/config/file"
	"github.com/custodia-labs/simclust/internal/adapters/driven/export"
	"github.com/custodia-labs/simclust/internal/adapters/driven/lock"
	"github.com/custodia-labs/simclust/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/simclust/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/simclust/internal/adapters/driven/watch"
	"github.com/custodia-labs/simclust/internal/adapters/driving/cli"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/core/services"
	"github.com/custodia-labs/simclust/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// configDirEnv overrides the directory holding config.toml.
const configDirEnv = "SIMCLUST_CONFIG_DIR"

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config falls back to memory so read-only commands work without a
	// writable home directory.
	var configStore driven.ConfigStore
	fileConfig, err := file.NewConfigStore(os.Getenv(configDirEnv))
	if err != nil {
		logger.Warn("config file unavailable, using defaults: %v", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = fileConfig
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	clusteringCodec := codec.NewClusteringCodec()
	store, err := sqlite.NewStore(settings.Storage.DataDir, clusteringCodec)
	if err != nil {
		return fmt.Errorf("opening clustering store: %w", err)
	}
	defer store.Close()

	locker, err := lock.NewLocker(filepath.Join(filepath.Dir(store.Path()), "locks"))
	if err != nil {
		return fmt.Errorf("creating session locker: %w", err)
	}

	watcher := watch.NewWatcher(watch.DefaultDebounce)
	defer watcher.Close()

	clusteringService := services.NewClusteringService(codec.NewFileLoader())
	clusterings := store.ClusteringStore()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Clustering: clusteringService,
		Library:    services.NewLibraryService(clusterings, locker),
		Sessions:   services.NewSessionService(clusterings, locker, settings.Editor),
		Settings:   settingsService,
		Export:     services.NewExportService(export.NewExporter(), clusteringCodec),
		Watch:      services.NewWatchService(clusteringService, watcher),
	})

	return cli.ExecuteContext(ctx)
}
