package main

import (
	"context"
	"fmt"
	"time"

	"github.com/voyagen/bretontv/internal/cache"
	"github.com/voyagen/bretontv/internal/config"
	"github.com/voyagen/bretontv/internal/loader"
	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/server"
	"github.com/voyagen/bretontv/internal/service"
	"github.com/voyagen/bretontv/internal/store"
)

// openStore migrates the database and returns the catalog store, cached
// through Redis when it is available. The caller closes the returned pool.
func openStore(ctx context.Context, cfg *config.Config, rds *cache.Redis) (store.Store, *store.Postgres, error) {
	if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	if rds == nil {
		return pg, pg, nil
	}
	return store.NewCachedStore(pg, rds), pg, nil
}

func runSync(ctx context.Context, cfg *config.Config, l *loader.Loader, rds *cache.Redis, paths []string) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("%w: -sync requires DATABASE_URL", errUsage)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one playlist path is required", errUsage)
	}
	s, pg, err := openStore(ctx, cfg, rds)
	if err != nil {
		return err
	}
	defer pg.Close()

	var lock service.LockFunc
	if rds != nil {
		lock = func(ctx context.Context, key string, ttl time.Duration) (func(), error) {
			return cache.TryLock(ctx, rds, key, ttl)
		}
	}
	results, err := service.Sync(ctx, s, l, lock, paths)
	if err != nil {
		return err
	}
	total := 0
	for _, r := range results {
		total += r.Channels
	}
	logging.Info("sync: %d sources, %d channels", len(results), total)
	return nil
}

// runServe serves the given paths, or the synced catalog when no path is
// given and a database is configured.
func runServe(ctx context.Context, cfg *config.Config, l *loader.Loader, rds *cache.Redis, opts *options) error {
	var (
		catalog server.Catalog
		s       store.Store
	)
	if cfg.DatabaseURL != "" {
		var pg *store.Postgres
		var err error
		s, pg, err = openStore(ctx, cfg, rds)
		if err != nil {
			return err
		}
		defer pg.Close()
	}

	switch {
	case len(opts.paths) > 0:
		catalog = server.LoaderCatalog(l, opts.paths)
	case s != nil:
		catalog = server.StoreCatalog(s)
	default:
		return fmt.Errorf("%w: -serve needs playlist paths or DATABASE_URL", errUsage)
	}
	return server.New(catalog, s, cfg.ServerPort).ListenAndServe(ctx)
}
