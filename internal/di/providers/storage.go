package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/store/redis"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

// KVHandle wraps the configured key-value backend with shutdown capability.
type KVHandle struct {
	store.KV
	Backend   string
	Available bool // false when the backend could not be opened
}

// Shutdown implements do.Shutdownable.
func (h *KVHandle) Shutdown() error {
	return h.Close()
}

// ProvideKV opens the key-value backend named by STORAGE_BACKEND.
func ProvideKV(i do.Injector) (*KVHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		kv   store.KV
		err  error
		path string
	)
	switch cfg.Storage.Backend {
	case config.BackendBadger:
		path = cfg.BadgerPath()
		kv, err = store.OpenBadger(path, log.Logger)
	case config.BackendSQLite:
		path = cfg.SQLitePath()
		kv, err = sqlite.Open(path, log.Logger)
	case config.BackendRedis:
		path = cfg.Storage.RedisAddr
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		kv, err = redis.Open(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, log.Logger)
	case config.BackendMemory:
		log.Warn("Using in-memory storage, borrows will not survive a restart")
		kv = store.NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		// Startup continues with an empty ledger; borrows stay in memory and report
		// PERSISTENCE_UNAVAILABLE until the process is restarted with working storage.
		log.Warn("Storage unavailable, borrows will not be persisted",
			"backend", cfg.Storage.Backend,
			"location", path,
			"error", err,
		)
		return &KVHandle{
			KV:      store.Unavailable{Cause: fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)},
			Backend: cfg.Storage.Backend,
		}, nil
	}

	log.Info("Storage initialized", "backend", cfg.Storage.Backend, "location", path)
	return &KVHandle{KV: kv, Backend: cfg.Storage.Backend, Available: true}, nil
}

// ProvideCatalog loads the catalog from CATALOG_PATH, or the built-in list when unset.
func ProvideCatalog(i do.Injector) (*catalog.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	source := cfg.Catalog.Path
	if source == "" {
		source = "built-in"
	}
	log.Info("Catalog loaded", "source", source, "books", cat.Len(), "categories", len(cat.Categories()))
	return cat, nil
}
