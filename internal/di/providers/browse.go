package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/browse"
	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/ledger"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/ratelimit"
)

// SessionRegistryHandle wraps the browse session registry and its eviction loop.
type SessionRegistryHandle struct {
	*browse.Registry
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SessionRegistryHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideSessionRegistry provides the per-client browse session registry.
func ProvideSessionRegistry(i do.Injector) (*SessionRegistryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cat := do.MustInvoke[*catalog.Store](i)
	led := do.MustInvoke[*ledger.Ledger](i)

	registry := browse.NewRegistry(cat, led, cfg.Browse.SessionIdleTimeout, log.WithComponent("browse").Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go registry.Run(ctx)

	log.Info("Browse sessions ready", "idle_timeout", cfg.Browse.SessionIdleTimeout)
	return &SessionRegistryHandle{Registry: registry, cancel: cancel}, nil
}

// BorrowLimiterHandle wraps the per-client borrow rate limiter.
type BorrowLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *BorrowLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideBorrowLimiter provides the borrow-confirm rate limiter.
func ProvideBorrowLimiter(i do.Injector) (*BorrowLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &BorrowLimiterHandle{KeyedRateLimiter: ratelimit.PerMinute(cfg.Browse.BorrowRateLimit)}, nil
}
