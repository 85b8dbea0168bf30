package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/ledger"
	"github.com/bookshelfapp/bookshelf-server/internal/locale"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// ProvideDateFormatter provides the borrow date formatter for LOCALE.
func ProvideDateFormatter(i do.Injector) (*locale.Formatter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return locale.New(cfg.App.Locale, time.Local)
}

// ProvideLedger restores the borrow ledger from the configured backend.
func ProvideLedger(i do.Injector) (*ledger.Ledger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	kv := do.MustInvoke[*KVHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	dates := do.MustInvoke[*locale.Formatter](i)

	led := ledger.Open(context.Background(), kv.KV, ledger.Options{
		Key:     cfg.Storage.LedgerKey,
		Dates:   dates,
		Emitter: sseHandle.Manager,
		Logger:  log.WithComponent("ledger").Logger,
	})

	log.Info("Ledger ready", "key", cfg.Storage.LedgerKey, "borrowed", led.Len())
	return led, nil
}
