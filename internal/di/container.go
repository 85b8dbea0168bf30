// Package di provides dependency injection configuration for the Bookshelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/di/providers"
	"github.com/bookshelfapp/bookshelf-server/internal/ledger"
	"github.com/bookshelfapp/bookshelf-server/internal/locale"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	Register(injector)
	return injector
}

// Register adds every provider to injector.
func Register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Catalog and persistence
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideKV)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideDateFormatter)
	do.Provide(injector, providers.ProvideLedger)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Browsing
	do.Provide(injector, providers.ProvideSessionRegistry)
	do.Provide(injector, providers.ProvideBorrowLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services. This triggers lazy initialization in
// dependency order and starts the HTTP server.
func Bootstrap(injector do.Injector) error {
	steps := []func(do.Injector) error{
		invoke[*config.Config],
		invoke[*logger.Logger],
		invoke[*catalog.Store],
		invoke[*providers.KVHandle],
		invoke[*providers.SSEManagerHandle],
		invoke[*locale.Formatter],
		invoke[*ledger.Ledger],
		invoke[*providers.SearchIndexHandle],
		invoke[*providers.SessionRegistryHandle],
		invoke[*providers.BorrowLimiterHandle],
		invoke[*providers.HTTPServerHandle],
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}
	return nil
}

func invoke[T any](injector do.Injector) error {
	_, err := do.Invoke[T](injector)
	return err
}
