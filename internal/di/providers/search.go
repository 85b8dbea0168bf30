package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index, populated from the catalog.
// The memory backend keeps the index in memory too.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cat := do.MustInvoke[*catalog.Store](i)

	opts := search.Options{Logger: log.WithComponent("search").Logger}
	if cfg.Storage.Backend != config.BackendMemory && cfg.Storage.DataPath != "" {
		opts.DataPath = cfg.SearchPath()
	}

	index, err := search.Open(opts)
	if err != nil && opts.DataPath != "" {
		log.Warn("Search index directory unusable, indexing in memory", "path", opts.DataPath, "error", err)
		opts.DataPath = ""
		index, err = search.Open(opts)
	}
	if err != nil {
		return nil, err
	}

	// The catalog is small and static, so it is reindexed on every start.
	if err := index.IndexBooks(cat.All()); err != nil {
		_ = index.Close()
		return nil, err
	}

	docCount, err := index.DocumentCount()
	if err != nil {
		log.Warn("Search index count unavailable", "error", err)
	}
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}
