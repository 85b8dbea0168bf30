// Package search provides full-text discovery over the catalog, descriptions included.
//
// This is separate from the grid's term filter: results are ranked by
// relevance and may match on words that only appear in a description.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// Index wraps a Bleve index of catalog books.
// All public methods are safe for concurrent use.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger
}

// mappingVersion changes whenever buildIndexMapping does.
// A mismatch on startup drops and recreates the on-disk index.
const mappingVersion = "1"

// Open creates or opens the index described by opts.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.DataPath == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: idx, logger: logger}, nil
	}

	if err := os.MkdirAll(opts.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	indexPath := filepath.Join(opts.DataPath, "catalog.bleve")
	versionPath := filepath.Join(opts.DataPath, "catalog.version")

	var idx bleve.Index
	if _, statErr := os.Stat(indexPath); statErr == nil {
		existing, readErr := os.ReadFile(versionPath) //#nosec G304 -- path built from configured data dir
		switch {
		case readErr != nil || string(existing) != mappingVersion:
			logger.Info("search index mapping changed, rebuilding", "new_version", mappingVersion)
		default:
			opened, err := bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
			} else {
				idx = opened
			}
		}
		if idx == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if idx == nil {
		created, err := bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o600); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		idx = created
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{index: idx, path: indexPath, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBooks makes the index hold exactly books. Every book is upserted and
// any other document is deleted, all in a single batch.
func (s *Index) IndexBooks(books []domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stale, err := s.documentIDs()
	if err != nil {
		return fmt.Errorf("list indexed documents: %w", err)
	}

	batch := s.index.NewBatch()
	for _, b := range books {
		doc := FromBook(b)
		delete(stale, doc.ID)
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	for docID := range stale {
		batch.Delete(docID)
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Debug("indexed catalog", "books", len(books), "removed", len(stale))
	return nil
}

// documentIDs returns the id of every indexed document. Caller holds s.mu.
func (s *Index) documentIDs() (map[string]struct{}, error) {
	count, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, count)
	if count == 0 {
		return ids, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}
	for _, hit := range res.Hits {
		ids[hit.ID] = struct{}{}
	}
	return ids, nil
}

// DocumentCount returns the total number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
