// Package ledger records which books have been borrowed and keeps that record in a persisted slot.
//
// The whole ledger is one JSON array in a single store.KV slot, rewritten on
// every borrow. Loading is fail-open: a missing or damaged slot starts an
// empty ledger instead of stopping the server.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/locale"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// DefaultKey is the slot name the ledger persists under.
const DefaultKey = "borrowedBooks"

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures a Ledger. Zero values get defaults.
type Options struct {
	Key     string
	Clock   func() time.Time
	Dates   *locale.Formatter
	Emitter store.EventEmitter
	Logger  *slog.Logger
}

// Ledger is the set of borrowed books in borrow order.
type Ledger struct {
	mu      sync.RWMutex
	kv      store.KV
	key     string
	clock   func() time.Time
	dates   *locale.Formatter
	emitter store.EventEmitter
	logger  *slog.Logger

	records []domain.BorrowRecord
	index   map[int]struct{}
}

// Open reads the persisted slot once and returns the ledger it describes.
// It never fails: unreadable state is logged at WARN and treated as empty.
func Open(ctx context.Context, kv store.KV, opts Options) *Ledger {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Dates == nil {
		opts.Dates = locale.Default()
	}
	if opts.Emitter == nil {
		opts.Emitter = store.NewNoopEmitter()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	l := &Ledger{
		kv:      kv,
		key:     opts.Key,
		clock:   opts.Clock,
		dates:   opts.Dates,
		emitter: opts.Emitter,
		logger:  opts.Logger,
		index:   make(map[int]struct{}),
	}
	l.restore(ctx)
	return l
}

func (l *Ledger) restore(ctx context.Context) {
	raw, err := l.kv.Get(ctx, l.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l.logger.Debug("no persisted ledger, starting empty", "key", l.key)
		return
	case err != nil:
		l.logger.Warn("persisted ledger unreadable, starting empty", "key", l.key, "error", err)
		return
	}

	if !codec.Valid(raw) {
		l.logger.Warn("persisted ledger is not valid JSON, starting empty", "key", l.key, "bytes", len(raw))
		return
	}

	var stored []domain.BorrowRecord
	if err := codec.Unmarshal(raw, &stored); err != nil {
		l.logger.Warn("persisted ledger has unexpected shape, starting empty", "key", l.key, "error", err)
		return
	}

	var skipped int
	for _, rec := range stored {
		if rec.ID <= 0 {
			skipped++
			continue
		}
		if _, dup := l.index[rec.ID]; dup {
			skipped++
			continue
		}
		l.index[rec.ID] = struct{}{}
		l.records = append(l.records, rec)
	}

	l.logger.Info("ledger restored", "key", l.key, "borrowed", len(l.records), "skipped", skipped)
}

// IsBorrowed reports whether a record exists for id.
func (l *Ledger) IsBorrowed(id int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[id]
	return ok
}

// Borrow records book as borrowed today and persists the whole ledger.
//
// A book that is already borrowed yields ALREADY_BORROWED and nothing changes.
// When the write fails the record stays in memory and is returned together
// with a PERSISTENCE_UNAVAILABLE error.
func (l *Ledger) Borrow(ctx context.Context, book domain.Book) (domain.BorrowRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[book.ID]; ok {
		return domain.BorrowRecord{}, domainerrors.AlreadyBorrowedf("%s is already borrowed", book.Title)
	}

	rec := domain.NewBorrowRecord(book, l.dates.Format(l.clock()))
	l.records = append(l.records, rec)
	l.index[book.ID] = struct{}{}

	l.emitter.Emit(sse.NewBookBorrowedEvent(rec, len(l.records)))

	if err := l.persist(ctx); err != nil {
		l.logger.Warn("borrow recorded in memory only", "book_id", book.ID, "error", err)
		return rec, domainerrors.PersistenceUnavailable(err, "borrow could not be saved")
	}

	l.logger.Info("book borrowed", "book_id", book.ID, "title", book.Title, "borrowed_date", rec.BorrowedDate)
	return rec, nil
}

// persist writes the full ledger. Caller holds l.mu.
func (l *Ledger) persist(ctx context.Context) error {
	data, err := codec.Marshal(l.records)
	if err != nil {
		return err
	}
	return l.kv.Set(ctx, l.key, data)
}

// History returns every record in borrow order. The slice is a copy.
func (l *Ledger) History() []domain.BorrowRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.BorrowRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len is the number of borrowed books.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
