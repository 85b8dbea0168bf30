// Package store persists small named slots of bytes.
//
// The borrow ledger keeps its whole state in one slot. Badger is the default
// backend; sqlite and redis live in subpackages and Memory serves tests and
// ephemeral runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned by Get when the slot has never been written.
var ErrNotFound = errors.New("store: slot not found")

// KV is the get/set slot store the ledger persists into.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// EventEmitter is the interface for emitting SSE events.
// Components use this to broadcast changes without depending on the SSE manager.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// Badger is a KV backed by a Badger database directory.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a Badger database at path.
// Writes are synced so a borrow survives a crash right after it is acknowledged.
func OpenBadger(path string, logger *slog.Logger) (*Badger, error) {
	return openBadger(badger.DefaultOptions(path), logger)
}

// OpenBadgerInMemory opens a Badger database that never touches disk.
func OpenBadgerInMemory(logger *slog.Logger) (*Badger, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true), logger)
}

// OpenBadgerReadOnly opens an existing directory without taking the write lock.
func OpenBadgerReadOnly(path string, logger *slog.Logger) (*Badger, error) {
	return openBadger(badger.DefaultOptions(path).WithReadOnly(true), logger)
}

func openBadger(opts badger.Options, logger *slog.Logger) (*Badger, error) {
	opts.Logger = nil
	if !opts.InMemory && !opts.ReadOnly {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened", "path", opts.Dir, "in_memory", opts.InMemory, "read_only", opts.ReadOnly)
	}
	return &Badger{db: db, logger: logger}, nil
}

// Get returns the slot value or ErrNotFound.
func (b *Badger) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %q: %w", key, err)
	}
	return out, nil
}

// Set replaces the slot value.
func (b *Badger) Set(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger set %q: %w", key, err)
	}
	return nil
}

// Keys lists every slot name. Used by the inspection CLI.
func (b *Badger) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Close gracefully closes the database.
func (b *Badger) Close() error {
	if b.logger != nil {
		b.logger.Info("Closing badger database")
	}
	return b.db.Close()
}
