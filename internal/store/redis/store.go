// Package redis keeps ledger slots in Redis.
//
// It gives a single server process durable storage outside its own data
// directory. The ledger rewrites the whole slot from memory on each borrow,
// so two processes writing the same key overwrite each other's records.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

const opTimeout = 3 * time.Second

// Store is a store.KV over Redis strings. Keys are namespaced with a prefix.
type Store struct {
	client *goredis.Client
	prefix string
	logger *slog.Logger
}

var _ store.KV = (*Store)(nil)

// Open connects to addr and verifies the connection with PING.
func Open(ctx context.Context, addr, password string, logger *slog.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	if logger != nil {
		logger.Info("Redis connected", "addr", addr)
	}
	return &Store{client: client, prefix: "bookshelf:", logger: logger}, nil
}

// Get returns the slot value or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

// Set writes the slot value with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
