package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned by every call on an Unavailable store.
var ErrUnavailable = errors.New("store: backend unavailable")

// Unavailable stands in for a backend that could not be opened.
// Reads and writes fail, so the ledger starts empty and borrows stay in memory.
type Unavailable struct {
	Cause error
}

var _ KV = Unavailable{}

// Get always fails.
func (u Unavailable) Get(_ context.Context, key string) ([]byte, error) {
	return nil, u.err("get", key)
}

// Set always fails.
func (u Unavailable) Set(_ context.Context, key string, _ []byte) error {
	return u.err("set", key)
}

// Close is a no-op.
func (u Unavailable) Close() error { return nil }

func (u Unavailable) err(op, key string) error {
	if u.Cause == nil {
		return fmt.Errorf("%s %s: %w", op, key, ErrUnavailable)
	}
	return fmt.Errorf("%s %s: %w: %w", op, key, ErrUnavailable, u.Cause)
}
