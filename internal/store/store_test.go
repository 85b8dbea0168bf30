package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "borrowedBooks")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "borrowedBooks", []byte(`[{"id":1}]`)))
	got, err := kv.Get(ctx, "borrowedBooks")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))

	require.NoError(t, kv.Set(ctx, "borrowedBooks", []byte(`[]`)))
	got, err = kv.Get(ctx, "borrowedBooks")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	val := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", val))
	val[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestBadger_InMemory(t *testing.T) {
	b, err := OpenBadgerInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	exerciseKV(t, b)
}

func TestBadger_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "ledger")

	b, err := OpenBadger(dir, nil)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "borrowedBooks", []byte(`[{"id":3}]`)))
	require.NoError(t, b.Close())

	ro, err := OpenBadgerReadOnly(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ro.Close() })

	got, err := ro.Get(ctx, "borrowedBooks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":3}]`, string(got))

	keys, err := ro.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"borrowedBooks"}, keys)
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("dial tcp 127.0.0.1:1: connection refused")
	kv := Unavailable{Cause: cause}

	_, err := kv.Get(ctx, "borrowedBooks")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = kv.Set(ctx, "borrowedBooks", []byte(`[]`))
	require.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, kv.Close())
}
