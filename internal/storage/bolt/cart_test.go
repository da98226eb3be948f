package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *CartStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "carts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCartStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	payload := []byte(`[{"productId":"p1","quantity":1,"price":4.5}]`)
	require.NoError(t, s.Save(ctx, "s1", payload))

	got, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCartStore_LoadAbsentSession(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	got, err := s.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCartStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Save(ctx, "s1", []byte(`[]`)))
	require.NoError(t, s.Delete(ctx, "s1"))

	got, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is fine.
	require.NoError(t, s.Delete(ctx, "s1"))
}

func TestCartStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "carts.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "s1", []byte(`[1]`)))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)
}
