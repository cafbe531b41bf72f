package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_LocksAfterMaxFails(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(DefaultPolicy)
	m.now = func() time.Time { return now }
	ctx := context.Background()
	k := NewKey("admin", "10.0.0.1")
	other := NewKey("admin", "10.0.0.2")

	for i := 1; i < DefaultPolicy.MaxFails; i++ {
		blocked, _, err := m.Failure(ctx, k)
		require.NoError(t, err)
		require.False(t, blocked, "attempt %d", i)
	}
	blocked, wait, err := m.Failure(ctx, k)
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, DefaultPolicy.BlockFor, wait)

	ok, _, _ := m.Allow(ctx, k)
	require.False(t, ok)
	ok, _, _ = m.Allow(ctx, other)
	require.True(t, ok, "other addresses are not affected")

	now = now.Add(DefaultPolicy.BlockFor + time.Second)
	ok, _, _ = m.Allow(ctx, k)
	require.True(t, ok, "block expires")
}

func TestMemory_WindowResetsAndSuccessClears(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(DefaultPolicy)
	m.now = func() time.Time { return now }
	ctx := context.Background()
	k := NewKey("u", "ip")

	for i := 0; i < DefaultPolicy.MaxFails-1; i++ {
		_, _, _ = m.Failure(ctx, k)
	}
	now = now.Add(DefaultPolicy.Window + time.Minute)
	blocked, _, _ := m.Failure(ctx, k)
	require.False(t, blocked, "old failures fall out of the window")

	require.NoError(t, m.Success(ctx, k))
	for i := 0; i < DefaultPolicy.MaxFails-1; i++ {
		blocked, _, _ = m.Failure(ctx, k)
	}
	require.False(t, blocked)
}

func TestNewKey_HashesAddress(t *testing.T) {
	k := NewKey("u", "10.0.0.1")
	require.Len(t, k.IPHash, 32)
	require.NotContains(t, string(k.IPHash), "10.0.0.1")
	require.Equal(t, k, NewKey("u", "10.0.0.1"))
}
