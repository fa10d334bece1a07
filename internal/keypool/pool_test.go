package keypool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextSkipsKeysInCooldown(t *testing.T) {
	p := New()
	p.Add("key-a-12345678", 5)
	p.Add("key-b-12345678", 5)

	k, ok := p.Next()
	require.True(t, ok)
	p.MarkRateLimited(k, time.Minute)

	k2, ok := p.Next()
	require.True(t, ok)
	require.NotEqual(t, k.Value(), k2.Value())
}

func TestNextReturnsFalseWhenAllCoolingDown(t *testing.T) {
	p := New()
	p.Add("only-key-12345", 1)
	k, ok := p.Next()
	require.True(t, ok)
	p.MarkRateLimited(k, time.Minute)

	_, ok = p.Next()
	require.False(t, ok)
}

func TestMarkErrorInvalidKeyRemovesKeyFromPool(t *testing.T) {
	p := New()
	p.Add("bad-key-1234567", 1)
	p.Add("good-key-123456", 1)
	require.Equal(t, 2, p.Len())

	k, ok := p.Next()
	require.True(t, ok)
	p.MarkError(k, ErrInvalidKey)
	require.Equal(t, 1, p.Len())
}

func TestStatsRedactsKeyToPrefix(t *testing.T) {
	p := New()
	p.Add("sk-or-v1-abcdefghijklmnop", 1)
	stats := p.Stats()
	require.Len(t, stats, 1)
	require.NotContains(t, stats[0].Prefix, "abcdefghijklmnop")
	require.Contains(t, stats[0].Prefix, "…")
}

func TestHigherPriorityKeyServedMoreOftenInWindow(t *testing.T) {
	p := New()
	p.Add("low-priority-key", 1)
	p.Add("high-priority-key", 10)

	counts := map[string]int{}
	for i := 0; i < 4; i++ {
		k, ok := p.Next()
		require.True(t, ok)
		counts[k.Value()]++
	}
	require.GreaterOrEqual(t, counts["high-priority-key"], counts["low-priority-key"])
}
