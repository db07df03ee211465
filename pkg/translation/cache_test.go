package translation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "cat_The cat sat._true_1",
		CacheKey(Request{SelectedText: "cat", Context: "The cat sat.", IsWord: true, WordIndex: intPtr(1)}))
	assert.Equal(t, "the cat__false_0",
		CacheKey(Request{SelectedText: "the cat"}))
}

func TestResultCache_EvictsOldestInserted(t *testing.T) {
	c := NewResultCache(50)

	for i := 0; i < 50; i++ {
		assert.False(t, c.Add(fmt.Sprintf("k%d", i), []Result{{ServiceID: "openai"}}))
	}
	require.Equal(t, 50, c.Len())

	// 读取不改变淘汰顺序
	_, ok := c.Get("k0")
	require.True(t, ok)

	assert.True(t, c.Add("k50", []Result{{ServiceID: "openai"}}))
	assert.Equal(t, 50, c.Len())

	_, ok = c.Get("k0")
	assert.False(t, ok)
	for i := 1; i <= 50; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d", i)
	}

	keys := c.keys()
	assert.Equal(t, "k1", keys[0])
	assert.Equal(t, "k50", keys[len(keys)-1])
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestResultCache_GetReturnsCopy(t *testing.T) {
	c := NewResultCache(0)
	assert.Equal(t, int64(DefaultCacheSize), c.Stats().Capacity)

	c.Add("k", []Result{{ServiceID: "openai", Translation: "a"}})
	got, ok := c.Get("k")
	require.True(t, ok)
	got[0].Translation = "mutated"

	again, _ := c.Get("k")
	assert.Equal(t, "a", again[0].Translation)
}

func TestResultCache_PurgeAndStats(t *testing.T) {
	c := NewResultCache(3)
	c.Add("a", nil)
	c.Add("b", nil)

	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Size)
	assert.Equal(t, int64(3), stats.Capacity)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Stats().Evictions)
}
