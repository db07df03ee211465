package translation

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize 默认缓存条目数
const DefaultCacheSize = 50

// CacheStats 缓存统计信息
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int64 `json:"size"`
	Capacity  int64 `json:"capacity"`
}

// ResultCache 按请求缓存完整的结果列表。
// 读取不更新顺序，因此淘汰顺序等同于插入顺序（FIFO）。
type ResultCache struct {
	entries  *lru.Cache[string, []Result]
	capacity int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewResultCache 创建缓存，size <= 0 时使用默认容量
func NewResultCache(size int) *ResultCache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	entries, err := lru.New[string, []Result](size)
	if err != nil {
		// 只有 size <= 0 时才会出错
		panic(err)
	}
	return &ResultCache{entries: entries, capacity: size}
}

// CacheKey 由选中文本、上下文、是否单词和单词位置组成，位置缺失时记为 0
func CacheKey(req Request) string {
	idx := 0
	if req.WordIndex != nil {
		idx = *req.WordIndex
	}
	return fmt.Sprintf("%s_%s_%t_%d", req.SelectedText, req.Context, req.IsWord, idx)
}

// Get 读取缓存，返回副本
func (c *ResultCache) Get(key string) ([]Result, bool) {
	results, ok := c.entries.Peek(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return append([]Result(nil), results...), true
}

// Add 写入缓存，超过容量时淘汰最早写入的条目。返回是否发生淘汰
func (c *ResultCache) Add(key string, results []Result) bool {
	evicted := c.entries.Add(key, append([]Result(nil), results...))
	if evicted {
		c.evictions.Add(1)
	}
	return evicted
}

// Purge 清空缓存
func (c *ResultCache) Purge() {
	c.entries.Purge()
}

// Len 当前条目数
func (c *ResultCache) Len() int {
	return c.entries.Len()
}

// keys 按从旧到新的顺序返回键
func (c *ResultCache) keys() []string {
	return c.entries.Keys()
}

// Stats 获取统计信息
func (c *ResultCache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      int64(c.entries.Len()),
		Capacity:  int64(c.capacity),
	}
}
