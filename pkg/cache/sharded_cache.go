package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

const numShards = 16

// ShardedQuoteCache keeps the latest bid/ask per symbol behind sharded locks
// so the feed goroutines and API readers never contend on a single mutex.
type ShardedQuoteCache struct {
	shards [numShards]*quoteShard
}

type quoteShard struct {
	mu    sync.RWMutex
	items map[string]quoteEntry
}

type quoteEntry struct {
	bid       float64
	ask       float64
	updatedAt time.Time
}

// QuoteSnapshot is the read-side view of a cached quote.
type QuoteSnapshot struct {
	Symbol string        `json:"symbol"`
	Bid    float64       `json:"bid"`
	Ask    float64       `json:"ask"`
	Age    time.Duration `json:"age_ns"`
}

// NewShardedQuoteCache creates a new sharded cache.
func NewShardedQuoteCache() *ShardedQuoteCache {
	c := &ShardedQuoteCache{}
	for i := 0; i < numShards; i++ {
		c.shards[i] = &quoteShard{
			items: make(map[string]quoteEntry),
		}
	}
	return c
}

// getShard returns the shard for the given key.
func (c *ShardedQuoteCache) getShard(key string) *quoteShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

// Set stores the latest bid/ask for a symbol.
func (c *ShardedQuoteCache) Set(symbol string, bid, ask float64) {
	shard := c.getShard(symbol)
	shard.mu.Lock()
	shard.items[symbol] = quoteEntry{
		bid:       bid,
		ask:       ask,
		updatedAt: time.Now(),
	}
	shard.mu.Unlock()
}

// Get retrieves the latest bid/ask for a symbol.
func (c *ShardedQuoteCache) Get(symbol string) (bid, ask float64, ok bool) {
	shard := c.getShard(symbol)
	shard.mu.RLock()
	entry, ok := shard.items[symbol]
	shard.mu.RUnlock()
	return entry.bid, entry.ask, ok
}

// GetWithAge retrieves the quote and its age.
func (c *ShardedQuoteCache) GetWithAge(symbol string) (QuoteSnapshot, bool) {
	shard := c.getShard(symbol)
	shard.mu.RLock()
	entry, ok := shard.items[symbol]
	shard.mu.RUnlock()
	if !ok {
		return QuoteSnapshot{}, false
	}
	return QuoteSnapshot{
		Symbol: symbol,
		Bid:    entry.bid,
		Ask:    entry.ask,
		Age:    time.Since(entry.updatedAt),
	}, true
}

// Delete removes a symbol from the cache.
func (c *ShardedQuoteCache) Delete(symbol string) {
	shard := c.getShard(symbol)
	shard.mu.Lock()
	delete(shard.items, symbol)
	shard.mu.Unlock()
}

// Len returns total items across all shards.
func (c *ShardedQuoteCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.items)
		shard.mu.RUnlock()
	}
	return total
}

// Cleanup removes entries older than maxAge.
func (c *ShardedQuoteCache) Cleanup(maxAge time.Duration) int {
	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for _, shard := range c.shards {
		shard.mu.Lock()
		for sym, entry := range shard.items {
			if entry.updatedAt.Before(cutoff) {
				delete(shard.items, sym)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

// GetAll returns all cached quotes (for debugging/admin).
func (c *ShardedQuoteCache) GetAll() map[string]QuoteSnapshot {
	result := make(map[string]QuoteSnapshot)
	for _, shard := range c.shards {
		shard.mu.RLock()
		for sym, entry := range shard.items {
			result[sym] = QuoteSnapshot{
				Symbol: sym,
				Bid:    entry.bid,
				Ask:    entry.ask,
				Age:    time.Since(entry.updatedAt),
			}
		}
		shard.mu.RUnlock()
	}
	return result
}

// CacheStats provides cache statistics.
type CacheStats struct {
	TotalItems  int            `json:"total_items"`
	ShardCounts [numShards]int `json:"shard_counts"`
	OldestAge   time.Duration  `json:"oldest_age"`
}

// Stats returns cache statistics.
func (c *ShardedQuoteCache) Stats() CacheStats {
	stats := CacheStats{}
	var oldest time.Time

	for i, shard := range c.shards {
		shard.mu.RLock()
		stats.ShardCounts[i] = len(shard.items)
		stats.TotalItems += len(shard.items)
		for _, entry := range shard.items {
			if oldest.IsZero() || entry.updatedAt.Before(oldest) {
				oldest = entry.updatedAt
			}
		}
		shard.mu.RUnlock()
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	return stats
}
