package wellness

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheKey deduplicates near-identical assessments. Only the rounded hours
// and the category take part; heart rate, steps and timestamps do not.
type CacheKey struct {
	Category string  `json:"category"`
	Screen   float64 `json:"screen"`
	Sleep    float64 `json:"sleep"`
	Work     float64 `json:"work"`
}

// NewCacheKey derives the key for an assessment, rounding hours to 0.1.
func NewCacheKey(a Assessment) CacheKey {
	return CacheKey{
		Category: a.Category,
		Screen:   roundTenth(a.Screen),
		Sleep:    roundTenth(a.Sleep),
		Work:     roundTenth(a.Work),
	}
}

// String renders the key as JSON with sorted field names.
func (k CacheKey) String() string {
	b, err := json.Marshal(k)
	if err != nil {
		return fmt.Sprintf("%s|%g|%g|%g", k.Category, k.Screen, k.Sleep, k.Work)
	}
	return string(b)
}

// roundTenth rounds the exact binary value of v to one decimal, ties to
// even: 0.25 becomes 0.2 and 0.35 (stored as 0.3499...) becomes 0.3.
func roundTenth(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

type cacheEntry struct {
	result     TipsResult
	insertedAt time.Time
}

// CacheStats is the body of GET /cache/stats.
type CacheStats struct {
	TotalEntries    int    `json:"total_entries"`
	ValidEntries    int    `json:"valid_entries"`
	HitRate         string `json:"cache_hit_rate"`
	DurationSeconds int    `json:"cache_duration_seconds"`
	MaxEntries      int    `json:"max_entries"`
}

// Cache stores generated tips per CacheKey. Entries go stale after ttl but
// are only replaced when the same key is requested again; the LRU bound
// evicts the least recently used key once size is reached.
type Cache struct {
	entries *lru.Cache[CacheKey, cacheEntry]
	ttl     time.Duration
	size    int
	now     func() time.Time
}

// NewCache creates a cache holding at most size entries.
func NewCache(size int, ttl time.Duration) (*Cache, error) {
	entries, err := lru.New[CacheKey, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create tips cache: %w", err)
	}
	return &Cache{
		entries: entries,
		ttl:     ttl,
		size:    size,
		now:     time.Now,
	}, nil
}

func (c *Cache) fresh(e cacheEntry, now time.Time) bool {
	return now.Sub(e.insertedAt) < c.ttl
}

// Get returns the cached result for key when it is not stale, with
// generated_at set to now. The stored entry is never written back, so a
// concurrent Put of a regenerated result is not overwritten by a hit.
func (c *Cache) Get(key CacheKey) (TipsResult, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return TipsResult{}, false
	}

	now := c.now()
	if !c.fresh(entry, now) {
		return TipsResult{}, false
	}

	result := cloneResult(entry.result)
	result.GeneratedAt = now
	return result, true
}

// Put stores result under key, replacing any previous entry.
func (c *Cache) Put(key CacheKey, result TipsResult) {
	c.entries.Add(key, cacheEntry{result: cloneResult(result), insertedAt: c.now()})
}

// Len returns the number of entries, stale ones included.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats counts total and non-stale entries.
func (c *Cache) Stats() CacheStats {
	now := c.now()
	values := c.entries.Values()

	valid := 0
	for _, e := range values {
		if c.fresh(e, now) {
			valid++
		}
	}

	total := len(values)
	rate := float64(valid) / float64(max(total, 1)) * 100

	return CacheStats{
		TotalEntries:    total,
		ValidEntries:    valid,
		HitRate:         fmt.Sprintf("%.1f%%", rate),
		DurationSeconds: int(c.ttl.Seconds()),
		MaxEntries:      c.size,
	}
}

func cloneResult(r TipsResult) TipsResult {
	r.Tips = append([]string(nil), r.Tips...)
	return r
}
