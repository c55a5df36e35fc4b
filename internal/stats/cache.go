package stats

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"tradejournal/internal/domain"
)

// maxCacheEntries bounds the memo map; the whole map is dropped when full
// rather than tracking recency, since a journal session only ever cycles
// through a handful of windows.
const maxCacheEntries = 32

// Cache memoizes Compute on a fingerprint of the trade collection plus the
// window parameters, avoiding redundant passes when the same snapshot is
// reported repeatedly. Safe for concurrent use. Cached reports share their
// backing slices; callers must treat them as read-only.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]Report
}

type cacheKey struct {
	fingerprint uint64
	windowDays  int
	day         int64 // Bucketing depends on the calendar day of "now"
}

// NewCache creates an empty report cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]Report)}
}

// Compute returns the memoized report for the trades/window pair, deriving
// and storing it on a miss.
func (c *Cache) Compute(trades []*domain.Trade, windowDays int, now time.Time) Report {
	key := cacheKey{
		fingerprint: fingerprint(trades),
		windowDays:  windowDays,
		day:         truncateDay(now, now.Location()).Unix(),
	}

	c.mu.Lock()
	if r, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return r
	}
	c.mu.Unlock()

	r := Compute(trades, windowDays, now)

	c.mu.Lock()
	if len(c.entries) >= maxCacheEntries {
		c.entries = make(map[cacheKey]Report)
	}
	c.entries[key] = r
	c.mu.Unlock()
	return r
}

// fingerprint hashes the fields a report depends on, so structurally equal
// snapshots hit the same entry regardless of slice identity.
func fingerprint(trades []*domain.Trade) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}

	write(uint64(len(trades)))
	for _, t := range trades {
		if t == nil {
			write(0)
			continue
		}
		write(uint64(t.ID))
		write(math.Float64bits(t.NetPnL))
		write(math.Float64bits(t.Commission))
		write(uint64(t.StatTime().Unix()))
		if t.IsClosed() {
			write(1)
		} else {
			write(0)
		}
		if t.MaxAdversePrice != nil {
			write(math.Float64bits(*t.MaxAdversePrice))
		}
		if t.MaxFavorablePrice != nil {
			write(math.Float64bits(*t.MaxFavorablePrice))
		}
	}
	return h.Sum64()
}
