package db

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// entryTTL bounds how long a superseded entry lingers when eviction does not
// reach it first. Keys carry the day, so nothing is read after a day anyway.
const entryTTL = 24 * time.Hour

// Cache holds derived per-user analytics. Every key embeds the user's
// generation; InvalidateUser bumps it, so a value computed before a write can
// never be served after it, even if its Set lands late. Entries under old
// generations are left for ristretto to evict or expire.
type Cache struct {
	store *ristretto.Cache

	mu   sync.Mutex
	gens map[int64]uint64
}

func NewCache(maxItems int64) (*Cache, error) {
	if maxItems <= 0 {
		maxItems = 10000
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // number of keys to track frequency of
		MaxCost:     maxItems,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &Cache{
		store: store,
		gens:  make(map[int64]uint64),
	}, nil
}

// Key builds the cache key for userID at its current generation.
func (c *Cache) Key(userID int64, parts ...string) string {
	c.mu.Lock()
	gen := c.gens[userID]
	c.mu.Unlock()
	return "u" + strconv.FormatInt(userID, 10) + ":g" + strconv.FormatUint(gen, 10) + ":" + strings.Join(parts, ":")
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *Cache) Set(key string, value interface{}) {
	c.store.SetWithTTL(key, value, 1, entryTTL)
}

func (c *Cache) InvalidateUser(userID int64) {
	c.mu.Lock()
	c.gens[userID]++
	c.mu.Unlock()
}

// Wait blocks until buffered writes are applied.
func (c *Cache) Wait() {
	c.store.Wait()
}

func (c *Cache) Close() {
	c.store.Close()
}
