package cache

import (
	"encoding/json"
	"time"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

// ExtractionCache stores validated extraction records so that re-running a
// batch does not pay for the same LLM call twice
type ExtractionCache struct {
	store Cache
	ttl   time.Duration
}

// NewExtractionCache wraps a byte cache. A zero ttl defers to the store's default.
func NewExtractionCache(store Cache, ttl time.Duration) *ExtractionCache {
	return &ExtractionCache{store: store, ttl: ttl}
}

// Get returns the cached record for a document. Entries that no longer pass
// validation are dropped and reported as misses.
func (c *ExtractionCache) Get(sourceURL, text string) (*model.Extraction, bool) {
	key := ExtractionKey(sourceURL, text)

	data, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}

	x, err := model.ParseExtraction(data)
	if err != nil {
		_ = c.store.Delete(key)
		return nil, false
	}
	return x, true
}

// Put caches a record for a document
func (c *ExtractionCache) Put(sourceURL, text string, x *model.Extraction) error {
	data, err := json.Marshal(x)
	if err != nil {
		return err
	}
	return c.store.Set(ExtractionKey(sourceURL, text), data, c.ttl)
}
