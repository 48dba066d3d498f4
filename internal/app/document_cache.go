package app

import (
	"context"
	"math/rand"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-runner/internal/docparse"
	"quiz-runner/internal/domain"
)

// DocumentCache parses quiz files and caches the typed result by path with a
// TTL, so the resume flow does not re-run the full ingestion pipeline for a
// file it just loaded. Concurrent loads of the same path collapse into one
// parse via singleflight.
type DocumentCache struct {
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedDocument
}

type cachedDocument struct {
	doc       domain.Document
	expiresAt time.Time
}

func NewDocumentCache(ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedDocument),
	}
}

// Load reads, parses, and normalizes the file at path. Parse and validation
// errors are returned verbatim; they are the author's to fix.
func (c *DocumentCache) Load(ctx context.Context, path string) (domain.Document, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[path]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.doc, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(path, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[path]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.doc, nil
		}
		c.mu.RUnlock()

		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Document{}, err
		}
		doc, err := docparse.ParseDocument(string(data))
		if err != nil {
			return domain.Document{}, err
		}

		c.mu.Lock()
		c.cache[path] = cachedDocument{doc: doc, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return result.(domain.Document), nil
}

// Invalidate drops one path, forcing the next Load to reparse.
func (c *DocumentCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.cache, path)
	c.mu.Unlock()
}

func (c *DocumentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
