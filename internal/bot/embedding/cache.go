package embedding

import (
	"context"
	"log/slog"
	"sync"
)

// Cache maps keyword strings to precomputed L2-normalized embedding vectors.
// Entries are created the first time a keyword is embedded and are never
// invalidated during the process lifetime (the keyword set is static).
//
// The cache owns its embedder and a readiness hook. When the embedding
// capability is degraded, Ensure is a no-op and the cache stays as it is —
// possibly empty. Callers must tolerate a sparse or empty cache.
type Cache struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	embedder Embedder
	ready    func() bool
	logger   *slog.Logger
}

// NewCache creates a Cache backed by embedder. The ready hook reports
// whether the embedding capability is currently usable; when nil the
// capability is assumed ready. If logger is nil, the default slog logger
// is used.
func NewCache(embedder Embedder, ready func() bool, logger *slog.Logger) *Cache {
	if ready == nil {
		ready = func() bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		vectors:  make(map[string][]float32),
		embedder: embedder,
		ready:    ready,
		logger:   logger,
	}
}

// Ready reports whether the embedding capability backing this cache is
// currently usable.
func (c *Cache) Ready() bool {
	return c.ready()
}

// Ensure embeds every keyword not already present and stores its
// L2-normalized vector keyed by the exact keyword string. Idempotent:
// already-cached keywords are skipped. A no-op when the capability is not
// ready. Individual embed failures are logged and skipped; a sparse cache
// degrades semantic coverage but never fails the call.
func (c *Cache) Ensure(ctx context.Context, keywords []string) {
	if !c.ready() {
		return
	}

	for _, keyword := range keywords {
		if c.has(keyword) {
			continue
		}

		vec, err := c.embedder.Embed(ctx, keyword)
		if err != nil {
			c.logger.Warn("embedding: failed to cache keyword vector",
				"keyword", keyword, "err", err)
			continue
		}
		if vec == nil {
			continue
		}

		c.put(keyword, L2Normalize(vec))
	}
}

// Get returns the cached vector for keyword, or false when absent.
func (c *Cache) Get(keyword string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vec, ok := c.vectors[keyword]
	return vec, ok
}

// Len returns the number of cached keyword vectors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vectors)
}

func (c *Cache) has(keyword string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.vectors[keyword]
	return ok
}

func (c *Cache) put(keyword string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[keyword] = vec
}
