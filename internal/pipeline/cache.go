package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/microseq-dashboard/internal/domain"
	"github.com/couchcryptid/microseq-dashboard/internal/observability"
)

// Builder produces a fresh payload.
type Builder interface {
	Build(ctx context.Context) (*domain.Payload, error)
}

// Cache holds the marshaled payload of the most recent successful build.
// It starts empty, populates on first use, and re-builds once an entry is
// older than the TTL. At most one build is in flight at a time; concurrent
// callers share its result. A TTL of zero keeps an entry until Invalidate.
type Cache struct {
	builder Builder
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	group singleflight.Group

	mu      sync.RWMutex
	data    []byte
	builtAt time.Time
}

// NewCache creates an empty payload cache.
func NewCache(builder Builder, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *Cache {
	return &Cache{
		builder: builder,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// Get returns the cached payload JSON, building it first when the cache is
// empty or stale. A build failure leaves any previous entry untouched, but
// Get still reports the failure so the boundary can fall back.
func (c *Cache) Get(ctx context.Context) ([]byte, error) {
	if data, ok := c.fresh(); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return data, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do("payload", func() (any, error) {
		// A concurrent caller may have refreshed the entry while this one
		// waited on the flight.
		if data, ok := c.fresh(); ok {
			return data, nil
		}

		payload, err := c.builder.Build(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}

		c.mu.Lock()
		c.data = data
		c.builtAt = c.clock.Now()
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate drops the cached entry so the next Get rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.builtAt = time.Time{}
	c.mu.Unlock()
}

func (c *Cache) fresh() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.data == nil {
		return nil, false
	}
	if c.ttl > 0 && c.clock.Since(c.builtAt) >= c.ttl {
		return nil, false
	}
	return c.data, true
}
