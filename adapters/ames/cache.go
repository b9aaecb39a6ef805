package ames

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"amesdash/domain/housing"
	"amesdash/ports"
)

// CachedSource memoizes the first successful load for the life of the
// process. Concurrent first loads collapse into a single read of the
// underlying source. Failures are never cached, so a missing file can be
// put in place and the next request succeeds without a restart.
type CachedSource struct {
	source ports.DatasetSource
	group  singleflight.Group

	mu    sync.RWMutex
	frame *housing.Frame
}

// NewCachedSource wraps a dataset source with process-lifetime caching
func NewCachedSource(source ports.DatasetSource) *CachedSource {
	return &CachedSource{source: source}
}

// Load implements ports.DatasetSource
func (c *CachedSource) Load(ctx context.Context) (*housing.Frame, error) {
	c.mu.RLock()
	frame := c.frame
	c.mu.RUnlock()
	if frame != nil {
		return frame, nil
	}

	v, err, _ := c.group.Do("dataset", func() (interface{}, error) {
		// A queued caller may find the cache already populated
		c.mu.RLock()
		cached := c.frame
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.frame = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*housing.Frame), nil
}

// Loaded reports whether a frame is already cached
func (c *CachedSource) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame != nil
}
