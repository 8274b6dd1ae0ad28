package cache

import (
	"context"
	"sync/atomic"
	"time"

	"veloce/internal/models"

	"github.com/rs/zerolog"
)

// FailoverCatalog serves from a primary cache and drops to the fallback when
// the primary fails, retrying the primary after a minute.
type FailoverCatalog struct {
	primary   Catalog
	fallback  Catalog
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of last failed primary attempt
}

func NewFailoverCatalog(primary, fallback Catalog, logger *zerolog.Logger) *FailoverCatalog {
	return &FailoverCatalog{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverCatalog) Get(ctx context.Context) ([]models.Car, bool, error) {
	if !c.isDown.Load() {
		cars, ok, err := c.primary.Get(ctx)
		if err == nil {
			return cars, ok, nil
		}
		c.markDown(err)
	}

	// Try to recover after 1 minute.
	if c.isDown.Load() && time.Since(time.Unix(0, c.lastCheck.Load())) > time.Minute {
		cars, ok, err := c.primary.Get(ctx)
		if err == nil {
			c.isDown.Store(false)
			return cars, ok, nil
		}
		c.lastCheck.Store(time.Now().UnixNano())
	}

	return c.fallback.Get(ctx)
}

func (c *FailoverCatalog) Set(ctx context.Context, cars []models.Car) error {
	// The fallback is always kept warm so a failover never serves stale data
	// older than the primary's.
	_ = c.fallback.Set(ctx, cars)

	if !c.isDown.Load() {
		err := c.primary.Set(ctx, cars)
		if err == nil {
			return nil
		}
		c.markDown(err)
	}
	return nil
}

func (c *FailoverCatalog) Invalidate(ctx context.Context) error {
	// Both sides drop the snapshot regardless of primary health.
	_ = c.fallback.Invalidate(ctx)

	if !c.isDown.Load() {
		err := c.primary.Invalidate(ctx)
		if err == nil {
			return nil
		}
		c.markDown(err)
	}
	return nil
}

func (c *FailoverCatalog) markDown(err error) {
	c.logger.Error().Err(err).Msg("Primary catalog cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().UnixNano())
}
