package cache

import (
	"context"
	"sync"
	"time"

	"veloce/internal/models"
)

// Catalog caches the full car listing between mutations. A miss is a normal
// result, not an error; callers fall through to the store.
type Catalog interface {
	Get(ctx context.Context) ([]models.Car, bool, error)
	Set(ctx context.Context, cars []models.Car) error
	Invalidate(ctx context.Context) error
}

type MemoryCatalog struct {
	mu        sync.RWMutex
	cars      []models.Car
	expiresAt time.Time
	ttl       time.Duration
}

func NewMemoryCatalog(ttl time.Duration) *MemoryCatalog {
	return &MemoryCatalog{ttl: ttl}
}

func (c *MemoryCatalog) Get(ctx context.Context) ([]models.Car, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cars == nil || time.Now().After(c.expiresAt) {
		return nil, false, nil
	}
	out := make([]models.Car, len(c.cars))
	copy(out, c.cars)
	return out, true, nil
}

func (c *MemoryCatalog) Set(ctx context.Context, cars []models.Car) error {
	snapshot := make([]models.Car, len(cars))
	copy(snapshot, cars)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cars = snapshot
	c.expiresAt = time.Now().Add(c.ttl)
	return nil
}

func (c *MemoryCatalog) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cars = nil
	return nil
}
