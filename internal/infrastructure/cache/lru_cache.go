package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"partsource/internal/ports"
)

// LRUCache is a bounded in-process cache with a single expiry horizon.
// Entries evict on capacity or age, whichever hits first. The per-call ttl
// is accepted for interface compatibility but the cache-wide horizon wins;
// callers needing tighter expiry delete explicitly.
type LRUCache struct {
	lru *expirable.LRU[string, string]
}

var _ ports.Cache = (*LRUCache)(nil)

func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{lru: expirable.NewLRU[string, string](capacity, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, key string) (string, bool, error) {
	value, found := c.lru.Get(key)
	return value, found, nil
}

func (c *LRUCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}
