// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kv-oxide/oxide/pkg/opt"
)

// Cache is a registry of named buckets. It is the single entry point for
// creating, dropping, and accessing buckets; there is no way to reach a
// Bucket except through a Cache.
//
// All access is mediated through WithBucket/WithBucketMut, which hand the
// callback a scoped handle and hold the cache's own lock for the
// callback's whole duration. A write callback holds the cache exclusively;
// read callbacks may run concurrently with each other but never alongside
// a write. This is the coarse, whole-cache mutex the design sanctions in
// place of per-bucket fine-grained locking (mirrors the teacher's
// Collection.lock, one level up).
type Cache struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
	opt     opt.Cache
}

// NewCache creates an empty cache. By default, buckets it creates
// preallocate nothing; pass opt.WithBucketCapacityHint to size new
// buckets' row arenas up front.
func NewCache(opts ...func(*opt.Cache)) *Cache {
	return &Cache{
		buckets: make(map[string]*Bucket),
		opt:     opt.Configure(opts...),
	}
}

// CreateBucket creates a bucket from builder's schema under builder's
// name. A bucket already registered under that name is replaced outright
// (see spec §9); ErrNoColumn propagates if the schema is empty.
func (c *Cache) CreateBucket(builder *BucketBuilder) error {
	b, err := newBucket(builder.columns, c.opt.BucketCapacityHint)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets[builder.name] = b
	return nil
}

// HasBucket reports whether a bucket is registered under name.
func (c *Cache) HasBucket(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.buckets[name]
	return ok
}

// DropBucket removes the bucket registered under name, if any. Dropping a
// name with no bucket is a silent no-op.
func (c *Cache) DropBucket(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buckets, name)
}

// WithBucket runs fn with a read-only view of the bucket registered under
// name, returning ErrInvalidBucket if no such bucket exists. The cache is
// held under a shared (read) lock for fn's whole duration, so fn must not
// call back into the cache.
func (c *Cache) WithBucket(name string, fn func(ReadHandle) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.buckets[name]
	if !ok {
		return ErrInvalidBucket
	}
	return fn(ReadHandle{bucket: b})
}

// WithBucketMut runs fn with an exclusive read-write view of the bucket
// registered under name, returning ErrInvalidBucket if no such bucket
// exists. The cache is held under its exclusive (write) lock for fn's
// whole duration, so fn must not call back into the cache.
func (c *Cache) WithBucketMut(name string, fn func(WriteHandle) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[name]
	if !ok {
		return ErrInvalidBucket
	}
	return fn(WriteHandle{ReadHandle{bucket: b}})
}

// Stats snapshots every registered bucket's counters, in name-sorted order
// for a stable rendering.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.buckets))
	for name := range c.buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	buckets := make([]BucketStats, 0, len(names))
	for _, name := range names {
		buckets = append(buckets, c.buckets[name].stats(name))
	}
	return CacheStats{Buckets: buckets}
}

// CacheStats is a snapshot of every registered bucket's counters, as
// returned by Cache.Stats.
type CacheStats struct {
	Buckets []BucketStats
}

// String renders a human-readable stats table. No format-stability
// guarantee, per spec §6.
func (s CacheStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cache: %d bucket(s)\n", len(s.Buckets))
	for _, bs := range s.Buckets {
		b.WriteString(bs.String())
	}
	return b.String()
}
