// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package opt

// --------------------------- Cache ----------------------------

// Cache represents tunables for a cache of buckets.
type Cache struct {
	// BucketCapacityHint preallocates a new bucket's row arena to fit this
	// many rows before it must grow. Zero (the default) preallocates
	// nothing and lets the arena grow as inserts arrive.
	BucketCapacityHint int
}

// init sets the default behavior.
func (c *Cache) init() {
	c.BucketCapacityHint = 0
}

// WithBucketCapacityHint sets the row-count hint every bucket the cache
// subsequently creates preallocates its arena to.
func WithBucketCapacityHint(n int) func(*Cache) {
	return func(c *Cache) {
		c.BucketCapacityHint = n
	}
}

// --------------------------- Configuration ----------------------------

// Configure initializes and creates a new options structure.
func Configure[T any](opts ...func(*T)) T {
	options := new(T)

	// If options needs to be initialized, call the init() method
	var x any = options
	if v, ok := x.(interface {
		init()
	}); ok {
		v.init()
	}

	// Apply options provided
	for _, opt := range opts {
		opt(options)
	}
	return *options
}
