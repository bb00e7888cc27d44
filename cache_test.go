// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

import (
	"testing"

	"github.com/kv-oxide/oxide/pkg/opt"
	"github.com/stretchr/testify/assert"
)

func TestCacheWithBucketCapacityHint(t *testing.T) {
	c := NewCache(opt.WithBucketCapacityHint(128))
	assert.NoError(t, c.CreateBucket(NewBucketBuilder("x").AddColumn(Uint)))
	assert.NoError(t, c.WithBucketMut("x", func(w WriteHandle) error {
		return w.Insert([]Value{NewUint(1)})
	}))
	assert.NoError(t, c.WithBucket("x", func(r ReadHandle) error {
		assert.Equal(t, uint64(1), r.RowCount())
		return nil
	}))
}

func TestCacheCreateHasDropBucket(t *testing.T) {
	c := NewCache()
	assert.False(t, c.HasBucket("users"))

	builder := NewBucketBuilder("users").AddColumn(Uint).AddColumn(OwnedStr)
	assert.NoError(t, c.CreateBucket(builder))
	assert.True(t, c.HasBucket("users"))

	c.DropBucket("users")
	assert.False(t, c.HasBucket("users"))

	// Dropping an absent bucket is a silent no-op.
	c.DropBucket("users")
}

func TestCacheCreateBucketNoColumn(t *testing.T) {
	c := NewCache()
	builder := NewBucketBuilder("empty")
	err := c.CreateBucket(builder)
	assert.ErrorIs(t, err, ErrNoColumn)
	assert.False(t, c.HasBucket("empty"))
}

func TestCacheCreateBucketReplacesOnCollision(t *testing.T) {
	c := NewCache()
	assert.NoError(t, c.CreateBucket(NewBucketBuilder("x").AddColumn(Uint)))
	assert.NoError(t, c.WithBucketMut("x", func(w WriteHandle) error {
		return w.Insert([]Value{NewUint(1)})
	}))

	// Re-creating under the same name replaces the bucket outright.
	assert.NoError(t, c.CreateBucket(NewBucketBuilder("x").AddColumn(OwnedStr)))
	assert.NoError(t, c.WithBucket("x", func(r ReadHandle) error {
		assert.Equal(t, uint64(0), r.RowCount())
		return nil
	}))
}

func TestCacheWithBucketInvalidName(t *testing.T) {
	c := NewCache()
	err := c.WithBucket("missing", func(r ReadHandle) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidBucket)

	err = c.WithBucketMut("missing", func(w WriteHandle) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidBucket)
}

func TestCacheWriteThenRead(t *testing.T) {
	c := NewCache()
	assert.NoError(t, c.CreateBucket(NewBucketBuilder("users").AddColumn(Uint).AddColumn(OwnedStr)))

	assert.NoError(t, c.WithBucketMut("users", func(w WriteHandle) error {
		return w.Insert([]Value{NewUint(1), NewOwnedStr("alice")})
	}))

	assert.NoError(t, c.WithBucket("users", func(r ReadHandle) error {
		rows, err := r.Find([]Match{MatchUint(1), AnyMatch()})
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		return nil
	}))
}

func TestCacheStatsAcrossBuckets(t *testing.T) {
	c := NewCache()
	assert.NoError(t, c.CreateBucket(NewBucketBuilder("a").AddColumn(Uint)))
	assert.NoError(t, c.CreateBucket(NewBucketBuilder("b").AddColumn(OwnedStr)))

	assert.NoError(t, c.WithBucketMut("a", func(w WriteHandle) error {
		return w.Insert([]Value{NewUint(1)})
	}))

	stats := c.Stats()
	assert.Len(t, stats.Buckets, 2)
	assert.Equal(t, "a", stats.Buckets[0].Name)
	assert.Equal(t, "b", stats.Buckets[1].Name)
	assert.Equal(t, uint64(1), stats.Buckets[0].Inserts)
	assert.NotEmpty(t, stats.String())
}
