// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUintIndex(t *testing.T) {
	idx := newIndexFor(Uint)
	idx.insert(NewUint(10), 0)
	idx.insert(NewUint(10), 1)
	idx.insert(NewUint(20), 2)

	bm, ok := idx.lookup(NewUint(10))
	assert.True(t, ok)
	assert.Equal(t, 2, bm.Count())
	assert.True(t, bm.Contains(0))
	assert.True(t, bm.Contains(1))

	_, ok = idx.lookup(NewUint(99))
	assert.False(t, ok)

	assert.Equal(t, 2, idx.cardinality())
}

func TestIntIndex(t *testing.T) {
	idx := newIndexFor(Int)
	idx.insert(NewInt(-5), 0)
	idx.insert(NewInt(-5), 1)

	bm, ok := idx.lookup(NewInt(-5))
	assert.True(t, ok)
	assert.Equal(t, 2, bm.Count())
	assert.Equal(t, 1, idx.cardinality())
}

func TestBoolIndex(t *testing.T) {
	idx := newIndexFor(Bool)
	idx.insert(NewBool(true), 0)
	idx.insert(NewBool(false), 1)
	idx.insert(NewBool(true), 2)

	bmTrue, ok := idx.lookup(NewBool(true))
	assert.True(t, ok)
	assert.Equal(t, 2, bmTrue.Count())

	bmFalse, ok := idx.lookup(NewBool(false))
	assert.True(t, ok)
	assert.Equal(t, 1, bmFalse.Count())

	assert.Equal(t, 2, idx.cardinality())
}

func TestStrIndexCollisionSafe(t *testing.T) {
	idx := newIndexFor(OwnedStr)
	idx.insert(NewOwnedStr("alice"), 0)
	idx.insert(NewOwnedStr("bob"), 1)
	idx.insert(NewOwnedStr("alice"), 2)

	bm, ok := idx.lookup(NewOwnedStr("alice"))
	assert.True(t, ok)
	assert.Equal(t, 2, bm.Count())

	bm, ok = idx.lookup(NewOwnedStr("bob"))
	assert.True(t, ok)
	assert.Equal(t, 1, bm.Count())

	_, ok = idx.lookup(NewOwnedStr("carol"))
	assert.False(t, ok)

	assert.Equal(t, 2, idx.cardinality())
}

func TestCloneBitmapIndependence(t *testing.T) {
	idx := newIndexFor(Uint)
	idx.insert(NewUint(1), 0)

	bm, ok := idx.lookup(NewUint(1))
	assert.True(t, ok)

	clone := cloneBitmap(bm)
	clone.Grow(5)
	clone.Set(5)

	bm2, _ := idx.lookup(NewUint(1))
	assert.False(t, bm2.Contains(5), "mutating a clone must not affect the stored posting")
}
