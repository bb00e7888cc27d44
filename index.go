// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

import (
	"github.com/kelindar/bitmap"
	"github.com/zeebo/xxh3"
)

// index is the per-column inverted index: a dictionary from the column's
// value domain to a compressed bitmap of row ids sharing that value. One
// flavor per TypeTag. Deletions never touch a posting; the bucket's
// tombstone set is subtracted at query time instead (see Bucket).
type index interface {
	// insert ensures a posting exists for v and adds id to it.
	insert(v Value, id uint32)
	// lookup returns the posting for v, or ok=false if v was never inserted.
	lookup(v Value) (bm bitmap.Bitmap, ok bool)
	// cardinality is the number of distinct keys ever seen (domain size,
	// not filtered by tombstones — see spec §9 on why this never shrinks).
	cardinality() int
}

// newIndexFor creates an empty index dictionary specialized to tag.
func newIndexFor(tag TypeTag) index {
	switch tag {
	case Uint:
		return &uintIndex{byValue: make(map[uint64]bitmap.Bitmap)}
	case Int:
		return &intIndex{byValue: make(map[int64]bitmap.Bitmap)}
	case Bool:
		return &boolIndex{}
	case BorrowedStr, OwnedStr:
		return &strIndex{buckets: make(map[uint64][]strEntry)}
	default:
		panic("oxide: unsupported column type tag")
	}
}

// lookupMatch resolves a non-wildcard Match against an index. Callers are
// expected to have already validated that the Match's tag agrees with the
// column (see validateFindMatches).
func lookupMatch(idx index, m Match) (bitmap.Bitmap, bool) {
	return idx.lookup(m.Value())
}

// cloneBitmap returns an independent copy of b, since postings stored in an
// index must never be mutated in place by query-time set algebra.
func cloneBitmap(b bitmap.Bitmap) bitmap.Bitmap {
	out := make(bitmap.Bitmap, len(b))
	copy(out, b)
	return out
}

// --------------------------- Uint ----------------------------

type uintIndex struct {
	byValue map[uint64]bitmap.Bitmap
}

func (x *uintIndex) insert(v Value, id uint32) {
	u, _ := v.Uint()
	bm := x.byValue[u]
	bm.Grow(id)
	bm.Set(id)
	x.byValue[u] = bm
}

func (x *uintIndex) lookup(v Value) (bitmap.Bitmap, bool) {
	u, _ := v.Uint()
	bm, ok := x.byValue[u]
	return bm, ok
}

func (x *uintIndex) cardinality() int { return len(x.byValue) }

// --------------------------- Int ----------------------------

type intIndex struct {
	byValue map[int64]bitmap.Bitmap
}

func (x *intIndex) insert(v Value, id uint32) {
	i, _ := v.Int()
	bm := x.byValue[i]
	bm.Grow(id)
	bm.Set(id)
	x.byValue[i] = bm
}

func (x *intIndex) lookup(v Value) (bitmap.Bitmap, bool) {
	i, _ := v.Int()
	bm, ok := x.byValue[i]
	return bm, ok
}

func (x *intIndex) cardinality() int { return len(x.byValue) }

// --------------------------- Bool ----------------------------

// boolIndex is specialized to its two-value domain rather than a map,
// since a dictionary over {true, false} is just two postings.
type boolIndex struct {
	t, f bitmap.Bitmap
}

func (x *boolIndex) insert(v Value, id uint32) {
	b, _ := v.Bool()
	if b {
		x.t.Grow(id)
		x.t.Set(id)
		return
	}
	x.f.Grow(id)
	x.f.Set(id)
}

func (x *boolIndex) lookup(v Value) (bitmap.Bitmap, bool) {
	b, _ := v.Bool()
	if b {
		return x.t, x.t != nil
	}
	return x.f, x.f != nil
}

func (x *boolIndex) cardinality() int {
	n := 0
	if x.t != nil {
		n++
	}
	if x.f != nil {
		n++
	}
	return n
}

// --------------------------- Str (Borrowed & Owned) ----------------------------

// strEntry is one hash bucket's dictionary entry: the retained key (to
// resolve hash collisions) and its posting.
type strEntry struct {
	key string
	bm  bitmap.Bitmap
}

// strIndex backs both BorrowedStr and OwnedStr columns. It hashes keys with
// xxh3 (a fast, non-cryptographic hasher, per spec §4.2) and resolves
// collisions with a short linear scan within the bucket, the same shape as
// the teacher's own hash-keyed registry (maps_test.go's atomicSet).
type strIndex struct {
	buckets map[uint64][]strEntry
}

func (x *strIndex) insert(v Value, id uint32) {
	s, _ := v.Str()
	h := xxh3.HashString(s)
	bucket := x.buckets[h]
	for i := range bucket {
		if bucket[i].key == s {
			bucket[i].bm.Grow(id)
			bucket[i].bm.Set(id)
			return
		}
	}

	var bm bitmap.Bitmap
	bm.Grow(id)
	bm.Set(id)
	x.buckets[h] = append(bucket, strEntry{key: s, bm: bm})
}

func (x *strIndex) lookup(v Value) (bitmap.Bitmap, bool) {
	s, _ := v.Str()
	h := xxh3.HashString(s)
	for _, e := range x.buckets[h] {
		if e.key == s {
			return e.bm, true
		}
	}
	return nil, false
}

func (x *strIndex) cardinality() int {
	n := 0
	for _, bucket := range x.buckets {
		n += len(bucket)
	}
	return n
}
