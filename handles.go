// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

// ReadHandle is a short-lived, read-only view onto one bucket, valid only
// for the duration of the callback passed to Cache.WithBucket. It must not
// be retained past that callback.
type ReadHandle struct {
	bucket *Bucket
}

// Find runs a flat-match query: matches must have one entry per column,
// each either a concrete equality matcher or the Any wildcard, and at
// least one matcher must be non-wildcard.
func (h ReadHandle) Find(matches []Match) ([]Row, error) {
	return h.bucket.find(matches)
}

// FindByPattern evaluates a boolean-composed Pattern tree and returns the
// matching rows.
func (h ReadHandle) FindByPattern(p Pattern) ([]Row, error) {
	return h.bucket.findByPattern(p)
}

// GetColumnRef issues a capability for column i, for use in a Pattern.
func (h ReadHandle) GetColumnRef(i int) (ColumnRef, bool) {
	return h.bucket.getColumnRef(i)
}

// RowCount returns the number of live (non-tombstoned) rows.
func (h ReadHandle) RowCount() uint64 {
	return h.bucket.rowCount()
}

// Stats snapshots the bucket's counters and per-column index cardinality.
func (h ReadHandle) Stats(name string) BucketStats {
	return h.bucket.stats(name)
}

// WriteHandle is a short-lived, exclusive view onto one bucket, valid only
// for the duration of the callback passed to Cache.WithBucketMut. It must
// not be retained past that callback. It embeds every ReadHandle
// operation in addition to the mutating ones.
type WriteHandle struct {
	ReadHandle
}

// Insert appends row to the bucket. The row must have one value per
// column, each agreeing with that column's declared type.
func (h WriteHandle) Insert(row []Value) error {
	return h.bucket.insert(row)
}

// InsertIfAbsent inserts row only if no live row already equals it
// column-for-column, and reports whether it actually inserted.
func (h WriteHandle) InsertIfAbsent(row []Value) (inserted bool, err error) {
	return h.bucket.insertIfAbsent(row)
}

// Delete tombstones every row matching the flat match vector and returns
// how many rows were newly tombstoned.
func (h WriteHandle) Delete(matches []Match) (int, error) {
	return h.bucket.delete(matches)
}

// DeleteByPattern tombstones every row matching a Pattern tree and returns
// how many rows were newly tombstoned.
func (h WriteHandle) DeleteByPattern(p Pattern) (int, error) {
	return h.bucket.deleteByPattern(p)
}
