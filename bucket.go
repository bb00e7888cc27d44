// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kelindar/bitmap"
)

// BucketBuilder accumulates a column schema before a Bucket is created via
// Cache.CreateBucket. It is a value-building helper only; the bucket itself
// comes into existence inside the cache, not here.
type BucketBuilder struct {
	name    string
	columns []TypeTag
}

// NewBucketBuilder starts building a bucket schema under the given name.
func NewBucketBuilder(name string) *BucketBuilder {
	return &BucketBuilder{name: name}
}

// AddColumn appends one more column, in schema order, to the builder.
func (bb *BucketBuilder) AddColumn(tag TypeTag) *BucketBuilder {
	bb.columns = append(bb.columns, tag)
	return bb
}

// Bucket is a named, schema-bound typed row store with one inverted index
// per column. It enforces its schema, records rows, answers flat-match and
// pattern queries, and tombstones deletes rather than physically removing
// rows. A Bucket is exclusively owned by the Cache that holds it; all
// access runs through ReadHandle/WriteHandle acquired via Cache.WithBucket
// and Cache.WithBucketMut, which together provide the single-writer
// discipline spec'd for this type — see Cache for the locking story.
type Bucket struct {
	token   Token
	columns []TypeTag
	indices []index
	values  *valueStore
	deleted bitmap.Bitmap
	inserts uint64
	deletes uint64
}

// newBucket builds a fresh, empty bucket from a column schema, with its row
// arena preallocated to fit capacityHint rows. It fails with ErrNoColumn if
// the schema is empty.
func newBucket(columns []TypeTag, capacityHint int) (*Bucket, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumn
	}

	cols := make([]TypeTag, len(columns))
	copy(cols, columns)

	indices := make([]index, len(cols))
	for i, tag := range cols {
		indices[i] = newIndexFor(tag)
	}

	return &Bucket{
		token:   newToken(),
		columns: cols,
		indices: indices,
		values:  newValueStore(len(cols), capacityHint),
	}, nil
}

// insert appends row to the bucket after type-checking it against the
// schema. No partial effects happen on a validation failure: neither the
// arena, nor any index, nor the counters are touched.
func (b *Bucket) insert(row []Value) error {
	if err := validateInsertRow(b.columns, row); err != nil {
		return err
	}
	b.insertUnchecked(row)
	return nil
}

// insertUnchecked performs the actual insert, assuming row already passed
// validateInsertRow.
func (b *Bucket) insertUnchecked(row []Value) uint32 {
	id := b.values.insert(row)
	for i, idx := range b.indices {
		idx.insert(row[i], id)
	}
	b.inserts++
	return id
}

// insertIfAbsent inserts row only if no live (non-tombstoned) row already
// equals it column-for-column. Per spec §9, equivalence is based on Find,
// which already hides tombstoned rows — so a row identical to a deleted
// one is treated as absent and is re-inserted.
func (b *Bucket) insertIfAbsent(row []Value) (inserted bool, err error) {
	if err = validateInsertRow(b.columns, row); err != nil {
		return false, err
	}

	matches := make([]Match, len(row))
	for i, v := range row {
		matches[i] = equalityMatch(v)
	}

	existing, findErr := b.findIDs(matches)
	if findErr != nil {
		// matches was built straight from a valid row against this
		// bucket's own schema, so validateFindMatches cannot fail here.
		return false, findErr
	}
	if existing != nil {
		return false, nil
	}

	b.insertUnchecked(row)
	return true, nil
}

// find returns the materialized rows matching the flat match vector, or
// nil if none match.
func (b *Bucket) find(matches []Match) ([]Row, error) {
	ids, err := b.findIDs(matches)
	if err != nil || ids == nil {
		return nil, err
	}
	return b.materialize(ids), nil
}

// delete tombstones every row matching the flat match vector and returns
// the count newly tombstoned.
func (b *Bucket) delete(matches []Match) (int, error) {
	ids, err := b.findIDs(matches)
	if err != nil || ids == nil {
		return 0, err
	}
	return b.deleteIDs(ids), nil
}

// findByPattern evaluates a Pattern tree and materializes the surviving rows.
func (b *Bucket) findByPattern(p Pattern) ([]Row, error) {
	ids, err := b.idsByPattern(p)
	if err != nil || ids == nil {
		return nil, err
	}
	return b.materialize(ids), nil
}

// deleteByPattern evaluates a Pattern tree and tombstones every surviving row.
func (b *Bucket) deleteByPattern(p Pattern) (int, error) {
	ids, err := b.idsByPattern(p)
	if err != nil || ids == nil {
		return 0, err
	}
	return b.deleteIDs(ids), nil
}

// getColumnRef issues a capability for column i, or ok=false if i is out of range.
func (b *Bucket) getColumnRef(i int) (ref ColumnRef, ok bool) {
	if i < 0 || i >= len(b.columns) {
		return ColumnRef{}, false
	}
	return ColumnRef{token: b.token, column: i, tag: b.columns[i]}, true
}

// rowCount returns the number of live rows: next_id minus the tombstone count.
func (b *Bucket) rowCount() uint64 {
	return uint64(b.values.rowCount()) - uint64(b.deleted.Count())
}

// stats snapshots the bucket's counters and per-column index cardinality
// under the given display name.
func (b *Bucket) stats(name string) BucketStats {
	idxStats := make([]IndexStats, len(b.indices))
	for i, idx := range b.indices {
		idxStats[i] = IndexStats{Column: i, Cardinality: idx.cardinality()}
	}
	return BucketStats{
		Name:       name,
		Columns:    len(b.columns),
		Inserts:    b.inserts,
		Deletes:    b.deletes,
		Rows:       b.inserts - b.deletes,
		IndexStats: idxStats,
	}
}

// --------------------------- flat-match evaluation ---------------------------

// findIDs implements the flat-match evaluation algorithm of spec §4.1.1:
// validate, gather per-column postings for every non-wildcard matcher,
// sort ascending by cardinality, fold-intersect with short-circuit on
// empty, then subtract the tombstone set. A nil, nil result means "no
// rows matched"; it is not itself an error.
func (b *Bucket) findIDs(matches []Match) (bitmap.Bitmap, error) {
	if err := validateFindMatches(b.columns, matches); err != nil {
		return nil, err
	}

	var postings []bitmap.Bitmap
	for i, m := range matches {
		if m.IsWildcard() {
			continue
		}
		bm, ok := lookupMatch(b.indices[i], m)
		if !ok {
			return nil, nil
		}
		postings = append(postings, bm)
	}

	sort.Slice(postings, func(i, j int) bool {
		return postings[i].Count() < postings[j].Count()
	})

	result := cloneBitmap(postings[0])
	for _, bm := range postings[1:] {
		result.And(bm)
		if result.Count() == 0 {
			return nil, nil
		}
	}

	result.AndNot(b.deleted)
	if result.Count() == 0 {
		return nil, nil
	}
	return result, nil
}

// idsByPattern implements spec §4.1.2: evaluate the tree bottom-up, then
// subtract the tombstone set once at the root.
func (b *Bucket) idsByPattern(p Pattern) (bitmap.Bitmap, error) {
	root, err := b.evaluatePattern(&p)
	if err != nil {
		return nil, err
	}
	root.AndNot(b.deleted)
	if root.Count() == 0 {
		return nil, nil
	}
	return root, nil
}

// evaluatePattern resolves one Pattern node against this bucket's indices.
// And/Or never rewrite or reorder the tree; the shape given is the shape
// evaluated.
func (b *Bucket) evaluatePattern(p *Pattern) (bitmap.Bitmap, error) {
	switch p.kind {
	case patternSingle:
		ref := p.ref
		if ref.token != b.token || ref.column < 0 || ref.column >= len(b.columns) {
			return nil, ErrInvalidColumnRef
		}
		if p.value.Tag() != b.columns[ref.column] {
			return nil, ErrInvalidColumnMatch
		}
		if bm, ok := b.indices[ref.column].lookup(p.value); ok {
			return cloneBitmap(bm), nil
		}
		return bitmap.Bitmap{}, nil

	case patternAnd:
		left, err := b.evaluatePattern(p.left)
		if err != nil {
			return nil, err
		}
		right, err := b.evaluatePattern(p.right)
		if err != nil {
			return nil, err
		}
		left.And(right)
		return left, nil

	case patternOr:
		left, err := b.evaluatePattern(p.left)
		if err != nil {
			return nil, err
		}
		right, err := b.evaluatePattern(p.right)
		if err != nil {
			return nil, err
		}
		left.Or(right)
		return left, nil

	default:
		panic("oxide: unknown pattern kind")
	}
}

// deleteIDs tombstones every id in ids (assumed already tombstone-free) and
// returns the count newly tombstoned.
func (b *Bucket) deleteIDs(ids bitmap.Bitmap) int {
	n := 0
	ids.Range(func(id uint32) bool {
		b.deleted.Grow(id)
		b.deleted.Set(id)
		n++
		return true
	})
	b.deletes += uint64(n)
	return n
}

// materialize converts a bitmap of surviving ids into row views.
func (b *Bucket) materialize(ids bitmap.Bitmap) []Row {
	rows := make([]Row, 0, ids.Count())
	ids.Range(func(id uint32) bool {
		rows = append(rows, b.values.rowAt(id))
		return true
	})
	return rows
}

// equalityMatch builds the equality Match corresponding to a stored Value,
// used by insertIfAbsent to look up an equivalent row via find.
func equalityMatch(v Value) Match {
	switch v.Tag() {
	case Uint:
		u, _ := v.Uint()
		return MatchUint(u)
	case Int:
		i, _ := v.Int()
		return MatchInt(i)
	case Bool:
		t, _ := v.Bool()
		return MatchBool(t)
	case BorrowedStr:
		s, _ := v.Str()
		return MatchBorrowedStr(s)
	case OwnedStr:
		s, _ := v.Str()
		return MatchOwnedStr(s)
	default:
		panic("oxide: unsupported value tag")
	}
}

// --------------------------- validation ---------------------------

func validateInsertRow(columns []TypeTag, row []Value) error {
	if len(columns) != len(row) {
		return &WrongNumberOfValuesError{Expected: len(columns), Actual: len(row)}
	}
	for i, tag := range columns {
		if row[i].Tag() != tag {
			return &WrongValueTypeError{Index: i}
		}
	}
	return nil
}

func validateFindMatches(columns []TypeTag, matches []Match) error {
	if len(columns) != len(matches) {
		return &WrongNumberOfMatchesError{Expected: len(columns), Actual: len(matches)}
	}
	nonWildcard := 0
	for i, tag := range columns {
		m := matches[i]
		if m.IsWildcard() {
			continue
		}
		if m.Tag() != tag {
			return &WrongMatchTypeError{Index: i}
		}
		nonWildcard++
	}
	if nonWildcard == 0 {
		return ErrNothingToMatch
	}
	return nil
}

// --------------------------- stats ---------------------------

// BucketStats is a snapshot of one bucket's counters and per-column index
// cardinality, as returned by ReadHandle.Stats.
type BucketStats struct {
	Name       string
	Columns    int
	Inserts    uint64
	Deletes    uint64
	Rows       uint64
	IndexStats []IndexStats
}

// IndexStats is the per-column cardinality entry within BucketStats. Note
// cardinality never decreases on delete (spec §9): it is the domain size
// of values ever seen, not the live distinct-value count.
type IndexStats struct {
	Column      int
	Cardinality int
}

// String renders a human-readable stats table. No format-stability
// guarantee, per spec §6.
func (s BucketStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: columns=%d inserts=%s deletes=%s rows=%s\n",
		s.Name, s.Columns,
		humanize.Comma(int64(s.Inserts)),
		humanize.Comma(int64(s.Deletes)),
		humanize.Comma(int64(s.Rows)))
	for _, is := range s.IndexStats {
		fmt.Fprintf(&b, "  column[%d]: cardinality=%s\n", is.Column, humanize.Comma(int64(is.Cardinality)))
	}
	return b.String()
}
