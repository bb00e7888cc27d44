// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

import "fmt"

// Sentinel errors with no payload. Compare with errors.Is.
var (
	// ErrNoColumn is returned when a bucket is built with an empty schema.
	ErrNoColumn = sentinelError("bucket has no column defined")

	// ErrInvalidBucket is returned when a cache operation names a bucket
	// that does not exist.
	ErrInvalidBucket = sentinelError("bucket does not exist")

	// ErrInvalidColumnRef is returned when a Pattern Single's ColumnRef
	// token does not match the evaluating bucket, or its column id is out
	// of range.
	ErrInvalidColumnRef = sentinelError("column ref is not valid for this bucket")

	// ErrInvalidColumnMatch is returned when a Pattern Single's Value type
	// disagrees with the type of the column it refers to.
	ErrInvalidColumnMatch = sentinelError("column type and value do not match in pattern")

	// ErrNothingToMatch is returned when find/delete is called with every
	// matcher set to the Any wildcard.
	ErrNothingToMatch = sentinelError("nothing to match, perhaps try a match that is not Any")
)

// sentinelError is a trivial string-backed error, used for the
// payload-free members of the taxonomy so they remain comparable with
// errors.Is without allocating a distinct type per kind.
type sentinelError string

func (e sentinelError) Error() string { return "bucket: " + string(e) }

// WrongNumberOfValuesError is returned when an inserted row's arity does
// not match the bucket's column count.
type WrongNumberOfValuesError struct {
	Expected int
	Actual   int
}

func (e *WrongNumberOfValuesError) Error() string {
	return fmt.Sprintf("bucket: wrong number of values, expected: %d, actual: %d", e.Expected, e.Actual)
}

// WrongValueTypeError is returned when an inserted row's value at Index
// disagrees with its column's declared type.
type WrongValueTypeError struct {
	Index int
}

func (e *WrongValueTypeError) Error() string {
	return fmt.Sprintf("bucket: wrong value type at column index: %d", e.Index)
}

// WrongNumberOfMatchesError is returned when a flat match vector's arity
// does not match the bucket's column count.
type WrongNumberOfMatchesError struct {
	Expected int
	Actual   int
}

func (e *WrongNumberOfMatchesError) Error() string {
	return fmt.Sprintf("bucket: wrong number of matches, expected: %d, actual: %d", e.Expected, e.Actual)
}

// WrongMatchTypeError is returned when a non-wildcard matcher at Index
// disagrees with its column's declared type.
type WrongMatchTypeError struct {
	Index int
}

func (e *WrongMatchTypeError) Error() string {
	return fmt.Sprintf("bucket: wrong match type at column index: %d", e.Index)
}
