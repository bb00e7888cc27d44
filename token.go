// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package oxide

import "math"

import "github.com/kelindar/xxrand"

// Token is a process-unique capability tag bound to a bucket at creation.
// The only defined operation is equality; the probability of a collision
// across a process lifetime is treated as zero.
type Token uint64

// newToken draws a fresh random token from a fast, non-cryptographic
// source. Two 32-bit draws are combined into the 64 bits of a Token since
// spec requires only negligible collision probability, not unpredictability
// against an adversary.
func newToken() Token {
	hi := uint64(xxrand.Uint32n(math.MaxUint32))
	lo := uint64(xxrand.Uint32n(math.MaxUint32))
	return Token(hi<<32 | lo)
}
