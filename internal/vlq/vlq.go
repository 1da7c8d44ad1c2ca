// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vlq implements [Variable-length quantity] encoding as used for
// high tag numbers in BER and DER identifier octets. A VLQ is essentially a
// base-128 representation of an unsigned integer with the addition of the
// eighth bit to mark continuation of bytes.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"math/bits"
	"unsafe"
)

// Unsigned is the set of integer types a VLQ can be decoded into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

var (
	ErrTruncated  = errors.New("vlq is truncated")
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrOverflow   = errors.New("vlq too large for target type")
)

// DecodeMinimal parses a minimally encoded unsigned VLQ from the start of b. It
// returns the value and the number of bytes consumed. The maximum allowed value
// is limited by the size of T. A VLQ starting with a 0x80 byte is reported as
// [ErrNotMinimal].
func DecodeMinimal[T Unsigned](b []byte) (ret T, n int, err error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	if b[0] == 0x80 {
		return 0, 0, ErrNotMinimal
	}
	numBits := 0
	for n < len(b) {
		c := b[n]
		n++
		if numBits == 0 {
			numBits = bits.Len8(c & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, 0, ErrOverflow
		}
		ret = ret<<7 | T(c&0x7f)
		if c&0x80 == 0 {
			return ret, n, nil
		}
	}
	return 0, 0, ErrTruncated
}

// Size returns the number of bytes needed to encode n as a VLQ.
func Size[T Unsigned](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}

// Append appends the minimal VLQ encoding of i to b and returns the extended
// slice.
func Append[T Unsigned](b []byte, i T) []byte {
	for j := Size(i) - 1; j >= 0; j-- {
		c := byte(i>>(j*7)) & 0x7f
		if j > 0 {
			c |= 0x80
		}
		b = append(b, c)
	}
	return b
}
