// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1

import (
	"bytes"
	"errors"
	"strings"
)

// BitString is the semantic value of the ASN.1 BIT STRING type. A bit string
// is padded up to the nearest byte in memory and the number of valid bits is
// recorded. The bits are packed high bit first. Padding bits carry no meaning
// and are ignored by [BitString.Equal].
//
// See also section 22 of Rec. ITU-T X.680.
type BitString struct {
	Bytes     []byte // bits packed into bytes.
	BitLength int    // length in bits.
}

// ParseBitString parses a string of '0' and '1' symbols into a BitString. The
// first symbol becomes the most significant bit of the first byte. Any other
// symbol results in an error.
func ParseBitString(s string) (BitString, error) {
	bs := BitString{
		Bytes:     make([]byte, (len(s)+8-1)/8),
		BitLength: len(s),
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			bs.Bytes[i/8] |= 0x80 >> uint(i%8)
		default:
			return BitString{}, errors.New("bit string must consist of 0s and 1s")
		}
	}
	return bs, nil
}

// IsValid reports whether there are enough bytes in s for the indicated
// BitLength.
func (s BitString) IsValid() bool {
	return s.BitLength >= 0 && len(s.Bytes) >= (s.BitLength+8-1)/8
}

// Len returns the number of bits in s.
func (s BitString) Len() int {
	return s.BitLength
}

// At returns the bit at the given index. If the index is out of range At panics.
func (s BitString) At(i int) int {
	if i < 0 || i >= s.BitLength {
		panic("index out of range")
	}
	x := i / 8
	y := 7 - uint(i%8)
	return int(s.Bytes[x]>>y) & 1
}

// Padding returns the number of unused bits in the last byte of s.
func (s BitString) Padding() int {
	return (8 - s.BitLength%8) % 8
}

// Canonical returns a copy of s containing exactly the bytes needed for
// s.BitLength bits with all padding bits set to zero.
func (s BitString) Canonical() BitString {
	n := (s.BitLength + 8 - 1) / 8
	c := BitString{Bytes: make([]byte, n), BitLength: s.BitLength}
	copy(c.Bytes, s.Bytes[:n])
	if n > 0 {
		c.Bytes[n-1] &^= byte(1<<uint(s.Padding()) - 1)
	}
	return c
}

// Equal reports whether s and other contain the same bits. Padding bits are
// not compared.
func (s BitString) Equal(other BitString) bool {
	if s.BitLength != other.BitLength {
		return false
	}
	return bytes.Equal(s.Canonical().Bytes, other.Canonical().Bytes)
}

// String formats s as a sequence of '0' and '1' symbols, one per bit.
func (s BitString) String() string {
	var sb strings.Builder
	sb.Grow(s.BitLength)
	for i := range s.BitLength {
		sb.WriteByte('0' + byte(s.At(i)))
	}
	return sb.String()
}
