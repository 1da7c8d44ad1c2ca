// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import "math"

// AppendLength appends the definite length n to dst. Lengths up to 127 use the
// short form. Longer lengths use the long form: a byte with the high bit set
// and the number of length octets in the low 7 bits, followed by the minimal
// unsigned big-endian encoding of n. AppendLength panics if n is negative.
func AppendLength(dst []byte, n int) []byte {
	if n < 0 {
		panic("tlv: negative length")
	}
	if n <= 127 {
		return append(dst, byte(n))
	}
	k := LengthSize(n) - 1
	dst = append(dst, 0x80|byte(k))
	for i := k - 1; i >= 0; i-- {
		dst = append(dst, byte(n>>(uint(i)*8)))
	}
	return dst
}

// LengthSize returns the number of bytes AppendLength produces for n.
func LengthSize(n int) int {
	if n <= 127 {
		return 1
	}
	l := 1
	for ; n > 0; n >>= 8 {
		l++
	}
	return l
}

// ReadLength parses a definite length at the start of b and returns it
// together with the remaining bytes.
//
// The long-form length octets are parsed as a minimal unsigned integer. In
// particular the indefinite-length marker 0x80 is rejected because it declares
// an empty integer. Lengths that do not fit into an int are rejected as well.
func ReadLength(b []byte) (int, []byte, error) {
	if len(b) == 0 {
		return 0, nil, &SyntaxError{Part: "length", Err: ErrTruncated}
	}
	if b[0] <= 127 {
		return int(b[0]), b[1:], nil
	}
	k := int(b[0] & 0x7f)
	b = b[1:]
	if len(b) < k {
		return 0, nil, &SyntaxError{Part: "length", Err: ErrTruncated}
	}
	if err := checkInt(b[:k], false, "length"); err != nil {
		return 0, nil, err
	}
	var n uint64
	for _, c := range b[:k] {
		if n > math.MaxInt>>8 {
			return 0, nil, &SyntaxError{Part: "length", Err: ErrTooLarge}
		}
		n = n<<8 | uint64(c)
	}
	return int(n), b[k:], nil
}
