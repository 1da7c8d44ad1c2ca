// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"math/big"
	"slices"
)

var bigOne = big.NewInt(1)

// AppendInt appends the minimal encoding of v to dst. If signed is true, v is
// encoded in two's complement form. Otherwise v is encoded as an unsigned
// big-endian integer and must not be negative. Zero is always encoded as a
// single zero byte.
func AppendInt(dst []byte, v *big.Int, signed bool) ([]byte, error) {
	switch v.Sign() {
	case 0:
		return append(dst, 0x00), nil
	case 1:
		bs := v.Bytes()
		if signed && bs[0]&0x80 != 0 {
			dst = append(dst, 0x00)
		}
		return append(dst, bs...), nil
	}
	if !signed {
		return dst, ErrNegative
	}
	// Two's complement of v is the bitwise inverse of -v-1.
	n := new(big.Int).Neg(v)
	n.Sub(n, bigOne)
	bs := n.Bytes()
	for i := range bs {
		bs[i] ^= 0xff
	}
	if len(bs) == 0 || bs[0]&0x80 == 0 {
		dst = append(dst, 0xff)
	}
	return append(dst, bs...), nil
}

// IntSize returns the number of bytes AppendInt produces for v.
func IntSize(v *big.Int, signed bool) int {
	if v.Sign() == 0 {
		return 1
	}
	if v.Sign() > 0 {
		l := (v.BitLen() + 7) / 8
		if signed && v.BitLen()%8 == 0 {
			l++
		}
		return l
	}
	n := new(big.Int).Neg(v)
	n.Sub(n, bigOne)
	return n.BitLen()/8 + 1
}

// ParseInt parses a minimally encoded integer occupying all of b. If signed is
// true, b is interpreted in two's complement form.
//
// A leading zero byte followed by a byte below 0x80 is redundant and rejected.
// If signed is true, a leading 0xff byte followed by a byte of at least 0x80
// is rejected as well.
func ParseInt(b []byte, signed bool) (*big.Int, error) {
	if err := checkInt(b, signed, "integer"); err != nil {
		return nil, err
	}
	ret := new(big.Int)
	if !signed || b[0]&0x80 == 0 {
		return ret.SetBytes(b), nil
	}
	inv := slices.Clone(b)
	for i := range inv {
		inv[i] ^= 0xff
	}
	ret.SetBytes(inv)
	ret.Add(ret, bigOne)
	return ret.Neg(ret), nil
}

// ParseInt64 works like [ParseInt] but parses into an int64. If the value does
// not fit, the error wraps [ErrTooLarge].
func ParseInt64(b []byte) (int64, error) {
	if err := checkInt(b, true, "integer"); err != nil {
		return 0, err
	}
	if len(b) > 8 {
		return 0, &SyntaxError{Part: "integer", Err: ErrTooLarge}
	}
	var ret int64
	for _, c := range b {
		ret = ret<<8 | int64(c)
	}
	// sign extension
	ret <<= 64 - uint8(len(b))*8
	ret >>= 64 - uint8(len(b))*8
	return ret, nil
}

// checkInt validates that b is a non-empty, minimally encoded integer.
func checkInt(b []byte, signed bool, part string) error {
	if len(b) == 0 {
		return &SyntaxError{Part: part, Err: ErrEmpty}
	}
	if len(b) > 1 {
		if b[0] == 0x00 && b[1]&0x80 == 0 {
			return &SyntaxError{Part: part, Err: ErrNotMinimal}
		}
		if signed && b[0] == 0xff && b[1]&0x80 == 0x80 {
			return &SyntaxError{Part: part, Err: ErrNotMinimal}
		}
	}
	return nil
}
