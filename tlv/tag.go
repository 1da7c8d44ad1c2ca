// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"

	"codello.dev/der/asn1"
	"codello.dev/der/internal/vlq"
)

// AppendTag appends the identifier octets of t to dst. Tag numbers of 31 and
// above use the high-tag-number form. AppendTag panics if t.Class is invalid.
func AppendTag(dst []byte, t asn1.Tag) []byte {
	if !t.Class.IsValid() {
		panic("tlv: invalid tag class")
	}
	b := byte(t.Class) << 6
	if t.Constructed {
		b |= 0x20
	}
	if t.Number < 31 {
		return append(dst, b|byte(t.Number))
	}
	return vlq.Append(append(dst, b|0x1f), t.Number)
}

// TagSize returns the number of bytes AppendTag produces for t.
func TagSize(t asn1.Tag) int {
	if t.Number < 31 {
		return 1
	}
	return 1 + vlq.Size(t.Number)
}

// ReadTag parses the identifier octets at the start of b and returns the tag
// together with the remaining bytes. High tag numbers must be minimally
// encoded and must not be representable in the low-tag-number form.
func ReadTag(b []byte) (asn1.Tag, []byte, error) {
	if len(b) == 0 {
		return asn1.Tag{}, nil, &SyntaxError{Part: "identifier", Err: ErrEmpty}
	}
	t := asn1.Tag{
		Class:       asn1.Class(b[0] >> 6),
		Constructed: b[0]&0x20 != 0,
		Number:      uint(b[0] & 0x1f),
	}
	if t.Number != 0x1f {
		return t, b[1:], nil
	}
	n, l, err := vlq.DecodeMinimal[uint](b[1:])
	switch {
	case errors.Is(err, vlq.ErrTruncated):
		return asn1.Tag{}, nil, &SyntaxError{Part: "identifier", Err: ErrTruncated}
	case errors.Is(err, vlq.ErrNotMinimal):
		return asn1.Tag{}, nil, &SyntaxError{Part: "identifier", Err: ErrNotMinimal}
	case errors.Is(err, vlq.ErrOverflow):
		return asn1.Tag{}, nil, &SyntaxError{Part: "identifier", Err: ErrTooLarge}
	}
	if n < 31 {
		return asn1.Tag{}, nil, &SyntaxError{Part: "identifier", Err: ErrNotMinimal}
	}
	t.Number = n
	return t, b[1+l:], nil
}
