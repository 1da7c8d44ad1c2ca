// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tlv implements the wire primitives of the tag-length-value (TLV)
// format used by the Distinguished Encoding Rules (DER) as specified in
// [Rec. ITU-T X.690]: identifier octets, definite lengths and minimally
// encoded integers. See also “[A Layman's Guide to a Subset of ASN.1, BER,
// and DER]”.
//
// All functions in this package operate on byte slices. Functions named
// Append* append an encoding to a slice and return the extended slice.
// Functions named Read* parse a prefix of a slice and return the parsed value
// together with the remaining bytes. Malformed input is reported as a
// [*SyntaxError] wrapping one of the sentinel errors of this package.
//
// This package deals with the syntactic layer of DER while the
// [codello.dev/der] package deals with the semantic layer.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"strconv"

	"codello.dev/der/asn1"
)

// Header represents the identifier and length octets of a definite-length
// data value encoding. The Length counts the content octets only.
type Header struct {
	Tag    asn1.Tag
	Length int
}

// String returns a string representation of h.
func (h Header) String() string {
	return h.Tag.String() + ":" + strconv.Itoa(h.Length)
}

// Size returns the number of bytes needed to encode h.
func (h Header) Size() int {
	return TagSize(h.Tag) + LengthSize(h.Length)
}

// AppendHeader appends the identifier and length octets of h to dst.
func AppendHeader(dst []byte, h Header) []byte {
	dst = AppendTag(dst, h.Tag)
	return AppendLength(dst, h.Length)
}

// ReadHeader parses the identifier and length octets at the start of b. It
// returns the header and the bytes following the length octets. ReadHeader
// does not verify that enough content octets follow, use [Split] for that.
func ReadHeader(b []byte) (Header, []byte, error) {
	t, rest, err := ReadTag(b)
	if err != nil {
		return Header{}, nil, err
	}
	n, rest, err := ReadLength(rest)
	if err != nil {
		return Header{}, nil, err
	}
	return Header{Tag: t, Length: n}, rest, nil
}

// Split parses a complete TLV at the start of b. It returns the header, the
// content octets and the bytes following the TLV. If b is too short to hold
// the content octets declared by the header, the error wraps [ErrTruncated].
func Split(b []byte) (h Header, content []byte, rest []byte, err error) {
	h, rest, err = ReadHeader(b)
	if err != nil {
		return Header{}, nil, nil, err
	}
	if len(rest) < h.Length {
		return h, nil, nil, &SyntaxError{Part: "content", Err: ErrTruncated}
	}
	return h, rest[:h.Length:h.Length], rest[h.Length:], nil
}
