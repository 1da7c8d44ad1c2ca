// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ber converts data value encodings using the Basic Encoding Rules
// (BER) into the Distinguished Encoding Rules (DER). Both encoding rules are
// defined in [Rec. ITU-T X.690].
//
// The conversion does not need a type definition. It resolves those BER
// freedoms that can be decided on the syntactic level:
//
//   - Indefinite lengths are replaced by definite lengths.
//   - Long-form lengths are encoded minimally.
//   - Constructed encodings of universal string types are joined into a
//     single primitive encoding.
//   - A universal BOOLEAN with a non-zero content octet is encoded as 0xFF.
//   - The elements of a universal SET are sorted by their encodings.
//
// Freedoms that depend on the ASN.1 type of a value, such as constructed
// strings with an implicit tag, are left as they are and are rejected by the
// [codello.dev/der] package when decoding.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package ber

import (
	"bytes"
	"errors"
	"math"
	"slices"

	"codello.dev/der"
	"codello.dev/der/asn1"
	"codello.dev/der/tlv"
)

// LengthIndefinite when used as the Length of a [Header] indicates that the
// data value is encoded using the constructed indefinite-length format.
const LengthIndefinite = -1

var (
	// ErrEndOfContents indicates end-of-contents octets where a data value was
	// expected.
	ErrEndOfContents = errors.New("unexpected end-of-contents")
	// ErrIndefinitePrimitive indicates a primitive encoding with indefinite
	// length.
	ErrIndefinitePrimitive = errors.New("primitive encoding has indefinite length")
	// ErrSegment indicates an invalid segment in a constructed string.
	ErrSegment = errors.New("invalid segment in constructed string")
)

// SyntaxError reports a data value encoding that is not valid BER. Malformed
// identifier, length or content octets are reported as [*tlv.SyntaxError]
// instead.
type SyntaxError struct {
	Tag asn1.Tag // where the syntax error occurred
	Err error
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Error() string {
	return "ber: syntax error in " + e.Tag.String() + ": " + e.Err.Error()
}

// Header represents the identifier and length octets of a BER encoding. The
// Length is [LengthIndefinite] for the constructed indefinite-length format.
type Header struct {
	Tag    asn1.Tag
	Length int
}

// ReadHeader parses the identifier and length octets at the start of b and
// returns the header together with the bytes following the length octets.
// Unlike [tlv.ReadHeader] it accepts indefinite lengths and long-form lengths
// that are not minimally encoded.
func ReadHeader(b []byte) (Header, []byte, error) {
	t, rest, err := tlv.ReadTag(b)
	if err != nil {
		return Header{}, nil, err
	}
	if len(rest) == 0 {
		return Header{}, nil, &tlv.SyntaxError{Part: "length", Err: tlv.ErrTruncated}
	}
	l := rest[0]
	rest = rest[1:]
	if l < 0x80 {
		return Header{t, int(l)}, rest, nil
	}
	if l == 0x80 {
		if !t.Constructed {
			return Header{}, nil, &SyntaxError{t, ErrIndefinitePrimitive}
		}
		return Header{t, LengthIndefinite}, rest, nil
	}
	k := int(l & 0x7f)
	if len(rest) < k {
		return Header{}, nil, &tlv.SyntaxError{Part: "length", Err: tlv.ErrTruncated}
	}
	n := 0
	for _, c := range rest[:k] {
		if n > math.MaxInt>>8 {
			return Header{}, nil, &tlv.SyntaxError{Part: "length", Err: tlv.ErrTooLarge}
		}
		n = n<<8 | int(c)
	}
	return Header{t, n}, rest[k:], nil
}

// Options configure the conversion. The zero value uses
// [der.DefaultMaxDepth].
type Options struct {
	// MaxDepth limits the nesting of constructed encodings. Exceeding it
	// produces an error wrapping [der.ErrTooDeep].
	MaxDepth int
}

// ToDER converts the BER encoding of a single data value into DER using the
// default options. b must hold exactly one data value, trailing bytes produce
// an error wrapping [der.ErrTrailingData].
func ToDER(b []byte) ([]byte, error) {
	return Options{}.ToDER(b)
}

// ToDER converts the BER encoding of a single data value into DER. See the
// package documentation for the conversions applied.
func (o Options) ToDER(b []byte) ([]byte, error) {
	c := converter{maxDepth: o.MaxDepth}
	if c.maxDepth <= 0 {
		c.maxDepth = der.DefaultMaxDepth
	}
	out, rest, err := c.value(nil, b, 0)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &tlv.SyntaxError{Part: "input", Err: der.ErrTrailingData}
	}
	return out, nil
}

type converter struct {
	maxDepth int
}

// value converts the data value at the start of b and appends its DER encoding
// to dst. It returns the extended dst and the bytes following the value.
func (c *converter) value(dst, b []byte, depth int) ([]byte, []byte, error) {
	h, rest, err := ReadHeader(b)
	if err != nil {
		return nil, nil, err
	}
	if h.Tag == (asn1.Tag{}) {
		return nil, nil, &SyntaxError{h.Tag, ErrEndOfContents}
	}
	if !h.Tag.Constructed {
		if h.Length > len(rest) {
			return nil, nil, &tlv.SyntaxError{Part: "content", Err: tlv.ErrTruncated}
		}
		content := rest[:h.Length]
		if h.Tag == asn1.Universal(asn1.TagBoolean, false) && len(content) == 1 && content[0] != 0 {
			content = []byte{0xff}
		}
		dst = tlv.AppendHeader(dst, tlv.Header{Tag: h.Tag, Length: len(content)})
		return append(dst, content...), rest[h.Length:], nil
	}

	if depth >= c.maxDepth {
		return nil, nil, &SyntaxError{h.Tag, der.ErrTooDeep}
	}
	elems, rest, err := c.elements(h, rest, depth+1)
	if err != nil {
		return nil, nil, err
	}
	if h.Tag.Class == asn1.ClassUniversal && isString(h.Tag.Number) {
		content, err := join(h.Tag, elems)
		if err != nil {
			return nil, nil, err
		}
		dst = tlv.AppendHeader(dst, tlv.Header{Tag: asn1.Universal(h.Tag.Number, false), Length: len(content)})
		return append(dst, content...), rest, nil
	}
	if h.Tag == asn1.Universal(asn1.TagSet, true) {
		slices.SortFunc(elems, bytes.Compare)
	}
	n := 0
	for _, e := range elems {
		n += len(e)
	}
	dst = tlv.AppendHeader(dst, tlv.Header{Tag: h.Tag, Length: n})
	for _, e := range elems {
		dst = append(dst, e...)
	}
	return dst, rest, nil
}

// elements converts the content octets of the constructed encoding h that
// start at b. It returns the DER encodings of the elements and the bytes
// following the content octets including any end-of-contents octets.
func (c *converter) elements(h Header, b []byte, depth int) (elems [][]byte, rest []byte, err error) {
	content := b
	if h.Length != LengthIndefinite {
		if h.Length > len(b) {
			return nil, nil, &tlv.SyntaxError{Part: "content", Err: tlv.ErrTruncated}
		}
		content, rest = b[:h.Length], b[h.Length:]
	}
	for {
		if h.Length == LengthIndefinite {
			if len(content) >= 2 && content[0] == 0 && content[1] == 0 {
				return elems, content[2:], nil
			}
			if len(content) == 0 {
				return nil, nil, &tlv.SyntaxError{Part: "content", Err: tlv.ErrTruncated}
			}
		} else if len(content) == 0 {
			return elems, rest, nil
		}
		var e []byte
		if e, content, err = c.value(nil, content, depth); err != nil {
			return nil, nil, err
		}
		elems = append(elems, e)
	}
}

// isString reports whether the universal tag number n identifies a type that
// may use the constructed encoding for its contents.
func isString(n uint) bool {
	switch n {
	case asn1.TagBitString, asn1.TagOctetString, asn1.TagUTF8String,
		asn1.TagNumericString, asn1.TagPrintableString, asn1.TagTeletexString,
		21, asn1.TagIA5String, asn1.TagUTCTime, asn1.TagGeneralizedTime,
		25, 26, 27, asn1.TagUniversalString, asn1.TagBMPString:
		return true
	}
	return false
}

// join concatenates the segments of a constructed string. Each segment must be
// the primitive encoding of the same type. The segments of a BIT STRING carry
// an unused bits octet of which only the last one may be non-zero.
func join(t asn1.Tag, segments [][]byte) ([]byte, error) {
	want := asn1.Universal(t.Number, false)
	bitString := t.Number == asn1.TagBitString
	var content []byte
	if bitString {
		content = []byte{0}
	}
	for i, s := range segments {
		h, data, _, err := tlv.Split(s)
		if err != nil {
			return nil, err
		}
		if h.Tag != want {
			return nil, &SyntaxError{t, ErrSegment}
		}
		if !bitString {
			content = append(content, data...)
			continue
		}
		if len(data) == 0 || data[0] > 7 || (data[0] > 0 && (len(data) == 1 || i < len(segments)-1)) {
			return nil, &SyntaxError{t, ErrSegment}
		}
		content[0] = data[0]
		content = append(content, data[1:]...)
	}
	return content, nil
}
