// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asn1 defines the small set of ASN.1 building blocks shared by the
// schema engine in [codello.dev/der] and the wire primitives in
// [codello.dev/der/tlv]: tags as defined in [Rec. ITU-T X.680] and the
// semantic value of the BIT STRING type.
//
// A [Tag] identifies a data value encoding on the wire. In contrast to the
// abstract ASN.1 notation a Tag also records whether the encoding is primitive
// or constructed, because only the combination of class, number and encoding
// determines the identifier octets that are compared during decoding.
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
package asn1

import (
	"strconv"
	"strings"
)

// Tag constitutes an ASN.1 tag, consisting of its class, its number and the
// encoding (primitive or constructed) of the data value it identifies. Tag
// values are comparable and can be used as map keys. For details, see Section
// 8 of Rec. ITU-T X.680 and Section 8.1.2 of Rec. ITU-T X.690.
type Tag struct {
	Class       Class
	Number      uint
	Constructed bool
}

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// Universal returns the primitive or constructed tag with the given number in
// the [ClassUniversal] namespace.
func Universal(number uint, constructed bool) Tag {
	return Tag{Class: ClassUniversal, Number: number, Constructed: constructed}
}

// String returns a string representation t in a format similar to the one used
// in ASN.1 notation. The tag number is enclosed by square brackets and prefixed
// with the class used. To avoid ambiguity the UNIVERSAL word is used for
// universal tags, although this is not valid ASN.1 syntax. Constructed tags are
// suffixed with "/c".
func (t Tag) String() string {
	var s string
	if t.Class == ClassContextSpecific {
		s = "[" + strconv.FormatUint(uint64(t.Number), 10) + "]"
	} else {
		s = "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(uint64(t.Number), 10) + "]"
	}
	if t.Constructed {
		s += "/c"
	}
	return s
}

// TagReserved is a reserved tag number in the [ClassUniversal] namespace to be
// used by encoding rules. This assignment is defined in Rec. ITU-T X.680,
// Section 8, Table 1.
const TagReserved = 0

// These are the ASN.1 tag numbers in the [ClassUniversal] namespace used by
// this module. These assignments are defined in Rec. ITU-T X.680, Section 8,
// Table 1.
const (
	TagBoolean         uint = 1
	TagInteger         uint = 2
	TagBitString       uint = 3
	TagOctetString     uint = 4
	TagNull            uint = 5
	TagOID             uint = 6
	TagUTF8String      uint = 12
	TagSequence        uint = 16
	TagSet             uint = 17
	TagNumericString   uint = 18
	TagPrintableString uint = 19
	TagTeletexString   uint = 20
	TagT61String            = TagTeletexString
	TagIA5String       uint = 22
	TagUTCTime         uint = 23
	TagGeneralizedTime uint = 24
	TagUniversalString uint = 28
	TagBMPString       uint = 30
)
