// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"maps"
	"slices"

	"codello.dev/der/asn1"
	"codello.dev/der/tlv"
)

// Kind identifies the kind of value a [Type] describes. The set of kinds is
// closed, each kind corresponds to one concrete [Value] implementation.
//
//go:generate stringer -type=Kind -trimprefix=Kind
type Kind uint8

const (
	KindBoolean    Kind = iota // *Boolean
	KindInteger                // *Integer
	KindString                 // *String
	KindBitString              // *BitString
	KindAny                    // *Any
	KindChoice                 // *Choice
	KindSequence               // *Sequence
	KindSequenceOf             // *Repeated
	KindSetOf                  // *Repeated
)

// A Type describes an ASN.1 type: its kind, the tags applied to it and the
// structure of constructed kinds. Types are immutable and safe for concurrent
// use. They are created by the builder functions of this package and are meant
// to be declared once, usually as package-level variables.
type Type struct {
	name string
	kind Kind

	// tags lists the tags from innermost to outermost. tagBytes holds the
	// corresponding identifier octets.
	tags     []asn1.Tag
	tagBytes [][]byte

	elem *Type // KindSequenceOf, KindSetOf

	components     []*component // KindSequence
	componentIndex map[string]int

	alternatives     []Alternative // KindChoice
	alternativeIndex map[string]int
	byTag            map[asn1.Tag]int
}

// Predefined types. The string types share the [*String] representation and
// differ only in their tag. No character set validation is performed.
var (
	TypeBoolean         = Must(Universal(Base(KindBoolean, "BOOLEAN"), asn1.TagBoolean, false))
	TypeInteger         = Must(Universal(Base(KindInteger, "INTEGER"), asn1.TagInteger, false))
	TypeBitString       = Must(Universal(Base(KindBitString, "BIT STRING"), asn1.TagBitString, false))
	TypeOctetString     = Must(Universal(Base(KindString, "OCTET STRING"), asn1.TagOctetString, false))
	TypeUTF8String      = Must(Universal(Base(KindString, "UTF8String"), asn1.TagUTF8String, false))
	TypePrintableString = Must(Universal(Base(KindString, "PrintableString"), asn1.TagPrintableString, false))
	TypeTeletexString   = Must(Universal(Base(KindString, "TeletexString"), asn1.TagTeletexString, false))
	TypeIA5String       = Must(Universal(Base(KindString, "IA5String"), asn1.TagIA5String, false))
	TypeUTCTime         = Must(Universal(Base(KindString, "UTCTime"), asn1.TagUTCTime, false))
	TypeGeneralizedTime = Must(Universal(Base(KindString, "GeneralizedTime"), asn1.TagGeneralizedTime, false))
	TypeUniversalString = Must(Universal(Base(KindString, "UniversalString"), asn1.TagUniversalString, false))
	TypeBMPString       = Must(Universal(Base(KindString, "BMPString"), asn1.TagBMPString, false))

	// TypeAny is the untagged ANY type. Explicit tags may be applied to it.
	TypeAny = Base(KindAny, "ANY")
)

// Base returns an untagged type of a scalar kind or [KindAny]. An untagged
// scalar type cannot be encoded or decoded on its own. It is the starting
// point for a universal tag applied with [Universal]. Base panics if k is a
// constructed kind.
func Base(k Kind, name string) *Type {
	switch k {
	case KindBoolean, KindInteger, KindString, KindBitString, KindAny:
		return &Type{name: name, kind: k}
	}
	panic("der: Base called with constructed kind " + k.String())
}

// Must returns t if err is nil and panics otherwise. It is intended for
// package-level type declarations.
func Must(t *Type, err error) *Type {
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the name of t. Tagged types carry a name derived from the type
// they were created from, for example "[0] EXPLICIT INTEGER".
func (t *Type) Name() string { return t.name }

// Kind returns the kind of t.
func (t *Type) Kind() Kind { return t.kind }

// String returns the name of t.
func (t *Type) String() string { return t.name }

// Named returns a copy of t with the given name.
func (t *Type) Named(name string) *Type {
	c := *t
	c.name = name
	return &c
}

// Tags returns the tags of t from innermost to outermost. Untagged types
// (ANY and CHOICE) return an empty slice.
func (t *Type) Tags() []asn1.Tag {
	return slices.Clone(t.tags)
}

// Tag returns the outermost tag of t. The boolean result is false if t is
// untagged.
func (t *Type) Tag() (asn1.Tag, bool) {
	if len(t.tags) == 0 {
		return asn1.Tag{}, false
	}
	return t.tags[len(t.tags)-1], true
}

// Elem returns the element type of a SEQUENCE OF or SET OF type and nil for
// all other kinds.
func (t *Type) Elem() *Type { return t.elem }

// Components returns the components of a SEQUENCE type in declaration order.
func (t *Type) Components() []Component {
	ret := make([]Component, len(t.components))
	for i, c := range t.components {
		ret[i] = c.Component
		ret[i].Lookup = maps.Clone(c.Lookup)
	}
	return ret
}

// Alternatives returns the alternatives of a CHOICE type in declaration order.
func (t *Type) Alternatives() []Alternative {
	return slices.Clone(t.alternatives)
}

// framed reports whether values of t can be located in a stream of encoded
// data values. This is the case for all tagged types as well as ANY and
// CHOICE, which frame themselves.
func (t *Type) framed() bool {
	return len(t.tags) > 0 || t.kind == KindAny || t.kind == KindChoice
}

// outerTags returns the tags a data value of type t may start with. For an
// untagged ANY the result is empty.
func (t *Type) outerTags() []asn1.Tag {
	if len(t.tags) > 0 {
		return t.tags[len(t.tags)-1:]
	}
	if t.kind == KindChoice {
		ret := make([]asn1.Tag, len(t.alternatives))
		for i, a := range t.alternatives {
			ret[i], _ = a.Type.Tag()
		}
		return ret
	}
	return nil
}

// matches reports whether b starts with a data value that t could decode,
// judging by its outer tag only.
func (t *Type) matches(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	if len(t.tags) > 0 {
		return bytes.HasPrefix(b, t.tagBytes[len(t.tagBytes)-1])
	}
	switch t.kind {
	case KindAny:
		return true
	case KindChoice:
		tag, _, err := tlv.ReadTag(b)
		if err != nil {
			return false
		}
		_, ok := t.byTag[tag]
		return ok
	}
	return false
}

// withTags returns a copy of t using the given tags and name.
func (t *Type) withTags(name string, tags []asn1.Tag) *Type {
	c := *t
	c.name = name
	c.tags = tags
	c.tagBytes = make([][]byte, len(tags))
	for i, tag := range tags {
		c.tagBytes[i] = tlv.AppendTag(nil, tag)
	}
	return &c
}
