// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"fmt"
	"iter"

	"codello.dev/der/tlv"
)

// Value is an instance of a [Type]. Each [Kind] is implemented by exactly one
// concrete type of this package. A Value owns its sub-values. Values can be
// compared with Equal, which compares semantic values and not encodings. For
// any value v of type t, decoding the encoding of v yields a value equal to v.
type Value interface {
	// Type returns the type of the value.
	Type() *Type

	// Encode returns the DER encoding of the value including all tags.
	Encode() ([]byte, error)

	// Equal reports whether the value and other are semantically equal.
	Equal(other Value) bool

	// Interface returns the semantic value as a Go value. The result can be
	// passed to Type().New to obtain an equal value.
	Interface() any

	// String returns a human-readable representation of the value.
	String() string

	// appendContent appends the content octets of the value to dst. For the
	// untagged kinds ANY and CHOICE the content is a complete data value.
	appendContent(dst []byte) ([]byte, error)
}

// Keyed is implemented by values whose sub-values are addressed by name:
// [*Sequence] and [*Choice].
type Keyed interface {
	Value

	// Get returns the sub-value with the given name or nil if it is not
	// present. An unknown name results in an [*ArgumentError].
	Get(name string) (Value, error)

	// Set converts v using the type of the named sub-value and stores it.
	Set(name string, v any) error

	// Clear removes the named sub-value.
	Clear(name string) error

	// Names iterates over the names of sub-values in declaration order.
	Names() iter.Seq[string]

	// Len returns the number of names yielded by Names.
	Len() int
}

// Indexed is implemented by values whose sub-values are addressed by
// position: [*Repeated].
type Indexed interface {
	Value

	// Len returns the number of elements.
	Len() int

	// At returns the element at index i. At panics if i is out of range.
	At(i int) Value

	// Set converts v to the element type and stores it at index i.
	Set(i int, v any) error

	// Insert converts v to the element type and inserts it at index i.
	Insert(i int, v any) error

	// Delete removes the element at index i.
	Delete(i int)

	// Append converts each of vs to the element type and appends them.
	Append(vs ...any) error

	// All iterates over the elements and their indices.
	All() iter.Seq2[int, Value]
}

var (
	_ Keyed   = (*Sequence)(nil)
	_ Keyed   = (*Choice)(nil)
	_ Indexed = (*Repeated)(nil)
)

// encode produces the encoding of v: its content octets, wrapped in a tag and
// length for every tag of its type from innermost to outermost.
func encode(v Value) ([]byte, error) {
	t := v.Type()
	b, err := v.appendContent(nil)
	if err != nil {
		return nil, err
	}
	for _, tag := range t.tagBytes {
		w := make([]byte, 0, len(tag)+tlv.LengthSize(len(b))+len(b))
		w = append(w, tag...)
		w = tlv.AppendLength(w, len(b))
		b = append(w, b...)
	}
	return b, nil
}

// New creates a value of type t from a Go value. The accepted Go values
// depend on the kind of t:
//
//   - BOOLEAN: bool
//   - INTEGER: any Go integer type, *big.Int and big.Int
//   - string kinds: string and []byte
//   - BIT STRING: a string of '0' and '1' symbols and [asn1.BitString]
//   - ANY: []byte containing a complete encoded data value, or any non-ANY
//     Value which is stored encoded and already decoded
//   - CHOICE: map[string]any with at most one entry
//   - SEQUENCE: map[string]any, missing components are set to their default,
//     or a struct or pointer to a struct whose exported fields are matched to
//     the components by name (see below)
//   - SEQUENCE OF, SET OF: any slice or array of values the element type
//     accepts
//
// A Value of type t is returned as-is. Any other Value is converted through
// its semantic value as returned by [Value.Interface]. A nil v or a Go value
// that is not accepted results in an [*ArgumentError].
//
// A struct field provides the component named by its `der` tag or, without a
// name in the tag, the component named like the field with its first letter in
// lower case. The tag "-" ignores a field and the option "omitzero" omits a
// field holding its zero value. Nil pointers and interfaces are omitted.
// Fields of embedded structs are treated as fields of the outer struct.
//
//	type Point struct {
//		X     int
//		Y     int
//		Label string `der:"label,omitzero"`
//	}
func (t *Type) New(v any) (Value, error) {
	if v == nil {
		return nil, &ArgumentError{Type: t.name, Msg: "cannot create a value from nil"}
	}
	if val, ok := v.(Value); ok {
		if val.Type() == t {
			return val, nil
		}
		if t.kind == KindAny {
			a, err := newAnyFromValue(t, val)
			if err != nil {
				return nil, err
			}
			return a, nil
		}
		v = val.Interface()
	}
	var val Value
	var err error
	switch t.kind {
	case KindBoolean:
		val, err = newBoolean(t, v)
	case KindInteger:
		val, err = newInteger(t, v)
	case KindString:
		val, err = newString(t, v)
	case KindBitString:
		val, err = newBitString(t, v)
	case KindAny:
		val, err = newAny(t, v)
	case KindChoice:
		val, err = newChoice(t, v)
	case KindSequence:
		val, err = newSequence(t, v)
	case KindSequenceOf, KindSetOf:
		val, err = newRepeated(t, v)
	default:
		panic("der: unknown kind " + t.kind.String())
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// unsupported returns the error for a Go value that the kind of t does not
// accept.
func unsupported(t *Type, v any) error {
	return &ArgumentError{Type: t.name, Msg: fmt.Sprintf("cannot create a %s value from %T", t.kind, v)}
}
