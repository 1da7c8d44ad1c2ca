// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"iter"
	"reflect"
	"slices"
	"strings"

	"codello.dev/der/asn1"
)

// SequenceOf creates a SEQUENCE OF type with the given element type.
func SequenceOf(elem *Type) (*Type, error) {
	return newRepeatedType(KindSequenceOf, "SEQUENCE OF ", asn1.TagSequence, elem)
}

// SetOf creates a SET OF type with the given element type. Elements are
// encoded in ascending order of their encodings. Duplicates are kept.
func SetOf(elem *Type) (*Type, error) {
	return newRepeatedType(KindSetOf, "SET OF ", asn1.TagSet, elem)
}

func newRepeatedType(k Kind, prefix string, number uint, elem *Type) (*Type, error) {
	if elem == nil {
		return nil, &SchemaError{Type: strings.TrimSpace(prefix), Msg: "missing element type"}
	}
	name := prefix + elem.name
	if !elem.framed() {
		return nil, &SchemaError{Type: name, Msg: "element type is an untagged scalar type"}
	}
	t := &Type{name: name, kind: k, elem: elem}
	return t.withTags(name, []asn1.Tag{asn1.Universal(number, true)}), nil
}

// Repeated is a value of [KindSequenceOf] or [KindSetOf]. It holds an ordered
// list of elements of the element type. The order of a SET OF value is
// significant for Equal but not for its encoding.
type Repeated struct {
	typ   *Type
	elems []Value
}

// newRepeated creates a Repeated from any Go slice or array.
func newRepeated(t *Type, v any) (*Repeated, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, unsupported(t, v)
	}
	r := &Repeated{typ: t, elems: make([]Value, 0, rv.Len())}
	for i := range rv.Len() {
		if err := r.Append(rv.Index(i).Interface()); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// decodeRepeated reads elements until the content is exhausted. The order of
// SET OF elements is not verified.
func (d *decoder) decodeRepeated(t *Type, content []byte) (*Repeated, error) {
	r := &Repeated{typ: t}
	for len(content) > 0 {
		v, rest, err := d.read(t.elem, content)
		if err != nil {
			return nil, err
		}
		r.elems = append(r.elems, v)
		content = rest
	}
	return r, nil
}

func (r *Repeated) Type() *Type             { return r.typ }
func (r *Repeated) Encode() ([]byte, error) { return encode(r) }

// Len returns the number of elements in r.
func (r *Repeated) Len() int { return len(r.elems) }

// At returns the element at index i. At panics if i is out of range.
func (r *Repeated) At(i int) Value { return r.elems[i] }

// Set converts v to the element type and stores it at index i. Set panics if
// i is out of range.
func (r *Repeated) Set(i int, v any) error {
	if i < 0 || i >= len(r.elems) {
		panic("der: Repeated.Set index out of range")
	}
	val, err := r.convert(v)
	if err != nil {
		return err
	}
	r.elems[i] = val
	return nil
}

// Insert converts v to the element type and inserts it at index i. Insert
// panics if i is out of range.
func (r *Repeated) Insert(i int, v any) error {
	val, err := r.convert(v)
	if err != nil {
		return err
	}
	r.elems = slices.Insert(r.elems, i, val)
	return nil
}

// Delete removes the element at index i. Delete panics if i is out of range.
func (r *Repeated) Delete(i int) {
	r.elems = slices.Delete(r.elems, i, i+1)
}

// Append converts each of vs to the element type and appends them to r. If a
// conversion fails, r is not modified.
func (r *Repeated) Append(vs ...any) error {
	vals := make([]Value, len(vs))
	for i, v := range vs {
		val, err := r.convert(v)
		if err != nil {
			return err
		}
		vals[i] = val
	}
	r.elems = append(r.elems, vals...)
	return nil
}

// All iterates over the elements of r and their indices.
func (r *Repeated) All() iter.Seq2[int, Value] {
	return slices.All(r.elems)
}

func (r *Repeated) convert(v any) (Value, error) {
	return r.typ.elem.New(v)
}

// Interface returns the semantic values of all elements as a []any.
func (r *Repeated) Interface() any {
	ret := make([]any, len(r.elems))
	for i, e := range r.elems {
		ret[i] = e.Interface()
	}
	return ret
}

func (r *Repeated) String() string {
	var s strings.Builder
	s.WriteByte('[')
	for i, e := range r.elems {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(e.String())
	}
	s.WriteByte(']')
	return s.String()
}

// Equal reports whether other holds equal elements. SEQUENCE OF values must
// hold them in the same order. SET OF values are compared by their sorted
// element encodings, so the order does not matter.
func (r *Repeated) Equal(other Value) bool {
	o, ok := other.(*Repeated)
	if !ok || o.typ.kind != r.typ.kind || len(o.elems) != len(r.elems) {
		return false
	}
	if r.typ.kind == KindSetOf {
		a, errA := r.encodings()
		b, errB := o.encodings()
		if errA == nil && errB == nil {
			return slices.EqualFunc(a, b, bytes.Equal)
		}
	}
	return slices.EqualFunc(r.elems, o.elems, Value.Equal)
}

// encodings returns the encodings of the elements. SET OF elements are sorted
// by their encodings.
func (r *Repeated) encodings() ([][]byte, error) {
	encs := make([][]byte, len(r.elems))
	for i, e := range r.elems {
		b, err := e.Encode()
		if err != nil {
			return nil, err
		}
		encs[i] = b
	}
	if r.typ.kind == KindSetOf {
		slices.SortFunc(encs, bytes.Compare)
	}
	return encs, nil
}

func (r *Repeated) appendContent(dst []byte) ([]byte, error) {
	encs, err := r.encodings()
	if err != nil {
		return nil, err
	}
	for _, b := range encs {
		dst = append(dst, b...)
	}
	return dst, nil
}
