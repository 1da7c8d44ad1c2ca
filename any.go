// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"fmt"
	"slices"

	"codello.dev/der/tlv"
)

// Any is a value of [KindAny]. It holds the complete encoding of a single data
// value whose type is not known to the schema. The encoding can later be
// decoded against a specific type using [Any.DecodeInner].
//
// Tags applied to an ANY type wrap the held data value. Two Any values are
// equal if their encodings are equal.
type Any struct {
	typ     *Type
	raw     []byte
	decoded Value
}

// newAny creates an Any from the complete encoding of a data value.
func newAny(t *Type, v any) (*Any, error) {
	raw, ok := v.([]byte)
	if !ok {
		return nil, unsupported(t, v)
	}
	if err := checkSingleValue(raw); err != nil {
		return nil, &ArgumentError{Type: t.name, Msg: err.Error()}
	}
	return &Any{typ: t, raw: slices.Clone(raw)}, nil
}

// newAnyFromValue creates an Any holding the encoding of v. The result is
// already decoded. An ANY cannot be created from another ANY because it would
// be ambiguous which tags to keep.
func newAnyFromValue(t *Type, v Value) (*Any, error) {
	if _, ok := v.(*Any); ok {
		return nil, &ArgumentError{Type: t.name, Msg: "cannot create an ANY value from another ANY value"}
	}
	raw, err := v.Encode()
	if err != nil {
		return nil, err
	}
	return &Any{typ: t, raw: raw, decoded: v}, nil
}

// checkSingleValue verifies that b holds exactly one data value encoding.
func checkSingleValue(b []byte) error {
	_, _, rest, err := tlv.Split(b)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return ErrTrailingData
	}
	return nil
}

// readAny captures the data value at the start of b without interpreting it.
func (d *decoder) readAny(t *Type, b []byte) (*Any, []byte, error) {
	if len(b) == 0 {
		return nil, nil, &TagError{Type: t.name, Empty: true}
	}
	_, _, rest, err := tlv.Split(b)
	if err != nil {
		return nil, nil, &SyntaxError{Type: t.name, Err: err}
	}
	n := len(b) - len(rest)
	return &Any{typ: t, raw: bytes.Clone(b[:n])}, rest, nil
}

// decodeAny decodes the content of an explicitly tagged ANY, which must be
// exactly one data value.
func decodeAny(t *Type, content []byte) (*Any, error) {
	if err := checkSingleValue(content); err != nil {
		return nil, &SyntaxError{Type: t.name, Err: err}
	}
	return &Any{typ: t, raw: bytes.Clone(content)}, nil
}

func (a *Any) Type() *Type             { return a.typ }
func (a *Any) Encode() ([]byte, error) { return encode(a) }

// Interface returns a copy of the held encoding.
func (a *Any) Interface() any { return a.Raw() }

// String returns the string representation of the decoded value, if a has
// been decoded, and the hexadecimal held encoding otherwise.
func (a *Any) String() string {
	if a.decoded != nil {
		return a.decoded.String()
	}
	return fmt.Sprintf("%X", a.raw)
}

// Raw returns a copy of the held encoding.
func (a *Any) Raw() []byte { return slices.Clone(a.raw) }

// Decoded returns the decoded value. The boolean result reports whether a has
// been decoded.
func (a *Any) Decoded() (Value, bool) {
	return a.decoded, a.decoded != nil
}

// DecodeInner decodes the held encoding as a data value of type t and stores
// the result. An Any can only be decoded once. Calling DecodeInner on an
// already decoded Any results in an [*ArgumentError].
func (a *Any) DecodeInner(t *Type, strict bool) error {
	return Options{Strict: strict}.decoder().decodeInner(a, t)
}

func (d *decoder) decodeInner(a *Any, t *Type) error {
	if a.decoded != nil {
		return &ArgumentError{Type: a.typ.name, Msg: "value has already been decoded"}
	}
	v, err := d.decode(t, a.raw)
	if err != nil {
		return err
	}
	a.decoded = v
	return nil
}

func (a *Any) Equal(other Value) bool {
	o, ok := other.(*Any)
	return ok && bytes.Equal(o.raw, a.raw)
}

func (a *Any) appendContent(dst []byte) ([]byte, error) {
	return append(dst, a.raw...), nil
}
