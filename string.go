// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"slices"
)

// String is a value of [KindString]. It holds the content octets of an OCTET
// STRING or one of the restricted character string and time types. The
// content is not validated against the character set of the type.
type String struct {
	typ *Type
	b   []byte
}

func newString(t *Type, v any) (*String, error) {
	switch v := v.(type) {
	case string:
		return &String{typ: t, b: []byte(v)}, nil
	case []byte:
		return &String{typ: t, b: slices.Clone(v)}, nil
	}
	return nil, unsupported(t, v)
}

func decodeString(t *Type, content []byte) *String {
	return &String{typ: t, b: bytes.Clone(content)}
}

func (s *String) Type() *Type             { return s.typ }
func (s *String) Encode() ([]byte, error) { return encode(s) }

// Interface returns the content octets. For text types the result can be
// converted to a string.
func (s *String) Interface() any { return slices.Clone(s.b) }

// String returns the content octets as a Go string.
func (s *String) String() string { return string(s.b) }

// Bytes returns a copy of the content octets of s.
func (s *String) Bytes() []byte { return slices.Clone(s.b) }

func (s *String) Equal(other Value) bool {
	o, ok := other.(*String)
	return ok && bytes.Equal(o.b, s.b)
}

func (s *String) appendContent(dst []byte) ([]byte, error) {
	return append(dst, s.b...), nil
}
