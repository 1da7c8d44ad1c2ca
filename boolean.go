// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"log/slog"
	"strconv"
)

var errInvalidBoolean = errors.New("invalid BOOLEAN encoding")

// Boolean is a value of [KindBoolean].
type Boolean struct {
	typ *Type
	v   bool
}

func newBoolean(t *Type, v any) (*Boolean, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, unsupported(t, v)
	}
	return &Boolean{typ: t, v: b}, nil
}

// decodeBoolean decodes a single content octet. DER requires 0xFF for true. In
// lenient mode any non-zero octet is accepted.
func (d *decoder) decodeBoolean(t *Type, content []byte) (*Boolean, error) {
	if len(content) != 1 {
		return nil, &SyntaxError{Type: t.name, Err: errInvalidBoolean}
	}
	switch content[0] {
	case 0x00:
		return &Boolean{typ: t, v: false}, nil
	case 0xff:
		return &Boolean{typ: t, v: true}, nil
	}
	if d.strict {
		return nil, &SyntaxError{Type: t.name, Err: errInvalidBoolean}
	}
	d.logger.Debug("accepted non-canonical BOOLEAN", slog.String("type", t.name), slog.Int("octet", int(content[0])))
	return &Boolean{typ: t, v: true}, nil
}

func (b *Boolean) Type() *Type             { return b.typ }
func (b *Boolean) Encode() ([]byte, error) { return encode(b) }
func (b *Boolean) Interface() any          { return b.v }
func (b *Boolean) String() string          { return strconv.FormatBool(b.v) }

// Bool returns the value of b.
func (b *Boolean) Bool() bool { return b.v }

func (b *Boolean) Equal(other Value) bool {
	o, ok := other.(*Boolean)
	return ok && o.v == b.v
}

func (b *Boolean) appendContent(dst []byte) ([]byte, error) {
	if b.v {
		return append(dst, 0xff), nil
	}
	return append(dst, 0x00), nil
}
