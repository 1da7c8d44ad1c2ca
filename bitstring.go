// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"

	"codello.dev/der/asn1"
)

var (
	errBitStringEmpty   = errors.New("empty BIT STRING content")
	errBitStringPadding = errors.New("invalid BIT STRING padding")
)

// BitString is a value of [KindBitString].
type BitString struct {
	typ *Type
	v   asn1.BitString // canonical
}

func newBitString(t *Type, v any) (*BitString, error) {
	switch v := v.(type) {
	case string:
		bs, err := asn1.ParseBitString(v)
		if err != nil {
			return nil, &ArgumentError{Type: t.name, Msg: err.Error()}
		}
		return &BitString{typ: t, v: bs}, nil
	case asn1.BitString:
		if !v.IsValid() {
			return nil, &ArgumentError{Type: t.name, Msg: "bit length exceeds the number of bytes"}
		}
		return &BitString{typ: t, v: v.Canonical()}, nil
	}
	return nil, unsupported(t, v)
}

// decodeBitString decodes the padding octet followed by the packed bits. The
// padding bits in the final octet must be zero in both decoding modes.
func decodeBitString(t *Type, content []byte) (*BitString, error) {
	if len(content) == 0 {
		return nil, &SyntaxError{Type: t.name, Err: errBitStringEmpty}
	}
	pad := int(content[0])
	data := content[1:]
	if pad > 7 || (len(data) == 0 && pad != 0) {
		return nil, &SyntaxError{Type: t.name, Err: errBitStringPadding}
	}
	if len(data) > 0 && data[len(data)-1]&(1<<pad-1) != 0 {
		return nil, &SyntaxError{Type: t.name, Err: errBitStringPadding}
	}
	bs := asn1.BitString{Bytes: make([]byte, len(data)), BitLength: len(data)*8 - pad}
	copy(bs.Bytes, data)
	return &BitString{typ: t, v: bs}, nil
}

func (b *BitString) Type() *Type             { return b.typ }
func (b *BitString) Encode() ([]byte, error) { return encode(b) }
func (b *BitString) String() string          { return b.v.String() }

// Interface returns the bits as an [asn1.BitString].
func (b *BitString) Interface() any { return b.BitString() }

// BitString returns a copy of the bits of b.
func (b *BitString) BitString() asn1.BitString { return b.v.Canonical() }

func (b *BitString) Equal(other Value) bool {
	o, ok := other.(*BitString)
	return ok && o.v.Equal(b.v)
}

func (b *BitString) appendContent(dst []byte) ([]byte, error) {
	dst = append(dst, byte(b.v.Padding()))
	return append(dst, b.v.Bytes...), nil
}
