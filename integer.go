// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"math/big"
	"slices"

	"codello.dev/der/tlv"
)

// Integer is a value of [KindInteger]. Its size is not limited.
type Integer struct {
	typ *Type
	v   *big.Int
}

func newInteger(t *Type, v any) (*Integer, error) {
	i := new(big.Int)
	switch v := v.(type) {
	case int:
		i.SetInt64(int64(v))
	case int8:
		i.SetInt64(int64(v))
	case int16:
		i.SetInt64(int64(v))
	case int32:
		i.SetInt64(int64(v))
	case int64:
		i.SetInt64(v)
	case uint:
		i.SetUint64(uint64(v))
	case uint8:
		i.SetUint64(uint64(v))
	case uint16:
		i.SetUint64(uint64(v))
	case uint32:
		i.SetUint64(uint64(v))
	case uint64:
		i.SetUint64(v)
	case *big.Int:
		if v == nil {
			return nil, &ArgumentError{Type: t.name, Msg: "cannot create a value from a nil *big.Int"}
		}
		i.Set(v)
	case big.Int:
		i.Set(&v)
	default:
		return nil, unsupported(t, v)
	}
	return &Integer{typ: t, v: i}, nil
}

// decodeInteger parses contents of up to eight bytes as an int64 and larger
// contents as a big.Int.
func decodeInteger(t *Type, content []byte) (*Integer, error) {
	if len(content) <= 8 {
		n, err := tlv.ParseInt64(content)
		if err != nil {
			return nil, &SyntaxError{Type: t.name, Err: err}
		}
		return &Integer{typ: t, v: big.NewInt(n)}, nil
	}
	i, err := tlv.ParseInt(content, true)
	if err != nil {
		return nil, &SyntaxError{Type: t.name, Err: err}
	}
	return &Integer{typ: t, v: i}, nil
}

func (i *Integer) Type() *Type             { return i.typ }
func (i *Integer) Encode() ([]byte, error) { return encode(i) }
func (i *Integer) Interface() any          { return i.BigInt() }
func (i *Integer) String() string          { return i.v.String() }

// BigInt returns a copy of the value of i.
func (i *Integer) BigInt() *big.Int { return new(big.Int).Set(i.v) }

// IsInt64 reports whether the value of i can be represented as an int64.
func (i *Integer) IsInt64() bool { return i.v.IsInt64() }

// Int64 returns the value of i as an int64. If the value does not fit, the
// result is undefined.
func (i *Integer) Int64() int64 { return i.v.Int64() }

func (i *Integer) Equal(other Value) bool {
	o, ok := other.(*Integer)
	return ok && o.v.Cmp(i.v) == 0
}

func (i *Integer) appendContent(dst []byte) ([]byte, error) {
	dst = slices.Grow(dst, tlv.IntSize(i.v, true))
	return tlv.AppendInt(dst, i.v, true)
}
