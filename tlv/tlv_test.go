// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"codello.dev/der/asn1"
)

func TestAppendInt(t *testing.T) {
	tests := map[string]struct {
		v       int64
		signed  bool
		want    []byte
		wantErr error
	}{
		"Zero":         {0, true, []byte{0x00}, nil},
		"MinusOne":     {-1, true, []byte{0xff}, nil},
		"Small":        {127, true, []byte{0x7f}, nil},
		"PadPositive":  {128, true, []byte{0x00, 0x80}, nil},
		"NegBoundary":  {-128, true, []byte{0x80}, nil},
		"PadNegative":  {-129, true, []byte{0xff, 0x7f}, nil},
		"Large":        {0x0102, true, []byte{0x01, 0x02}, nil},
		"Unsigned":     {128, false, []byte{0x80}, nil},
		"UnsignedZero": {0, false, []byte{0x00}, nil},
		"UnsignedNeg":  {-5, false, nil, ErrNegative},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v := big.NewInt(tt.v)
			got, err := AppendInt(nil, v, tt.signed)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AppendInt(%d) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendInt(%d) = %# x, want %# x", tt.v, got, tt.want)
			}
			if n := IntSize(v, tt.signed); n != len(tt.want) {
				t.Errorf("IntSize(%d) = %d, want %d", tt.v, n, len(tt.want))
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		signed  bool
		want    int64
		wantErr error
	}{
		"Zero":             {[]byte{0x00}, true, 0, nil},
		"MinusOne":         {[]byte{0xff}, true, -1, nil},
		"PaddedPositive":   {[]byte{0x00, 0x80}, true, 128, nil},
		"PaddedNegative":   {[]byte{0xff, 0x7f}, true, -129, nil},
		"UnsignedHighBit":  {[]byte{0xff}, false, 255, nil},
		"UnsignedLeadingF": {[]byte{0xff, 0x80}, false, 0xff80, nil},
		"Empty":            {nil, true, 0, ErrEmpty},
		"RedundantZero":    {[]byte{0x00, 0x01}, true, 0, ErrNotMinimal},
		"RedundantZeroU":   {[]byte{0x00, 0x01}, false, 0, ErrNotMinimal},
		"RedundantFF":      {[]byte{0xff, 0x80}, true, 0, ErrNotMinimal},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseInt(tt.data, tt.signed)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseInt(%# x) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			if err != nil {
				var syntaxErr *SyntaxError
				if !errors.As(err, &syntaxErr) {
					t.Errorf("ParseInt(%# x) error is %T, want *SyntaxError", tt.data, err)
				}
				return
			}
			if !got.IsInt64() || got.Int64() != tt.want {
				t.Errorf("ParseInt(%# x) = %s, want %d", tt.data, got, tt.want)
			}
			if tt.signed {
				got64, err := ParseInt64(tt.data)
				if err != nil || got64 != tt.want {
					t.Errorf("ParseInt64(%# x) = %d, %v, want %d", tt.data, got64, err, tt.want)
				}
			}
		})
	}
}

func TestParseInt64_TooLarge(t *testing.T) {
	_, err := ParseInt64([]byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("ParseInt64() error = %v, want ErrTooLarge", err)
	}
	got, err := ParseInt64([]byte{0x80, 0, 0, 0, 0, 0, 0, 0})
	if err != nil || got != math.MinInt64 {
		t.Errorf("ParseInt64() = %d, %v, want %d", got, err, int64(math.MinInt64))
	}
}

func TestInt_RoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(math.MaxInt64),
		big.NewInt(math.MinInt64),
		new(big.Int).Lsh(big.NewInt(1), 200),
		new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 200)),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1)),
	}
	for i := int64(-70000); i <= 70000; i += 7 {
		values = append(values, big.NewInt(i))
	}
	for _, v := range values {
		for _, signed := range []bool{true, false} {
			if !signed && v.Sign() < 0 {
				continue
			}
			b, err := AppendInt(nil, v, signed)
			if err != nil {
				t.Fatalf("AppendInt(%s, %v) error = %v", v, signed, err)
			}
			got, err := ParseInt(b, signed)
			if err != nil {
				t.Fatalf("ParseInt(%# x, %v) error = %v", b, signed, err)
			}
			if got.Cmp(v) != 0 {
				t.Errorf("ParseInt(AppendInt(%s, %v)) = %s", v, signed, got)
			}
		}
	}
}

func TestAppendLength(t *testing.T) {
	tests := map[string]struct {
		n    int
		want []byte
	}{
		"Zero":      {0, []byte{0x00}},
		"ShortMax":  {127, []byte{0x7f}},
		"LongOne":   {128, []byte{0x81, 0x80}},
		"LongTwo":   {256, []byte{0x82, 0x01, 0x00}},
		"LongThree": {0x010000, []byte{0x83, 0x01, 0x00, 0x00}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := AppendLength(nil, tt.n)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendLength(%d) = %# x, want %# x", tt.n, got, tt.want)
			}
			if l := LengthSize(tt.n); l != len(tt.want) {
				t.Errorf("LengthSize(%d) = %d, want %d", tt.n, l, len(tt.want))
			}
		})
	}
}

func TestReadLength(t *testing.T) {
	tests := map[string]struct {
		data     []byte
		want     int
		wantRest []byte
		wantErr  error
	}{
		"Short":          {[]byte{0x05, 0xAA}, 5, []byte{0xAA}, nil},
		"Long":           {[]byte{0x82, 0x01, 0x00}, 256, []byte{}, nil},
		"LongShortValue": {[]byte{0x81, 0x05}, 5, []byte{}, nil},
		"Empty":          {nil, 0, nil, ErrTruncated},
		"Indefinite":     {[]byte{0x80, 0x00}, 0, nil, ErrEmpty},
		"MissingOctets":  {[]byte{0x83, 0x01}, 0, nil, ErrTruncated},
		"NotMinimal":     {[]byte{0x82, 0x00, 0x05}, 0, nil, ErrNotMinimal},
		"Overflow":       {[]byte{0x89, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}, 0, nil, ErrTooLarge},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, rest, err := ReadLength(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadLength(%# x) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("ReadLength(%# x) = %d, want %d", tt.data, got, tt.want)
			}
			if !bytes.Equal(rest, tt.wantRest) {
				t.Errorf("ReadLength(%# x) rest = %# x, want %# x", tt.data, rest, tt.wantRest)
			}
		})
	}
}

func TestLength_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 127, 128, 255, 256, 65535, 65536, 1 << 24, math.MaxInt32, math.MaxInt} {
		got, rest, err := ReadLength(AppendLength(nil, n))
		if err != nil || got != n || len(rest) != 0 {
			t.Errorf("ReadLength(AppendLength(%d)) = %d, %# x, %v", n, got, rest, err)
		}
	}
}

func TestTag(t *testing.T) {
	tests := map[string]struct {
		tag  asn1.Tag
		want []byte
	}{
		"Integer":         {asn1.Universal(asn1.TagInteger, false), []byte{0x02}},
		"Sequence":        {asn1.Universal(asn1.TagSequence, true), []byte{0x30}},
		"ContextExplicit": {asn1.Tag{Class: asn1.ClassContextSpecific, Number: 0, Constructed: true}, []byte{0xa0}},
		"Application":     {asn1.Tag{Class: asn1.ClassApplication, Number: 30}, []byte{0x5e}},
		"HighNumber":      {asn1.Tag{Class: asn1.ClassContextSpecific, Number: 31}, []byte{0x9f, 0x1f}},
		"HighNumberLong":  {asn1.Tag{Class: asn1.ClassPrivate, Number: 201, Constructed: true}, []byte{0xff, 0x81, 0x49}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := AppendTag(nil, tt.tag)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendTag(%v) = %# x, want %# x", tt.tag, got, tt.want)
			}
			if l := TagSize(tt.tag); l != len(tt.want) {
				t.Errorf("TagSize(%v) = %d, want %d", tt.tag, l, len(tt.want))
			}
			back, rest, err := ReadTag(append(got, 0x42))
			if err != nil {
				t.Fatalf("ReadTag(%# x) error = %v", got, err)
			}
			if back != tt.tag || !bytes.Equal(rest, []byte{0x42}) {
				t.Errorf("ReadTag(%# x) = %v, %# x, want %v", got, back, rest, tt.tag)
			}
		})
	}
}

func TestReadTag_Error(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		wantErr error
	}{
		"Empty":          {nil, ErrEmpty},
		"Truncated":      {[]byte{0x1f}, ErrTruncated},
		"TruncatedMulti": {[]byte{0x1f, 0x81}, ErrTruncated},
		"LeadingZero":    {[]byte{0x1f, 0x80, 0x21}, ErrNotMinimal},
		"LowNumber":      {[]byte{0x1f, 0x05}, ErrNotMinimal},
		"Overflow":       {[]byte{0x1f, 0x82, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, ErrTooLarge},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadTag(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadTag(%# x) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := map[string]struct {
		data        []byte
		wantHeader  Header
		wantContent []byte
		wantRest    []byte
		wantErr     error
	}{
		"Exact":     {[]byte{0x02, 0x01, 0x05}, Header{asn1.Universal(asn1.TagInteger, false), 1}, []byte{0x05}, []byte{}, nil},
		"Trailing":  {[]byte{0x04, 0x00, 0x01}, Header{asn1.Universal(asn1.TagOctetString, false), 0}, []byte{}, []byte{0x01}, nil},
		"Truncated": {[]byte{0x30, 0x03, 0x01}, Header{}, nil, nil, ErrTruncated},
		"NoLength":  {[]byte{0x30}, Header{}, nil, nil, ErrTruncated},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, content, rest, err := Split(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Split(%# x) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tt.wantHeader, h); diff != "" {
				t.Errorf("Split(%# x) header mismatch (-want +got):\n%s", tt.data, diff)
			}
			if !bytes.Equal(content, tt.wantContent) || !bytes.Equal(rest, tt.wantRest) {
				t.Errorf("Split(%# x) = %# x, %# x, want %# x, %# x", tt.data, content, rest, tt.wantContent, tt.wantRest)
			}
			if enc := AppendHeader(nil, h); !bytes.Equal(enc, tt.data[:h.Size()]) {
				t.Errorf("AppendHeader(%v) = %# x, want %# x", h, enc, tt.data[:h.Size()])
			}
		})
	}
}

func TestHeader_String(t *testing.T) {
	h := Header{Tag: asn1.Universal(asn1.TagSequence, true), Length: 3}
	if got, want := h.String(), "[UNIVERSAL 16]/c:3"; got != want {
		t.Errorf("Header.String() = %q, want %q", got, want)
	}
}
