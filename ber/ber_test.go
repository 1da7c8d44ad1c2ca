// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"errors"
	"testing"

	"codello.dev/der"
	"codello.dev/der/asn1"
	"codello.dev/der/tlv"
)

func TestReadHeader(t *testing.T) {
	tests := map[string]struct {
		data     []byte
		want     Header
		wantRest int
	}{
		"Short":       {[]byte{0x04, 0x02, 0xAA, 0xBB}, Header{asn1.Universal(asn1.TagOctetString, false), 2}, 2},
		"Indefinite":  {[]byte{0x30, 0x80, 0x00, 0x00}, Header{asn1.Universal(asn1.TagSequence, true), LengthIndefinite}, 2},
		"LongForm":    {[]byte{0x04, 0x81, 0x02}, Header{asn1.Universal(asn1.TagOctetString, false), 2}, 0},
		"LeadingZero": {[]byte{0xA1, 0x82, 0x00, 0x05}, Header{asn1.Tag{Class: asn1.ClassContextSpecific, Number: 1, Constructed: true}, 5}, 0},
		"HighTag":     {[]byte{0x9F, 0x28, 0x00}, Header{asn1.Tag{Class: asn1.ClassContextSpecific, Number: 40}, 0}, 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, rest, err := ReadHeader(tt.data)
			if err != nil {
				t.Fatalf("ReadHeader() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadHeader() = %+v, want %+v", got, tt.want)
			}
			if len(rest) != tt.wantRest {
				t.Errorf("ReadHeader() rest = % X, want %d bytes", rest, tt.wantRest)
			}
		})
	}
}

func TestToDER(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want []byte
	}{
		"DER":             {[]byte{0x30, 0x03, 0x02, 0x01, 0x05}, []byte{0x30, 0x03, 0x02, 0x01, 0x05}},
		"Indefinite":      {[]byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00}, []byte{0x30, 0x03, 0x02, 0x01, 0x05}},
		"EmptyIndefinite": {[]byte{0x30, 0x80, 0x00, 0x00}, []byte{0x30, 0x00}},
		"NestedIndefinite": {
			[]byte{0x30, 0x80, 0x30, 0x80, 0x01, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00},
			[]byte{0x30, 0x05, 0x30, 0x03, 0x01, 0x01, 0xFF}},
		"Explicit":      {[]byte{0xA0, 0x80, 0x02, 0x01, 0x01, 0x00, 0x00}, []byte{0xA0, 0x03, 0x02, 0x01, 0x01}},
		"LongLength":    {[]byte{0x04, 0x81, 0x02, 0xAA, 0xBB}, []byte{0x04, 0x02, 0xAA, 0xBB}},
		"LeadingZero":   {[]byte{0x04, 0x82, 0x00, 0x01, 0xAA}, []byte{0x04, 0x01, 0xAA}},
		"Boolean":       {[]byte{0x01, 0x01, 0x01}, []byte{0x01, 0x01, 0xFF}},
		"False":         {[]byte{0x01, 0x01, 0x00}, []byte{0x01, 0x01, 0x00}},
		"TaggedBoolean": {[]byte{0x81, 0x01, 0x01}, []byte{0x81, 0x01, 0x01}},
		"Set": {
			[]byte{0x31, 0x80, 0x02, 0x01, 0x05, 0x02, 0x01, 0x01, 0x00, 0x00},
			[]byte{0x31, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x05}},
		"OctetString": {
			[]byte{0x24, 0x80, 0x04, 0x01, 0xAA, 0x04, 0x02, 0xBB, 0xCC, 0x00, 0x00},
			[]byte{0x04, 0x03, 0xAA, 0xBB, 0xCC}},
		"NestedOctetString": {
			[]byte{0x24, 0x08, 0x24, 0x03, 0x04, 0x01, 0xAA, 0x04, 0x01, 0xBB},
			[]byte{0x04, 0x02, 0xAA, 0xBB}},
		"EmptyOctetString": {[]byte{0x24, 0x00}, []byte{0x04, 0x00}},
		"UTF8String": {
			[]byte{0x2C, 0x06, 0x0C, 0x01, 0x68, 0x0C, 0x01, 0x69},
			[]byte{0x0C, 0x02, 0x68, 0x69}},
		"BitString": {
			[]byte{0x23, 0x09, 0x03, 0x02, 0x00, 0xAA, 0x03, 0x03, 0x04, 0xBB, 0xC0},
			[]byte{0x03, 0x04, 0x04, 0xAA, 0xBB, 0xC0}},
		"EmptyBitString": {[]byte{0x23, 0x80, 0x00, 0x00}, []byte{0x03, 0x01, 0x00}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ToDER(tt.data)
			if err != nil {
				t.Fatalf("ToDER() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ToDER() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestToDER_Errors(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		wantErr error
	}{
		"Empty":                   {nil, tlv.ErrEmpty},
		"Trailing":                {[]byte{0x05, 0x00, 0x00}, der.ErrTrailingData},
		"Truncated":               {[]byte{0x04, 0x05, 0xAA}, tlv.ErrTruncated},
		"TruncatedLength":         {[]byte{0x04, 0x82, 0x01}, tlv.ErrTruncated},
		"MissingEndOfContents":    {[]byte{0x30, 0x80, 0x02, 0x01, 0x05}, tlv.ErrTruncated},
		"ExceedsParent":           {[]byte{0x30, 0x03, 0x04, 0x05, 0xAA}, tlv.ErrTruncated},
		"IndefinitePrimitive":     {[]byte{0x04, 0x80, 0xAA, 0x00, 0x00}, ErrIndefinitePrimitive},
		"EndOfContents":           {[]byte{0x00, 0x00}, ErrEndOfContents},
		"EndOfContentsInDefinite": {[]byte{0x30, 0x02, 0x00, 0x00}, ErrEndOfContents},
		"ForeignSegment":          {[]byte{0x24, 0x03, 0x02, 0x01, 0x05}, ErrSegment},
		"BitStringPadding": {
			[]byte{0x23, 0x08, 0x03, 0x02, 0x04, 0xA0, 0x03, 0x02, 0x00, 0xBB}, ErrSegment},
		"BitStringEmptySegment": {[]byte{0x23, 0x02, 0x03, 0x00}, ErrSegment},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ToDER(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ToDER() = % X, %v, want error %v", got, err, tt.wantErr)
			}
		})
	}
}

func TestOptions_MaxDepth(t *testing.T) {
	data := []byte{0x30, 0x80, 0x30, 0x80, 0x30, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if _, err := (Options{MaxDepth: 2}).ToDER(data); !errors.Is(err, der.ErrTooDeep) {
		t.Errorf("ToDER() error = %v, want ErrTooDeep", err)
	}
	got, err := (Options{MaxDepth: 3}).ToDER(data)
	if err != nil {
		t.Fatalf("ToDER() error = %v", err)
	}
	if want := []byte{0x30, 0x04, 0x30, 0x02, 0x30, 0x00}; !bytes.Equal(got, want) {
		t.Errorf("ToDER() = % X, want % X", got, want)
	}
}

func TestToDER_Decode(t *testing.T) {
	typ := der.Must(der.NewSequence("Record",
		der.Component{Name: "id", Type: der.TypeInteger},
		der.Component{Name: "data", Type: der.TypeOctetString},
		der.Component{Name: "ok", Type: der.TypeBoolean},
	))
	data := []byte{
		0x30, 0x80,
		0x02, 0x01, 0x07,
		0x24, 0x80, 0x04, 0x01, 0x68, 0x04, 0x01, 0x69, 0x00, 0x00,
		0x01, 0x01, 0x2A,
		0x00, 0x00,
	}
	b, err := ToDER(data)
	if err != nil {
		t.Fatalf("ToDER() error = %v", err)
	}
	v, err := typ.Decode(b, true)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got, want := v.String(), "{id: 7, data: hi, ok: true}"; got != want {
		t.Errorf("Decode() = %s, want %s", got, want)
	}
}
