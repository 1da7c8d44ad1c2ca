// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package der implements a schema-driven codec for a subset of ASN.1 using the
// Distinguished Encoding Rules (DER) defined in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// Data is never decoded generically. Every decode operation is performed
// against a [*Type] describing the expected ASN.1 type. Applications build
// their types by composing the predefined types of this package:
//
//	var AlgorithmIdentifier = der.Must(der.NewSequence("AlgorithmIdentifier",
//		der.Component{Name: "algorithm", Type: der.TypeOctetString},
//		der.Component{Name: "parameters", Type: der.TypeAny, Optional: true},
//	))
//
// Tags are applied with [Explicit] and [Implicit]. Decoding a buffer produces
// a [Value], one concrete Go type per [Kind]. Values can also be built from Go
// values using [Type.New] and are always encoded in DER.
//
// # Strict and Lenient Decoding
//
// Decoding operates in strict or lenient mode. Strict mode accepts DER only.
// Lenient mode tolerates exactly two deviations: a BOOLEAN true encoded as any
// non-zero byte, and the failure to decode an ANY component whose type is
// defined by another component of the same SEQUENCE. Minimal integer encoding
// and BIT STRING padding are enforced in both modes. Use [Options] to
// configure the mode together with a nesting limit and a logger that is
// informed about tolerated deviations.
//
// The order of SET OF elements is not verified when decoding, in both modes.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package der

import (
	"bytes"
	"log/slog"

	"codello.dev/der/asn1"
	"codello.dev/der/tlv"
)

// DefaultMaxDepth is the nesting depth used if [Options.MaxDepth] is zero.
const DefaultMaxDepth = 64

// Options configure decoding. The zero value decodes leniently with
// [DefaultMaxDepth] and without logging.
type Options struct {
	// Strict enables DER-only decoding.
	Strict bool

	// MaxDepth limits the number of nested data values. Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// Logger receives debug records about deviations tolerated in lenient mode.
	// If nil, nothing is logged.
	Logger *slog.Logger
}

// Decode decodes b as a single data value of type t. Bytes after the data
// value result in a [*SyntaxError].
func (o Options) Decode(t *Type, b []byte) (Value, error) {
	return o.decoder().decode(t, b)
}

// Read decodes the data value of type t at the start of b and returns it
// together with the remaining bytes.
func (o Options) Read(t *Type, b []byte) (Value, []byte, error) {
	return o.decoder().read(t, b)
}

// FromContent decodes a value of type t from its content octets, i.e. with
// all tags and lengths already stripped. For untagged ANY and CHOICE types the
// content is the complete encoding of the inner data value.
func (o Options) FromContent(t *Type, content []byte) (Value, error) {
	return o.decoder().fromContent(t, content)
}

func (o Options) decoder() *decoder {
	d := &decoder{strict: o.Strict, maxDepth: o.MaxDepth, logger: o.Logger}
	if d.maxDepth <= 0 {
		d.maxDepth = DefaultMaxDepth
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// Decode is a shorthand for Options{Strict: strict}.Decode(t, b).
func (t *Type) Decode(b []byte, strict bool) (Value, error) {
	return Options{Strict: strict}.Decode(t, b)
}

// Read is a shorthand for Options{Strict: strict}.Read(t, b).
func (t *Type) Read(b []byte, strict bool) (Value, []byte, error) {
	return Options{Strict: strict}.Read(t, b)
}

// FromContent is a shorthand for Options{Strict: strict}.FromContent(t, content).
func (t *Type) FromContent(content []byte, strict bool) (Value, error) {
	return Options{Strict: strict}.FromContent(t, content)
}

// decoder holds the state of a single decode operation.
type decoder struct {
	strict   bool
	depth    int
	maxDepth int
	logger   *slog.Logger
}

func (d *decoder) decode(t *Type, b []byte) (Value, error) {
	v, rest, err := d.read(t, b)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &SyntaxError{Type: t.name, Err: ErrTrailingData}
	}
	return v, nil
}

// read implements the tag-driven framing shared by all types. The outermost
// tag is compared by its identifier octets. Every inner tag must frame a data
// value that fills the content of its enclosing tag exactly.
func (d *decoder) read(t *Type, b []byte) (Value, []byte, error) {
	if d.depth >= d.maxDepth {
		return nil, nil, &SyntaxError{Type: t.name, Err: ErrTooDeep}
	}
	d.depth++
	defer func() { d.depth-- }()

	if len(t.tags) == 0 {
		var v Value
		var rest []byte
		var err error
		switch t.kind {
		case KindAny:
			v, rest, err = d.readAny(t, b)
		case KindChoice:
			v, rest, err = d.readChoice(t, b)
		default:
			return nil, nil, &SchemaError{Type: t.name, Msg: "cannot decode an untagged scalar type"}
		}
		if err != nil {
			return nil, nil, err
		}
		return v, rest, nil
	}

	var content, rest []byte
	for i := len(t.tags) - 1; i >= 0; i-- {
		if !bytes.HasPrefix(b, t.tagBytes[i]) {
			return nil, nil, d.tagError(t, t.tags[i], b)
		}
		n, r, err := tlv.ReadLength(b[len(t.tagBytes[i]):])
		if err != nil {
			return nil, nil, &SyntaxError{Type: t.name, Err: err}
		}
		if len(r) < n {
			return nil, nil, &SyntaxError{Type: t.name, Err: tlv.ErrTruncated}
		}
		if i == len(t.tags)-1 {
			rest = r[n:]
		} else if len(r) != n {
			return nil, nil, &SyntaxError{Type: t.name, Err: ErrTrailingData}
		}
		content = r[:n]
		b = content
	}
	v, err := d.fromContent(t, content)
	if err != nil {
		return nil, nil, err
	}
	return v, rest, nil
}

// tagError returns the error for a data value at the start of b that does not
// start with the identifier octets of want.
func (d *decoder) tagError(t *Type, want asn1.Tag, b []byte) error {
	if len(b) == 0 {
		return &TagError{Type: t.name, Want: []asn1.Tag{want}, Empty: true}
	}
	got, _, err := tlv.ReadTag(b)
	if err != nil {
		return &SyntaxError{Type: t.name, Err: err}
	}
	return &TagError{Type: t.name, Want: []asn1.Tag{want}, Got: got}
}

// fromContent dispatches on the kind of t to decode content octets.
func (d *decoder) fromContent(t *Type, content []byte) (Value, error) {
	var v Value
	var err error
	switch t.kind {
	case KindBoolean:
		v, err = d.decodeBoolean(t, content)
	case KindInteger:
		v, err = decodeInteger(t, content)
	case KindString:
		v = decodeString(t, content)
	case KindBitString:
		v, err = decodeBitString(t, content)
	case KindAny:
		v, err = decodeAny(t, content)
	case KindChoice:
		v, err = d.decodeChoice(t, content)
	case KindSequence:
		v, err = d.decodeSequence(t, content)
	case KindSequenceOf, KindSetOf:
		v, err = d.decodeRepeated(t, content)
	default:
		panic("der: unknown kind " + t.kind.String())
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
