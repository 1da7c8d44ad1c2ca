// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"strings"

	"codello.dev/der/asn1"
)

var (
	// ErrTrailingData indicates bytes after a complete data value, either at the
	// end of a decode buffer or inside constructed content that should have been
	// filled exactly.
	ErrTrailingData = errors.New("trailing data after data value")
	// ErrTooDeep indicates that decoding exceeded the configured nesting depth.
	ErrTooDeep = errors.New("maximum nesting depth exceeded")
)

// A SyntaxError suggests that the encoded data is invalid: a malformed length
// or tag, truncated content, a non-minimal integer, bad BIT STRING padding or
// leftover bytes. SyntaxError values usually wrap a [*tlv.SyntaxError] or one
// of the sentinel errors of this package.
type SyntaxError struct {
	Type string // name of the type being decoded
	Err  error
}

func (e *SyntaxError) Error() string {
	var s strings.Builder
	s.WriteString("der: syntax error")
	if e.Type != "" {
		s.WriteString(" decoding ")
		s.WriteString(e.Type)
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// A TagError indicates that the outer tag of an encoded data value does not
// match the type being decoded. A SEQUENCE treats a TagError on an optional
// component as an absent component.
type TagError struct {
	Type  string     // name of the type being decoded
	Want  []asn1.Tag // acceptable tags, empty for an untagged ANY
	Got   asn1.Tag   // tag found in the input, unless Empty is set
	Empty bool       // the input ended before a data value
}

func (e *TagError) Error() string {
	var s strings.Builder
	s.WriteString("der: tag mismatch")
	if e.Type != "" {
		s.WriteString(" decoding ")
		s.WriteString(e.Type)
	}
	if e.Empty {
		s.WriteString(": no data value")
		return s.String()
	}
	s.WriteString(": got ")
	s.WriteString(e.Got.String())
	for i, t := range e.Want {
		if i == 0 {
			s.WriteString(", want ")
		} else {
			s.WriteString(" or ")
		}
		s.WriteString(t.String())
	}
	return s.String()
}

// A SchemaError indicates an invalid type definition such as a duplicate
// component name or an illegal use of a tagging operator.
type SchemaError struct {
	Type string // name of the type being defined
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Type == "" {
		return "der: invalid schema: " + e.Msg
	}
	return "der: invalid schema for " + e.Type + ": " + e.Msg
}

// An ArgumentError indicates an invalid use of the API, for example
// constructing a value from an unsupported Go value.
type ArgumentError struct {
	Type string // name of the type involved
	Msg  string
}

func (e *ArgumentError) Error() string {
	if e.Type == "" {
		return "der: invalid argument: " + e.Msg
	}
	return "der: invalid argument for " + e.Type + ": " + e.Msg
}

// An EncodeError indicates that a value cannot be encoded, for example because
// a mandatory SEQUENCE component or the alternative of a CHOICE is missing.
type EncodeError struct {
	Type string // name of the type being encoded
	Err  error
}

func (e *EncodeError) Error() string {
	return "der: cannot encode " + e.Type + ": " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
