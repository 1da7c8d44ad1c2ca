// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import "errors"

var (
	// ErrEmpty indicates that a value was expected but the input was empty.
	ErrEmpty = errors.New("empty input")
	// ErrTruncated indicates that the input ended in the middle of a value.
	ErrTruncated = errors.New("truncated data value")
	// ErrNotMinimal indicates a redundant leading byte in an integer, a length
	// or a tag number.
	ErrNotMinimal = errors.New("not minimally encoded")
	// ErrTooLarge indicates a length or tag number that does not fit the
	// corresponding Go type.
	ErrTooLarge = errors.New("value too large")
	// ErrNegative is returned when a negative integer is encoded as unsigned.
	// It is the only error of this package that is caused by the caller rather
	// than the input.
	ErrNegative = errors.New("unsigned integer cannot be negative")
)

// SyntaxError represents an error in the TLV encoding. Part names the element
// of the encoding that was malformed, e.g. "length" or "integer".
type SyntaxError struct {
	Part string
	Err  error // underlying error
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Error() string {
	s := "tlv: malformed"
	if e.Part != "" {
		s += " " + e.Part
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
