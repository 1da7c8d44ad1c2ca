// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"iter"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldParameters is the parsed representation of the `der` tag of a struct
// field.
type FieldParameters struct {
	Name     string // component name, empty if derived from the field name
	Ignore   bool   // true iff this field should be ignored
	OmitZero bool   // true iff the field is absent if it holds its zero value
}

// ParseFieldParameters parses a tag string of the form "name,omitzero". The
// tag "-" ignores a field. Unknown options are ignored.
func ParseFieldParameters(str string) (ret FieldParameters) {
	if str == "-" {
		ret.Ignore = true
		return ret
	}
	name, opts, _ := strings.Cut(str, ",")
	ret.Name = name
	for part := range strings.SplitSeq(opts, ",") {
		switch part {
		case "omitzero":
			ret.OmitZero = true
		}
	}
	return ret
}

// ComponentName returns the component name used for a struct field without an
// explicit name: the field name with its first letter in lower case.
func ComponentName(field string) string {
	r, n := utf8.DecodeRuneInString(field)
	return string(unicode.ToLower(r)) + field[n:]
}

// StructFields returns a sequence that iterates over the component names and
// values of the struct v. Struct fields with a `der:"-"` tag are ignored, as
// are non-exported struct fields. Fields of embedded structs without a name
// are returned as if they were fields of the containing struct.
//
// Nil pointers and interfaces are skipped, as are zero values of fields with
// the omitzero option. Other pointers and interfaces are dereferenced once.
func StructFields(v reflect.Value) iter.Seq2[string, reflect.Value] {
	return func(yield func(string, reflect.Value) bool) {
		t := v.Type()
		for i := range t.NumField() {
			field := t.Field(i)
			params := ParseFieldParameters(field.Tag.Get("der"))
			if params.Ignore || !field.IsExported() {
				continue
			}
			fv := v.Field(i)
			if field.Anonymous && params.Name == "" && field.Type.Kind() == reflect.Struct {
				for name, vv := range StructFields(fv) {
					if !yield(name, vv) {
						return
					}
				}
				continue
			}
			if params.OmitZero && fv.IsZero() {
				continue
			}
			if fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			name := params.Name
			if name == "" {
				name = ComponentName(field.Name)
			}
			if !yield(name, fv) {
				return
			}
		}
	}
}
