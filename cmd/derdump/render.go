// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"codello.dev/der"
	"codello.dev/der/asn1"
)

// renderers write a decoded value in one of the output formats.
var renderers = map[string]func(io.Writer, der.Value) error{
	"json": renderJSON,
	"text": renderText,
}

// renderJSON writes v as indented JSON. SEQUENCE and CHOICE values become
// objects with members in declaration order, absent components are omitted.
// Integers that do not fit into 64 bits are written as JSON numbers of
// arbitrary size.
func renderJSON(w io.Writer, v der.Value) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonValue(v))
}

// object is a JSON object that keeps the order of its members.
type object []member

type member struct {
	key   string
	value any
}

func (o object) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func jsonValue(v der.Value) any {
	switch v := v.(type) {
	case *der.Boolean:
		return v.Bool()
	case *der.Integer:
		if v.IsInt64() {
			return v.Int64()
		}
		return json.Number(v.String())
	case *der.String:
		if s, ok := text(v); ok {
			return s
		}
		return hex.EncodeToString(v.Bytes())
	case *der.BitString:
		return v.String()
	case *der.Any:
		if inner, ok := v.Decoded(); ok {
			return jsonValue(inner)
		}
		return object{{"der", hex.EncodeToString(v.Raw())}}
	case *der.Choice:
		name, inner := v.Chosen()
		if inner == nil {
			return object{}
		}
		return object{{name, jsonValue(inner)}}
	case *der.Sequence:
		o := object{}
		for name, c := range v.All() {
			if c != nil {
				o = append(o, member{name, jsonValue(c)})
			}
		}
		return o
	case *der.Repeated:
		a := make([]any, 0, v.Len())
		for _, e := range v.All() {
			a = append(a, jsonValue(e))
		}
		return a
	}
	return v.String()
}

// renderText writes v as an indented tree with one line per value.
func renderText(w io.Writer, v der.Value) error {
	var b strings.Builder
	writeText(&b, v.Type().Name(), v, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeText(b *strings.Builder, label string, v der.Value, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(label)
	if a, ok := v.(*der.Any); ok {
		inner, decoded := a.Decoded()
		if !decoded {
			fmt.Fprintf(b, ": ANY %X\n", a.Raw())
			return
		}
		v = inner
	}
	switch v := v.(type) {
	case *der.Choice:
		name, inner := v.Chosen()
		if inner == nil {
			b.WriteString(": {}\n")
			return
		}
		b.WriteString(":\n")
		writeText(b, name, inner, depth+1)
	case *der.Sequence:
		b.WriteString(":\n")
		for name, c := range v.All() {
			if c != nil {
				writeText(b, name, c, depth+1)
			}
		}
	case *der.Repeated:
		if v.Len() == 0 {
			b.WriteString(": []\n")
			return
		}
		b.WriteString(":\n")
		for i, e := range v.All() {
			writeText(b, "["+strconv.Itoa(i)+"]", e, depth+1)
		}
	case *der.String:
		if s, ok := text(v); ok {
			fmt.Fprintf(b, ": %q\n", s)
		} else {
			fmt.Fprintf(b, ": %X\n", v.Bytes())
		}
	default:
		fmt.Fprintf(b, ": %s\n", v)
	}
}

// text returns the contents of s if s holds printable text. OCTET STRING
// values are never treated as text.
func text(s *der.String) (string, bool) {
	if tags := s.Type().Tags(); len(tags) > 0 && tags[0] == asn1.Universal(asn1.TagOctetString, false) {
		return "", false
	}
	b := s.Bytes()
	if !utf8.Valid(b) {
		return "", false
	}
	str := string(b)
	if strings.IndexFunc(str, func(r rune) bool { return !unicode.IsPrint(r) && !unicode.IsSpace(r) }) >= 0 {
		return "", false
	}
	return str, true
}
