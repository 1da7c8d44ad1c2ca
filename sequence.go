// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"strings"

	"codello.dev/der/asn1"
	"codello.dev/der/internal"
)

var errMissingComponent = errors.New("missing mandatory component")

// A Component is a member of a SEQUENCE type.
//
// A component with a Default is implicitly optional. The default is converted
// using Type when the SEQUENCE type is created. A component whose value
// encodes to the same bytes as the default is omitted from the encoding.
//
// An ANY component may name another component of the same SEQUENCE in
// DefinedBy. After decoding, the value of that selector component is formatted
// using [Value.String] and looked up in Lookup. If a type is found, the ANY
// component is decoded against it using [Any.DecodeInner].
type Component struct {
	Name      string
	Type      *Type
	Optional  bool
	Default   any
	DefinedBy string
	Lookup    map[string]*Type
}

// component is the validated form of a Component.
type component struct {
	Component
	encodedDefault []byte // nil if there is no default
	selector       int    // index of the DefinedBy component
}

// optional reports whether c may be absent from an encoding.
func (c *component) optional() bool {
	return c.Optional || c.encodedDefault != nil
}

// defaultValue returns a fresh copy of the default value or nil if c has no
// default.
func (c *component) defaultValue() Value {
	if c.encodedDefault == nil {
		return nil
	}
	v, err := c.Type.Decode(c.encodedDefault, true)
	if err != nil {
		panic("der: cannot decode default of " + c.Name + ": " + err.Error())
	}
	return v
}

// NewSequence creates a SEQUENCE type with the given components. Component
// names must be unique and every component type must be tagged or be an ANY or
// CHOICE type. A DefinedBy selector must name another component and can only
// be used on ANY components.
func NewSequence(name string, components ...Component) (*Type, error) {
	t := &Type{
		name:           name,
		kind:           KindSequence,
		components:     make([]*component, len(components)),
		componentIndex: make(map[string]int, len(components)),
	}
	t = t.withTags(name, []asn1.Tag{asn1.Universal(asn1.TagSequence, true)})
	for i, c := range components {
		if c.Name == "" || c.Type == nil {
			return nil, &SchemaError{Type: name, Msg: "component without name or type"}
		}
		if _, ok := t.componentIndex[c.Name]; ok {
			return nil, &SchemaError{Type: name, Msg: "duplicate component name " + c.Name}
		}
		if !c.Type.framed() {
			return nil, &SchemaError{Type: name, Msg: "component " + c.Name + " has an untagged scalar type"}
		}
		t.componentIndex[c.Name] = i
		t.components[i] = &component{Component: c, selector: -1}
		if c.Default != nil {
			def, err := c.Type.New(c.Default)
			if err != nil {
				return nil, &SchemaError{Type: name, Msg: "invalid default for " + c.Name + ": " + err.Error()}
			}
			enc, err := def.Encode()
			if err != nil {
				return nil, &SchemaError{Type: name, Msg: "invalid default for " + c.Name + ": " + err.Error()}
			}
			t.components[i].encodedDefault = enc
		}
	}
	for _, c := range t.components {
		if c.DefinedBy == "" {
			continue
		}
		if c.Type.kind != KindAny {
			return nil, &SchemaError{Type: name, Msg: "component " + c.Name + " is defined by " + c.DefinedBy + " but is not an ANY"}
		}
		j, ok := t.componentIndex[c.DefinedBy]
		if !ok || t.components[j] == c {
			return nil, &SchemaError{Type: name, Msg: "component " + c.Name + " is defined by unknown component " + c.DefinedBy}
		}
		c.selector = j
	}
	return t, nil
}

// Sequence is a value of [KindSequence]. Components are stored in declaration
// order. An absent optional component is nil. A defaulted component always
// holds a value, which is its default unless set otherwise.
type Sequence struct {
	typ  *Type
	vals []Value
}

// newSequence creates a Sequence from a map of component names to Go values.
// Components missing from the map are set to their default.
func newSequence(t *Type, v any) (*Sequence, error) {
	m, ok := v.(map[string]any)
	if !ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return nil, unsupported(t, v)
		}
		m = make(map[string]any, rv.NumField())
		for name, fv := range internal.StructFields(rv) {
			m[name] = fv.Interface()
		}
	}
	for name := range m {
		if _, ok := t.componentIndex[name]; !ok {
			return nil, &ArgumentError{Type: t.name, Msg: "unknown component " + name}
		}
	}
	s := &Sequence{typ: t, vals: make([]Value, len(t.components))}
	for i, c := range t.components {
		if err := s.set(i, m[c.Name]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// decodeSequence decodes the components in declaration order. An optional
// component is considered absent if decoding it fails with a [*TagError]; no
// bytes are consumed in that case. Afterward every ANY component with a
// DefinedBy selector is decoded against the type found in its lookup table.
func (d *decoder) decodeSequence(t *Type, content []byte) (*Sequence, error) {
	s := &Sequence{typ: t, vals: make([]Value, len(t.components))}
	for i, c := range t.components {
		if c.optional() && !c.Type.matches(content) {
			s.vals[i] = c.defaultValue()
			continue
		}
		v, rest, err := d.read(c.Type, content)
		var tagErr *TagError
		if c.optional() && errors.As(err, &tagErr) {
			s.vals[i] = c.defaultValue()
			continue
		}
		if err != nil {
			return nil, err
		}
		s.vals[i] = v
		content = rest
	}
	if len(content) > 0 {
		return nil, &SyntaxError{Type: t.name, Err: ErrTrailingData}
	}

	for i, c := range t.components {
		if c.selector < 0 || s.vals[c.selector] == nil {
			continue
		}
		a, ok := s.vals[i].(*Any)
		if !ok {
			continue
		}
		key := s.vals[c.selector].String()
		typ, ok := c.Lookup[key]
		if !ok || typ == nil {
			continue
		}
		if err := d.decodeInner(a, typ); err != nil {
			if d.strict {
				return nil, err
			}
			d.logger.Debug("ignored defined-by decoding failure",
				slog.String("type", t.name),
				slog.String("component", c.Name),
				slog.String("selector", key),
				slog.Any("error", err))
		}
	}
	return s, nil
}

func (s *Sequence) Type() *Type             { return s.typ }
func (s *Sequence) Encode() ([]byte, error) { return encode(s) }

// Get returns the value of the named component or nil if it is absent.
func (s *Sequence) Get(name string) (Value, error) {
	i, ok := s.typ.componentIndex[name]
	if !ok {
		return nil, s.unknown(name)
	}
	return s.vals[i], nil
}

// Set converts v using the type of the named component and stores it. A nil v
// resets the component to its default, or makes it absent if there is no
// default.
func (s *Sequence) Set(name string, v any) error {
	i, ok := s.typ.componentIndex[name]
	if !ok {
		return s.unknown(name)
	}
	return s.set(i, v)
}

func (s *Sequence) set(i int, v any) error {
	c := s.typ.components[i]
	if v == nil {
		s.vals[i] = c.defaultValue()
		return nil
	}
	val, err := c.Type.New(v)
	if err != nil {
		return err
	}
	s.vals[i] = val
	return nil
}

// Clear resets the named component to its default, or makes it absent if
// there is no default.
func (s *Sequence) Clear(name string) error {
	return s.Set(name, nil)
}

// Names iterates over all component names in declaration order, including
// absent components.
func (s *Sequence) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, c := range s.typ.components {
			if !yield(c.Name) {
				return
			}
		}
	}
}

// All iterates over all component names and values in declaration order.
// Absent components yield a nil value.
func (s *Sequence) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i, c := range s.typ.components {
			if !yield(c.Name, s.vals[i]) {
				return
			}
		}
	}
}

// Len returns the number of declared components, including absent ones.
func (s *Sequence) Len() int { return len(s.vals) }

// Interface returns a map of all component names to their semantic values.
// Absent components map to nil.
func (s *Sequence) Interface() any {
	m := make(map[string]any, len(s.vals))
	for i, c := range s.typ.components {
		if s.vals[i] == nil {
			m[c.Name] = nil
		} else {
			m[c.Name] = s.vals[i].Interface()
		}
	}
	return m
}

func (s *Sequence) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for i, c := range s.typ.components {
		if s.vals[i] == nil {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(c.Name)
		b.WriteString(": ")
		b.WriteString(s.vals[i].String())
	}
	b.WriteByte('}')
	return b.String()
}

// Equal reports whether other is a Sequence with the same component names and
// equal component values.
func (s *Sequence) Equal(other Value) bool {
	o, ok := other.(*Sequence)
	if !ok || len(o.vals) != len(s.vals) {
		return false
	}
	for i, c := range s.typ.components {
		if o.typ.components[i].Name != c.Name {
			return false
		}
		a, b := s.vals[i], o.vals[i]
		if a == nil || b == nil {
			if a != b {
				return false
			}
			continue
		}
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// appendContent encodes all present components that do not encode to their
// default. A missing mandatory component results in an [*EncodeError].
func (s *Sequence) appendContent(dst []byte) ([]byte, error) {
	for i, c := range s.typ.components {
		if s.vals[i] == nil {
			if !c.optional() {
				return nil, &EncodeError{Type: s.typ.name, Err: fmt.Errorf("%w %s", errMissingComponent, c.Name)}
			}
			continue
		}
		b, err := s.vals[i].Encode()
		if err != nil {
			return nil, err
		}
		if c.encodedDefault != nil && bytes.Equal(b, c.encodedDefault) {
			continue
		}
		dst = append(dst, b...)
	}
	return dst, nil
}

func (s *Sequence) unknown(name string) error {
	return &ArgumentError{Type: s.typ.name, Msg: "unknown component " + name}
}
