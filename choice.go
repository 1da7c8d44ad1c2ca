// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"iter"
	"slices"
	"strings"

	"codello.dev/der/asn1"
	"codello.dev/der/tlv"
)

var errChoiceUnset = errors.New("no alternative set")

// An Alternative is a member of a CHOICE type. Its type must be tagged and its
// outermost tag must be unique within the CHOICE.
type Alternative struct {
	Name string
	Type *Type
}

// NewChoice creates an untagged CHOICE type. A CHOICE is decoded by
// dispatching on the outermost tag of the data value, so every alternative
// must be tagged and the outermost tags of all alternatives must be distinct.
func NewChoice(name string, alternatives ...Alternative) (*Type, error) {
	t := &Type{
		name:             name,
		kind:             KindChoice,
		alternatives:     slices.Clone(alternatives),
		alternativeIndex: make(map[string]int, len(alternatives)),
		byTag:            make(map[asn1.Tag]int, len(alternatives)),
	}
	for i, a := range alternatives {
		if a.Name == "" || a.Type == nil {
			return nil, &SchemaError{Type: name, Msg: "alternative without name or type"}
		}
		if _, ok := t.alternativeIndex[a.Name]; ok {
			return nil, &SchemaError{Type: name, Msg: "duplicate alternative name " + a.Name}
		}
		tag, ok := a.Type.Tag()
		if !ok {
			return nil, &SchemaError{Type: name, Msg: "alternative " + a.Name + " is untagged"}
		}
		if j, ok := t.byTag[tag]; ok {
			return nil, &SchemaError{Type: name, Msg: "alternatives " + alternatives[j].Name + " and " + a.Name + " share the tag " + tag.String()}
		}
		t.alternativeIndex[a.Name] = i
		t.byTag[tag] = i
	}
	return t, nil
}

// Choice is a value of [KindChoice]. At most one alternative is set at any
// time. Setting an alternative clears the previously set one.
type Choice struct {
	typ  *Type
	name string // empty if unset
	v    Value
}

// newChoice creates a Choice from a map with at most one entry. An empty map
// or a nil entry yields an unset Choice.
func newChoice(t *Type, v any) (*Choice, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, unsupported(t, v)
	}
	if len(m) > 1 {
		return nil, &ArgumentError{Type: t.name, Msg: "at most one alternative can be set"}
	}
	c := &Choice{typ: t}
	for name, val := range m {
		if err := c.Set(name, val); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// readChoice peeks at the outer tag of the data value at the start of b and
// decodes it as the matching alternative.
func (d *decoder) readChoice(t *Type, b []byte) (*Choice, []byte, error) {
	if len(b) == 0 {
		return nil, nil, &TagError{Type: t.name, Want: t.outerTags(), Empty: true}
	}
	h, content, rest, err := tlv.Split(b)
	if err != nil {
		return nil, nil, &SyntaxError{Type: t.name, Err: err}
	}
	i, ok := t.byTag[h.Tag]
	if !ok {
		return nil, nil, &TagError{Type: t.name, Want: t.outerTags(), Got: h.Tag}
	}
	a := t.alternatives[i]
	var v Value
	if len(a.Type.tags) == 1 {
		// The header has already been read.
		v, err = d.fromContent(a.Type, content)
	} else {
		v, err = d.decode(a.Type, b[:len(b)-len(rest)])
	}
	if err != nil {
		return nil, nil, err
	}
	return &Choice{typ: t, name: a.Name, v: v}, rest, nil
}

// decodeChoice decodes the content of an explicitly tagged CHOICE, which must
// be exactly one data value.
func (d *decoder) decodeChoice(t *Type, content []byte) (*Choice, error) {
	c, rest, err := d.readChoice(t, content)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &SyntaxError{Type: t.name, Err: ErrTrailingData}
	}
	return c, nil
}

func (c *Choice) Type() *Type             { return c.typ }
func (c *Choice) Encode() ([]byte, error) { return encode(c) }

// Chosen returns the name of the set alternative and its value. If no
// alternative is set, the name is empty and the value is nil.
func (c *Choice) Chosen() (string, Value) {
	return c.name, c.v
}

// Get returns the value of the named alternative or nil if another
// alternative is set.
func (c *Choice) Get(name string) (Value, error) {
	if _, ok := c.typ.alternativeIndex[name]; !ok {
		return nil, c.unknown(name)
	}
	if c.name != name {
		return nil, nil
	}
	return c.v, nil
}

// Set sets the named alternative, clearing any other. A nil v leaves the
// Choice unset.
func (c *Choice) Set(name string, v any) error {
	i, ok := c.typ.alternativeIndex[name]
	if !ok {
		return c.unknown(name)
	}
	if v == nil {
		c.name, c.v = "", nil
		return nil
	}
	val, err := c.typ.alternatives[i].Type.New(v)
	if err != nil {
		return err
	}
	c.name, c.v = name, val
	return nil
}

// Clear unsets the named alternative. If another alternative is set, Clear
// does nothing.
func (c *Choice) Clear(name string) error {
	if _, ok := c.typ.alternativeIndex[name]; !ok {
		return c.unknown(name)
	}
	if c.name == name {
		c.name, c.v = "", nil
	}
	return nil
}

// Names yields the name of the set alternative, if any.
func (c *Choice) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		if c.name != "" {
			yield(c.name)
		}
	}
}

// Len returns 1 if an alternative is set and 0 otherwise.
func (c *Choice) Len() int {
	if c.name == "" {
		return 0
	}
	return 1
}

// Interface returns a map containing the set alternative. The map is empty if
// no alternative is set.
func (c *Choice) Interface() any {
	m := make(map[string]any, 1)
	if c.name != "" {
		m[c.name] = c.v.Interface()
	}
	return m
}

func (c *Choice) String() string {
	var s strings.Builder
	s.WriteByte('{')
	if c.name != "" {
		s.WriteString(c.name)
		s.WriteString(": ")
		s.WriteString(c.v.String())
	}
	s.WriteByte('}')
	return s.String()
}

func (c *Choice) Equal(other Value) bool {
	o, ok := other.(*Choice)
	if !ok || o.name != c.name {
		return false
	}
	return c.v == nil || c.v.Equal(o.v)
}

func (c *Choice) appendContent(dst []byte) ([]byte, error) {
	if c.name == "" {
		return nil, &EncodeError{Type: c.typ.name, Err: errChoiceUnset}
	}
	b, err := c.v.Encode()
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

func (c *Choice) unknown(name string) error {
	return &ArgumentError{Type: c.typ.name, Msg: "unknown alternative " + name}
}
