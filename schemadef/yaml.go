// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schemadef

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"codello.dev/der"
	"codello.dev/der/asn1"
)

// document is the top-level structure of a YAML module.
type document struct {
	Module string    `yaml:"module"`
	Types  yaml.Node `yaml:"types"`
}

// definitions decodes the types mapping of d in declaration order.
func (d *document) definitions() (map[string]*typeExpr, []string, error) {
	n := &d.Types
	if n.Kind == 0 {
		return nil, nil, errors.New("schemadef: document defines no types")
	}
	if n.Kind != yaml.MappingNode {
		return nil, nil, &Error{Type: "types", Line: n.Line, Column: n.Column, Err: errors.New("expected a mapping")}
	}
	defs := make(map[string]*typeExpr, len(n.Content)/2)
	names := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if _, dup := defs[k.Value]; dup {
			return nil, nil, &Error{Type: k.Value, Line: k.Line, Column: k.Column, Err: errors.New("duplicate definition")}
		}
		e := new(typeExpr)
		if err := v.Decode(e); err != nil {
			return nil, nil, &Error{Type: k.Value, Err: err}
		}
		defs[k.Value] = e
		names = append(names, k.Value)
	}
	return defs, names, nil
}

// Forms of a type expression. The form is the key that determines the kind of
// the expression.
const (
	formRef        = "type"
	formSequence   = "sequence"
	formChoice     = "choice"
	formSequenceOf = "sequenceOf"
	formSetOf      = "setOf"
)

// typeExpr is a type expression: a reference to a named type or an inline
// type definition.
type typeExpr struct {
	Ref        string        `yaml:"type"`
	Sequence   []component   `yaml:"sequence"`
	Choice     []alternative `yaml:"choice"`
	SequenceOf *typeExpr     `yaml:"sequenceOf"`
	SetOf      *typeExpr     `yaml:"setOf"`
	Tags       []tagSpec     `yaml:"tags"`

	form   string
	line   int
	column int
}

// UnmarshalYAML accepts a type name as a scalar or a mapping with exactly one
// form key.
func (e *typeExpr) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		if n.Value == "" {
			return nodeError(n, "empty type name")
		}
		e.Ref, e.form = n.Value, formRef
		e.line, e.column = n.Line, n.Column
		return nil
	}
	if err := checkKeys(n, formRef, formSequence, formChoice, formSequenceOf, formSetOf, "tags"); err != nil {
		return err
	}
	type plain typeExpr
	if err := n.Decode((*plain)(e)); err != nil {
		return err
	}
	e.line, e.column = n.Line, n.Column
	for i := 0; i < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if key == "tags" {
			continue
		}
		if e.form != "" {
			return nodeError(n.Content[i], "type expression has both %s and %s", e.form, key)
		}
		e.form = key
	}
	switch {
	case e.form == "":
		return nodeError(n, "type expression without a type")
	case e.form == formRef && e.Ref == "":
		return nodeError(n, "empty type name")
	case e.form == formSequenceOf && e.SequenceOf == nil, e.form == formSetOf && e.SetOf == nil:
		return nodeError(n, "%s without an element type", e.form)
	}
	return nil
}

// component is a member of an inline SEQUENCE.
type component struct {
	Name      string              `yaml:"name"`
	Type      typeExpr            `yaml:"type"`
	Optional  bool                `yaml:"optional"`
	Default   any                 `yaml:"default"`
	DefinedBy string              `yaml:"definedBy"`
	Lookup    map[string]typeExpr `yaml:"lookup"`
}

func (c *component) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "name", "type", "optional", "default", "definedBy", "lookup"); err != nil {
		return err
	}
	type plain component
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	if c.Name == "" || c.Type.form == "" {
		return nodeError(n, "component requires a name and a type")
	}
	return nil
}

// alternative is a member of an inline CHOICE.
type alternative struct {
	Name string   `yaml:"name"`
	Type typeExpr `yaml:"type"`
}

func (a *alternative) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "name", "type"); err != nil {
		return err
	}
	type plain alternative
	if err := n.Decode((*plain)(a)); err != nil {
		return err
	}
	if a.Name == "" || a.Type.form == "" {
		return nodeError(n, "alternative requires a name and a type")
	}
	return nil
}

// tagSpec is a single tagging step.
type tagSpec struct {
	Explicit *uint  `yaml:"explicit"`
	Implicit *uint  `yaml:"implicit"`
	Class    string `yaml:"class"`

	line   int
	column int
}

func (t *tagSpec) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "explicit", "implicit", "class"); err != nil {
		return err
	}
	type plain tagSpec
	if err := n.Decode((*plain)(t)); err != nil {
		return err
	}
	t.line, t.column = n.Line, n.Column
	if (t.Explicit == nil) == (t.Implicit == nil) {
		return nodeError(n, "tag must be either explicit or implicit")
	}
	return nil
}

// apply tags typ as described by t.
func (t *tagSpec) apply(typ *der.Type) (*der.Type, error) {
	class, err := parseClass(t.Class)
	if err != nil {
		return nil, err
	}
	if t.Explicit != nil {
		return der.Explicit(typ, *t.Explicit, class)
	}
	return der.Implicit(typ, *t.Implicit, class)
}

// parseClass parses a tag class. The empty string denotes the context-specific
// class.
func parseClass(s string) (asn1.Class, error) {
	switch s {
	case "", "context", "context-specific":
		return asn1.ClassContextSpecific, nil
	case "application":
		return asn1.ClassApplication, nil
	case "private":
		return asn1.ClassPrivate, nil
	case "universal":
		return asn1.ClassUniversal, nil
	}
	return 0, fmt.Errorf("unknown tag class %q", s)
}

// checkKeys verifies that n is a mapping that uses only the given keys.
func checkKeys(n *yaml.Node, keys ...string) error {
	if n.Kind != yaml.MappingNode {
		return nodeError(n, "expected a mapping")
	}
	for i := 0; i < len(n.Content); i += 2 {
		if k := n.Content[i]; !slices.Contains(keys, k.Value) {
			return nodeError(k, "unknown key %q", k.Value)
		}
	}
	return nil
}

func nodeError(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d, column %d: %s", n.Line, n.Column, fmt.Sprintf(format, args...))
}
