// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schemadef loads ASN.1 type definitions from YAML documents. A
// document defines a module of named types that reference each other and the
// predefined types of package der:
//
//	module: Example
//	types:
//	  Version:
//	    type: INTEGER
//	    tags: [{explicit: 0}]
//	  AlgorithmIdentifier:
//	    sequence:
//	      - {name: algorithm, type: INTEGER}
//	      - name: parameters
//	        type: ANY
//	        optional: true
//	        definedBy: algorithm
//	        lookup: {1: BOOLEAN, 2: {setOf: UTF8String}}
//
// A type expression is either the name of a type or a mapping with exactly one
// of the keys type, sequence, choice, sequenceOf and setOf. The optional tags
// list applies tags from innermost to outermost. Each tag is either explicit
// or implicit and uses the context-specific class unless class is set to
// application or private.
//
// Every type is resolved when the module is loaded. Types of a module are
// immutable and cannot be recursive.
package schemadef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"codello.dev/der"
	"codello.dev/der/asn1"
)

var (
	// ErrUnknownType indicates a reference to a type that is neither defined in
	// the module nor predefined.
	ErrUnknownType = errors.New("unknown type")
	// ErrCycle indicates a type that references itself, directly or indirectly.
	ErrCycle = errors.New("recursive type definition")
)

// An Error describes a problem with a type definition. Line and Column refer to
// the YAML document and are zero if the position is not known.
type Error struct {
	Type   string // name of the definition
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return "schemadef: " + e.Type + ": " + e.Err.Error()
	}
	return fmt.Sprintf("schemadef: %s (line %d, column %d): %s", e.Type, e.Line, e.Column, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// predefined contains the types that can be referenced by name without being
// defined in a module.
var predefined = map[string]*der.Type{
	"BOOLEAN":         der.TypeBoolean,
	"INTEGER":         der.TypeInteger,
	"BIT STRING":      der.TypeBitString,
	"OCTET STRING":    der.TypeOctetString,
	"UTF8String":      der.TypeUTF8String,
	"NumericString":   der.Must(der.Universal(der.Base(der.KindString, "NumericString"), asn1.TagNumericString, false)),
	"PrintableString": der.TypePrintableString,
	"TeletexString":   der.TypeTeletexString,
	"T61String":       der.TypeTeletexString,
	"IA5String":       der.TypeIA5String,
	"UTCTime":         der.TypeUTCTime,
	"GeneralizedTime": der.TypeGeneralizedTime,
	"UniversalString": der.TypeUniversalString,
	"BMPString":       der.TypeBMPString,
	"ANY":             der.TypeAny,
}

// A Module is a set of named types loaded from a YAML document.
type Module struct {
	// Name is the module name given in the document, if any.
	Name string

	names []string
	types map[string]*der.Type
}

// Parse loads a module from a YAML document.
func Parse(b []byte) (*Module, error) {
	return Load(bytes.NewReader(b))
}

// Load reads a single YAML document from r and loads the module it defines.
func Load(r io.Reader) (*Module, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schemadef: empty document")
		}
		return nil, fmt.Errorf("schemadef: %w", err)
	}
	defs, names, err := doc.definitions()
	if err != nil {
		return nil, err
	}
	res := &resolver{
		defs:     defs,
		types:    make(map[string]*der.Type, len(defs)),
		visiting: make(map[string]bool),
	}
	for _, name := range names {
		if _, err := res.resolve(name); err != nil {
			return nil, err
		}
	}
	return &Module{Name: doc.Module, names: names, types: res.types}, nil
}

// Type returns the type with the given name. Predefined types can be looked up
// as well, unless the module defines a type of the same name.
func (m *Module) Type(name string) (*der.Type, error) {
	if t, ok := m.types[name]; ok {
		return t, nil
	}
	if t, ok := predefined[name]; ok {
		return t, nil
	}
	return nil, &Error{Type: name, Err: ErrUnknownType}
}

// Names returns the names of all types defined by the module in declaration
// order.
func (m *Module) Names() []string {
	return slices.Clone(m.names)
}

// resolver builds der types from their definitions. Named definitions are
// built at most once.
type resolver struct {
	defs     map[string]*typeExpr
	types    map[string]*der.Type
	visiting map[string]bool
}

// resolve returns the type of the named definition or a predefined type.
func (r *resolver) resolve(name string) (*der.Type, error) {
	if t, ok := r.types[name]; ok {
		return t, nil
	}
	e, ok := r.defs[name]
	if !ok {
		if t, ok := predefined[name]; ok {
			return t, nil
		}
		return nil, ErrUnknownType
	}
	if r.visiting[name] {
		return nil, ErrCycle
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	t, err := r.build(e, name)
	if err != nil {
		return nil, err
	}
	if t.Name() != name {
		t = t.Named(name)
	}
	r.types[name] = t
	return t, nil
}

// build creates the type described by e. Inline types are named after the path
// that leads to them.
func (r *resolver) build(e *typeExpr, name string) (*der.Type, error) {
	t, err := r.buildBase(e, name)
	if err != nil {
		return nil, err
	}
	for _, tag := range e.Tags {
		if t, err = tag.apply(t); err != nil {
			return nil, r.wrap(err, name, tag.line, tag.column)
		}
	}
	return t, nil
}

func (r *resolver) buildBase(e *typeExpr, name string) (*der.Type, error) {
	switch e.form {
	case formRef:
		t, err := r.resolve(e.Ref)
		if err != nil {
			var defErr *Error
			if !errors.As(err, &defErr) {
				err = fmt.Errorf("%w %q", err, e.Ref)
			}
			return nil, r.wrap(err, name, e.line, e.column)
		}
		return t, nil

	case formSequence:
		comps := make([]der.Component, len(e.Sequence))
		for i, c := range e.Sequence {
			path := name + "." + c.Name
			ct, err := r.build(&c.Type, path)
			if err != nil {
				return nil, err
			}
			comps[i] = der.Component{
				Name:      c.Name,
				Type:      ct,
				Optional:  c.Optional,
				Default:   c.Default,
				DefinedBy: c.DefinedBy,
			}
			if len(c.Lookup) > 0 {
				comps[i].Lookup = make(map[string]*der.Type, len(c.Lookup))
				for _, key := range slices.Sorted(maps.Keys(c.Lookup)) {
					lookupExpr := c.Lookup[key]
					lt, err := r.build(&lookupExpr, path+"["+key+"]")
					if err != nil {
						return nil, err
					}
					comps[i].Lookup[key] = lt
				}
			}
		}
		t, err := der.NewSequence(name, comps...)
		if err != nil {
			return nil, r.wrap(err, name, e.line, e.column)
		}
		return t, nil

	case formChoice:
		alts := make([]der.Alternative, len(e.Choice))
		for i, a := range e.Choice {
			at, err := r.build(&a.Type, name+"."+a.Name)
			if err != nil {
				return nil, err
			}
			alts[i] = der.Alternative{Name: a.Name, Type: at}
		}
		t, err := der.NewChoice(name, alts...)
		if err != nil {
			return nil, r.wrap(err, name, e.line, e.column)
		}
		return t, nil

	case formSequenceOf, formSetOf:
		of, elem := der.SequenceOf, e.SequenceOf
		if e.form == formSetOf {
			of, elem = der.SetOf, e.SetOf
		}
		et, err := r.build(elem, name+".elem")
		if err != nil {
			return nil, err
		}
		t, err := of(et)
		if err != nil {
			return nil, r.wrap(err, name, e.line, e.column)
		}
		return t, nil
	}
	panic("schemadef: unknown type expression form " + e.form)
}

// wrap attaches the position of a definition to err unless err already
// carries a position.
func (r *resolver) wrap(err error, name string, line, column int) error {
	var defErr *Error
	if errors.As(err, &defErr) {
		return err
	}
	return &Error{Type: name, Line: line, Column: column, Err: err}
}
