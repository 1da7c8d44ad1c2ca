// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"slices"

	"codello.dev/der/asn1"
)

// Universal returns a copy of t carrying the given tag of the
// [asn1.ClassUniversal] class as its only tag. A universal tag can only be
// applied to an untagged scalar type obtained from [Base].
func Universal(t *Type, number uint, constructed bool) (*Type, error) {
	if len(t.tags) > 0 {
		return nil, &SchemaError{Type: t.name, Msg: "cannot apply a universal tag to a tagged type"}
	}
	if t.kind == KindAny || t.kind == KindChoice {
		return nil, &SchemaError{Type: t.name, Msg: "cannot apply a universal tag to " + t.kind.String()}
	}
	tag := asn1.Universal(number, constructed)
	return t.withTags(t.name, []asn1.Tag{tag}), nil
}

// Explicit returns a copy of t wrapped in an additional constructed tag of the
// given class. The existing tags of t are kept as inner tags.
func Explicit(t *Type, number uint, class asn1.Class) (*Type, error) {
	tag := asn1.Tag{Class: class, Number: number, Constructed: true}
	if err := checkTagClass(t, class); err != nil {
		return nil, err
	}
	if !t.framed() {
		return nil, &SchemaError{Type: t.name, Msg: "cannot apply an explicit tag to an untagged scalar type"}
	}
	tags := append(slices.Clip(t.tags), tag)
	return t.withTags(tagPrefix(tag)+" EXPLICIT "+t.name, tags), nil
}

// Implicit returns a copy of t whose outermost tag is replaced by a tag of the
// given class. The constructed bit of the replaced tag is kept. Untagged types
// cannot be tagged implicitly.
func Implicit(t *Type, number uint, class asn1.Class) (*Type, error) {
	if err := checkTagClass(t, class); err != nil {
		return nil, err
	}
	outer, ok := t.Tag()
	if !ok {
		return nil, &SchemaError{Type: t.name, Msg: "cannot apply an implicit tag to an untagged type"}
	}
	tag := asn1.Tag{Class: class, Number: number, Constructed: outer.Constructed}
	tags := append(slices.Clone(t.tags[:len(t.tags)-1]), tag)
	return t.withTags(tagPrefix(tag)+" IMPLICIT "+t.name, tags), nil
}

func checkTagClass(t *Type, class asn1.Class) error {
	if class == asn1.ClassUniversal {
		return &SchemaError{Type: t.name, Msg: "cannot tag with the universal class"}
	}
	if !class.IsValid() {
		return &SchemaError{Type: t.name, Msg: "invalid tag class " + class.String()}
	}
	return nil
}

// tagPrefix formats tag in ASN.1 notation without the encoding suffix.
func tagPrefix(tag asn1.Tag) string {
	tag.Constructed = false
	return tag.String()
}
