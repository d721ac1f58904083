// Copyright 2024 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package symbols holds the resource declarations of a single component: the symbols it defines,
// the table that groups them under the component's package name, and the text and binary forms
// those tables are exchanged in.
package symbols

import (
	"fmt"
	"strings"
)

// ResourceType is the type segment of a resource reference, e.g. "string" in @string/app_name.
type ResourceType string

const (
	Anim         ResourceType = "anim"
	Animator     ResourceType = "animator"
	Array        ResourceType = "array"
	Attr         ResourceType = "attr"
	Bool         ResourceType = "bool"
	Color        ResourceType = "color"
	Dimen        ResourceType = "dimen"
	Drawable     ResourceType = "drawable"
	Font         ResourceType = "font"
	Fraction     ResourceType = "fraction"
	Id           ResourceType = "id"
	Integer      ResourceType = "integer"
	Interpolator ResourceType = "interpolator"
	Layout       ResourceType = "layout"
	Menu         ResourceType = "menu"
	Mipmap       ResourceType = "mipmap"
	Navigation   ResourceType = "navigation"
	Plurals      ResourceType = "plurals"
	Raw          ResourceType = "raw"
	String       ResourceType = "string"
	Style        ResourceType = "style"
	Styleable    ResourceType = "styleable"
	Transition   ResourceType = "transition"
	Xml          ResourceType = "xml"
)

var resourceTypes = map[ResourceType]bool{
	Anim: true, Animator: true, Array: true, Attr: true, Bool: true, Color: true, Dimen: true,
	Drawable: true, Font: true, Fraction: true, Id: true, Integer: true, Interpolator: true,
	Layout: true, Menu: true, Mipmap: true, Navigation: true, Plurals: true, Raw: true,
	String: true, Style: true, Styleable: true, Transition: true, Xml: true,
}

// ParseResourceType returns the ResourceType named by s.  Aliases used as tags in values files
// (string-array, integer-array, declare-styleable) map to the type they declare.
func ParseResourceType(s string) (ResourceType, bool) {
	switch s {
	case "string-array", "integer-array":
		return Array, true
	case "declare-styleable":
		return Styleable, true
	}
	t := ResourceType(s)
	return t, resourceTypes[t]
}

func (t ResourceType) String() string {
	return string(t)
}

// Symbol is one declared resource.  Which fields are meaningful depends on Type:
//   - styleable symbols use Values (the attribute ids) and Children (the child attribute
//     references, either bare "name" or qualified "pkg:name");
//   - attr symbols use Value and MaybeDefinition;
//   - every other type uses Value.
type Symbol struct {
	Type  ResourceType
	Name  string
	Value int32

	// MaybeDefinition marks an attr seen only as a styleable child, never explicitly declared.
	MaybeDefinition bool

	Values   []int32
	Children []string
}

// NewNormalSymbol returns a symbol of any type other than attr or styleable.
func NewNormalSymbol(typ ResourceType, name string, value int32) Symbol {
	if typ == Attr || typ == Styleable {
		panic(fmt.Errorf("%s symbol %q must not be created as a normal symbol", typ, name))
	}
	return Symbol{Type: typ, Name: name, Value: value}
}

// NewAttrSymbol returns an attr symbol.
func NewAttrSymbol(name string, value int32, maybeDefinition bool) Symbol {
	return Symbol{Type: Attr, Name: name, Value: value, MaybeDefinition: maybeDefinition}
}

// NewStyleableSymbol returns a styleable symbol with the given attribute ids and child references.
func NewStyleableSymbol(name string, values []int32, children []string) Symbol {
	return Symbol{Type: Styleable, Name: name, Values: values, Children: children}
}

// Key returns the table key of the symbol.
func (s Symbol) Key() Key {
	return NewKey(s.Type, s.Name)
}

// FieldName returns the name of the Java field holding the symbol in a generated R class.
func (s Symbol) FieldName() string {
	return CanonicalName(s.Name)
}

// ChildFieldName returns the name of the index field generated for the styleable child.
func (s Symbol) ChildFieldName(child string) string {
	return CanonicalName(s.Name) + "_" + CanonicalName(child)
}

func (s Symbol) String() string {
	switch s.Type {
	case Styleable:
		return fmt.Sprintf("styleable/%s%v", s.Name, s.Children)
	case Attr:
		if s.MaybeDefinition {
			return "attr?/" + s.Name
		}
	}
	return string(s.Type) + "/" + s.Name
}

// Key identifies a symbol within a table: its type plus its canonical name.
type Key struct {
	Type ResourceType
	Name string
}

// NewKey returns the key for (typ, name), canonicalizing the name.
func NewKey(typ ResourceType, name string) Key {
	return Key{Type: typ, Name: CanonicalName(name)}
}

func (k Key) String() string {
	return string(k.Type) + "/" + k.Name
}

var canonicalReplacer = strings.NewReplacer(".", "_", "-", "_", ":", "_")

// CanonicalName returns the form a resource name takes as a Java field name, in which the dots of
// style names and the colons of qualified styleable children are replaced by underscores.
func CanonicalName(name string) string {
	return canonicalReplacer.Replace(name)
}
