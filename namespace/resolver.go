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

package namespace

import (
	"fmt"

	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// AndroidPackage is the framework package.  References into it are never resolved.
const AndroidPackage = "android"

// ResolutionMap is the frozen result of resolving every symbol visible to one component: the
// component's own table followed by the tables of its transitive dependencies.
type ResolutionMap struct {
	tables    []*symbols.Table
	byPackage map[string]*symbols.Table

	// owners is the resolved owner of every visible key.
	owners map[symbols.Key]string
	// others lists, for keys declared by more than one dependency, the candidates that lost.
	others map[symbols.Key][]string
	// types lists every type each canonical name is declared with, as "type/package" pairs.
	types map[string][]string

	warnings *Warnings
}

// NewResolutionMap resolves the symbols visible through tables, the component's own table first.
// Later tables of a package already seen are ignored.  Warnings raised while resolving references
// go to warnings, which may be nil.
func NewResolutionMap(tables []*symbols.Table, warnings *Warnings) (*ResolutionMap, error) {
	if len(tables) == 0 || tables[0] == nil {
		return nil, fmt.Errorf("resolution needs the table of the component itself")
	}
	if warnings == nil {
		warnings = NewWarnings(nil)
	}
	m := &ResolutionMap{
		byPackage: make(map[string]*symbols.Table),
		owners:    make(map[symbols.Key]string),
		others:    make(map[symbols.Key][]string),
		types:     make(map[string][]string),
		warnings:  warnings,
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if _, ok := m.byPackage[t.Package()]; ok {
			continue
		}
		m.byPackage[t.Package()] = t
		m.tables = append(m.tables, t)
	}

	// A definite declaration beats an attr that is only maybe declared, wherever it comes from.
	weak := make(map[symbols.Key]string)
	for i, t := range m.tables {
		for _, s := range t.Symbols() {
			key := s.Key()
			m.types[key.Name] = append(m.types[key.Name], string(s.Type)+"/"+t.Package())
			if s.Type == symbols.Attr && s.MaybeDefinition {
				if _, ok := weak[key]; !ok {
					weak[key] = t.Package()
				}
				continue
			}
			owner, ok := m.owners[key]
			if !ok {
				m.owners[key] = t.Package()
				continue
			}
			if i > 0 && owner != m.Package() {
				m.others[key] = append(m.others[key], t.Package())
			}
		}
	}
	for key, pkg := range weak {
		if _, ok := m.owners[key]; !ok {
			m.owners[key] = pkg
		}
	}
	return m, nil
}

// Package returns the package of the component being resolved for.
func (m *ResolutionMap) Package() string {
	return m.tables[0].Package()
}

// Table returns the component's own table.
func (m *ResolutionMap) Table() *symbols.Table {
	return m.tables[0]
}

// Tables returns the search list, the component's own table first.
func (m *ResolutionMap) Tables() []*symbols.Table {
	return append([]*symbols.Table(nil), m.tables...)
}

// TableOf returns the table of a package in the search list.
func (m *ResolutionMap) TableOf(pkg string) (*symbols.Table, bool) {
	t, ok := m.byPackage[pkg]
	return t, ok
}

// Resolve returns the package owning a bare reference.  A reference declared by more than one
// dependency resolves to the first in search order and raises an AmbiguousOverride warning.
func (m *ResolutionMap) Resolve(typ symbols.ResourceType, name string) (string, error) {
	key := symbols.NewKey(typ, name)
	owner, ok := m.owners[key]
	if !ok {
		return "", m.unknown(typ, name)
	}
	if others := m.others[key]; len(others) > 0 {
		m.warnings.add(Warning{
			Kind:    AmbiguousOverride,
			Package: m.Package(),
			Type:    typ,
			Name:    name,
			Owner:   owner,
			Others:  others,
		})
	}
	return owner, nil
}

// owner returns the package owning a bare reference without raising any warning.
func (m *ResolutionMap) owner(typ symbols.ResourceType, name string) (string, bool) {
	owner, ok := m.owners[symbols.NewKey(typ, name)]
	return owner, ok
}

// Validate checks a reference explicitly qualified with pkg.  Framework references are always
// valid; other packages must be in the search list and declare the symbol.
func (m *ResolutionMap) Validate(pkg string, typ symbols.ResourceType, name string) error {
	if pkg == AndroidPackage {
		return nil
	}
	if t, ok := m.byPackage[pkg]; ok && t.Contains(typ, name) {
		return nil
	}
	return m.unknown(typ, name)
}

// Declares tells whether pkg is in the search list and declares the symbol itself.
func (m *ResolutionMap) Declares(pkg string, typ symbols.ResourceType, name string) bool {
	t, ok := m.byPackage[pkg]
	return ok && t.Contains(typ, name)
}

func (m *ResolutionMap) unknown(typ symbols.ResourceType, name string) error {
	canonical := symbols.CanonicalName(name)
	if declared := m.types[canonical]; len(declared) > 0 {
		m.warnings.add(Warning{
			Kind:    CrossTypeCollision,
			Package: m.Package(),
			Type:    typ,
			Name:    name,
			Others:  declared,
		})
	}
	return &UnknownSymbolError{Package: m.Package(), Type: typ, Name: name}
}
