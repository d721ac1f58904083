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

package symbols

import (
	"fmt"
	"sort"

	"github.com/yuweiguocn/build-system-sub001/android"
)

// Table is the immutable set of symbols owned by one package.  A Table is created by a
// TableBuilder and never modified afterwards, so it may be shared between goroutines.
type Table struct {
	pkg     string
	symbols map[Key]Symbol

	// childFields maps the canonical index field name of every styleable child, e.g.
	// "MyView_android_textColor", to the styleable declaring it.
	childFields map[string]Key
}

// Package returns the package name owning the table.
func (t *Table) Package() string {
	return t.pkg
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.symbols)
}

// Lookup returns the symbol declared for (typ, name).
func (t *Table) Lookup(typ ResourceType, name string) (Symbol, bool) {
	s, ok := t.symbols[NewKey(typ, name)]
	return s, ok
}

// Contains returns true if the table declares (typ, name).
func (t *Table) Contains(typ ResourceType, name string) bool {
	_, ok := t.symbols[NewKey(typ, name)]
	return ok
}

// LookupStyleableChildField returns the styleable that generates the index field with the given
// name, e.g. the styleable MyView for the field MyView_textColor.
func (t *Table) LookupStyleableChildField(field string) (Symbol, bool) {
	key, ok := t.childFields[field]
	if !ok {
		return Symbol{}, false
	}
	return t.symbols[key], true
}

// TypesOf returns the types under which name is declared, sorted.
func (t *Table) TypesOf(name string) []ResourceType {
	canonical := CanonicalName(name)
	var ret []ResourceType
	for k := range t.symbols {
		if k.Name == canonical {
			ret = append(ret, k.Type)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Types returns the resource types that have at least one symbol in the table, sorted.
func (t *Table) Types() []ResourceType {
	seen := make(map[ResourceType]bool)
	for k := range t.symbols {
		seen[k.Type] = true
	}
	return android.SortedKeys(seen)
}

// Symbols returns every symbol of the table sorted by type and then canonical name.
func (t *Table) Symbols() []Symbol {
	ret := make([]Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		ret = append(ret, s)
	}
	sortSymbols(ret)
	return ret
}

// SymbolsOfType returns the symbols of the given type sorted by canonical name.
func (t *Table) SymbolsOfType(typ ResourceType) []Symbol {
	var ret []Symbol
	for k, s := range t.symbols {
		if k.Type == typ {
			ret = append(ret, s)
		}
	}
	sortSymbols(ret)
	return ret
}

func sortSymbols(list []Symbol) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].Key(), list[j].Key()
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Name < b.Name
	})
}

// TableBuilder accumulates symbols for a Table.
type TableBuilder struct {
	pkg     string
	symbols map[Key]Symbol
}

// NewTableBuilder returns a builder for a table owned by pkg.
func NewTableBuilder(pkg string) *TableBuilder {
	return &TableBuilder{
		pkg:     pkg,
		symbols: make(map[Key]Symbol),
	}
}

// Add adds a symbol to the table being built.  Adding a key twice keeps the first declaration,
// except that a definite attr replaces a maybe-declared one.
func (b *TableBuilder) Add(s Symbol) error {
	if s.Name == "" {
		return fmt.Errorf("symbol of type %s in package %s has an empty name", s.Type, b.pkg)
	}
	if _, ok := resourceTypes[s.Type]; !ok {
		return fmt.Errorf("symbol %q in package %s has unknown type %q", s.Name, b.pkg, s.Type)
	}
	key := s.Key()
	if existing, ok := b.symbols[key]; ok {
		if existing.Type == Attr && existing.MaybeDefinition && !s.MaybeDefinition {
			b.symbols[key] = s
		}
		return nil
	}
	b.symbols[key] = s
	return nil
}

// AddAll adds every symbol of another table.
func (b *TableBuilder) AddAll(t *Table) error {
	for _, s := range t.Symbols() {
		if err := b.Add(s); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the immutable Table.  The builder may not be used afterwards.
func (b *TableBuilder) Build() *Table {
	t := &Table{
		pkg:         b.pkg,
		symbols:     b.symbols,
		childFields: make(map[string]Key),
	}
	for key, s := range b.symbols {
		if s.Type != Styleable {
			continue
		}
		for _, child := range s.Children {
			t.childFields[s.ChildFieldName(child)] = key
		}
	}
	b.symbols = nil
	return t
}

// Merge returns a table owned by pkg containing the symbols of every fragment, following the
// rules of TableBuilder.Add in fragment order.
func Merge(pkg string, fragments ...*Table) (*Table, error) {
	b := NewTableBuilder(pkg)
	for _, f := range fragments {
		if err := b.AddAll(f); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Equal returns true if both tables have the same package and symbols.
func (t *Table) Equal(other *Table) bool {
	if t.pkg != other.pkg || len(t.symbols) != len(other.symbols) {
		return false
	}
	for k, s := range t.symbols {
		o, ok := other.symbols[k]
		if !ok || !symbolEqual(s, o) {
			return false
		}
	}
	return true
}

func symbolEqual(a, b Symbol) bool {
	if a.Type != b.Type || a.Name != b.Name || a.Value != b.Value || a.MaybeDefinition != b.MaybeDefinition {
		return false
	}
	if len(a.Values) != len(b.Values) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			return false
		}
	}
	for i := range a.Children {
		if a.Children[i] != b.Children[i] {
			return false
		}
	}
	return true
}
