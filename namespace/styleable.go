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
	"strings"

	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// NamespaceStyleableChildren qualifies the bare children of a styleable with their owning
// package.  Children already qualified, including framework ones, and children the component owns
// are left unchanged.
func NamespaceStyleableChildren(children []string, m *ResolutionMap) ([]string, error) {
	ret := make([]string, len(children))
	for i, child := range children {
		if strings.Contains(child, ":") {
			ret[i] = child
			continue
		}
		owner, err := m.Resolve(symbols.Attr, child)
		if err != nil {
			return nil, err
		}
		if owner == m.Package() {
			ret[i] = child
		} else {
			ret[i] = owner + ":" + child
		}
	}
	return ret, nil
}

// NamespaceTable returns the symbols the component owns with the children of every styleable
// qualified by NamespaceStyleableChildren.  Maybe-declared attrs that a dependency declares belong
// to the dependency and are left out.
func NamespaceTable(m *ResolutionMap) (*symbols.Table, error) {
	table := m.Table()
	b := symbols.NewTableBuilder(table.Package())
	for _, s := range table.Symbols() {
		if owner, ok := m.owner(s.Type, s.Name); ok && owner != m.Package() {
			continue
		}
		if s.Type == symbols.Styleable {
			children, err := NamespaceStyleableChildren(s.Children, m)
			if err != nil {
				return nil, err
			}
			s = symbols.NewStyleableSymbol(s.Name, s.Values, children)
		}
		if err := b.Add(s); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
