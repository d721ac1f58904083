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
	"io"

	"github.com/yuweiguocn/build-system-sub001/classfile"
	"github.com/yuweiguocn/build-system-sub001/jar"
	"github.com/yuweiguocn/build-system-sub001/symbols"
)

const nestedAccess = classfile.AccPublic | classfile.AccStatic | classfile.AccFinal

// RClasses synthesizes the R class of a component from its namespaced table, see NamespaceTable:
// one nested class per resource type holding exactly the symbols the component owns, plus the
// outer R class.
func RClasses(table *symbols.Table) ([]jar.Entry, error) {
	outer := rClassName(table.Package(), "")
	var entries []jar.Entry
	var inner []classfile.InnerClass

	for _, typ := range table.Types() {
		name := rClassName(table.Package(), typ)
		ic := classfile.InnerClass{Inner: name, Outer: outer, Name: string(typ), Access: nestedAccess}
		inner = append(inner, ic)

		fields, err := rFields(table.SymbolsOfType(typ))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		class := &classfile.Class{
			Name:         name,
			Access:       classfile.AccPublic | classfile.AccFinal,
			Fields:       fields,
			InnerClasses: []classfile.InnerClass{ic},
		}
		data, err := class.Bytes()
		if err != nil {
			return nil, err
		}
		entries = append(entries, jar.Entry{Name: name + jar.ClassSuffix, Data: data})
	}

	class := &classfile.Class{
		Name:         outer,
		Access:       classfile.AccPublic | classfile.AccFinal,
		InnerClasses: inner,
	}
	data, err := class.Bytes()
	if err != nil {
		return nil, err
	}
	entries = append(entries, jar.Entry{Name: outer + jar.ClassSuffix, Data: data})
	return entries, nil
}

func rFields(list []symbols.Symbol) ([]classfile.Field, error) {
	var fields []classfile.Field
	seen := make(map[string]bool)
	add := func(f classfile.Field) error {
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %s", f.Name)
		}
		seen[f.Name] = true
		fields = append(fields, f)
		return nil
	}

	for _, s := range list {
		if s.Type != symbols.Styleable {
			if err := add(classfile.Field{Name: s.FieldName(), Value: s.Value}); err != nil {
				return nil, err
			}
			continue
		}
		err := add(classfile.Field{Name: s.FieldName(), IsArray: true, Values: s.Values})
		if err != nil {
			return nil, err
		}
		for i, child := range s.Children {
			if err := add(classfile.Field{Name: s.ChildFieldName(child), Value: int32(i)}); err != nil {
				return nil, err
			}
		}
	}
	return fields, nil
}

// WriteRJar writes the R classes of a namespaced table as a jar.
func WriteRJar(w io.Writer, table *symbols.Table) error {
	entries, err := RClasses(table)
	if err != nil {
		return err
	}
	return jar.Write(w, entries)
}
