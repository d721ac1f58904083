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
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/yuweiguocn/build-system-sub001/android"
	"github.com/yuweiguocn/build-system-sub001/classfile"
	"github.com/yuweiguocn/build-system-sub001/jar"
	"github.com/yuweiguocn/build-system-sub001/symbols"
)

func newTable(t *testing.T, pkg string, syms ...symbols.Symbol) *symbols.Table {
	t.Helper()
	b := symbols.NewTableBuilder(pkg)
	for _, s := range syms {
		if err := b.Add(s); err != nil {
			t.Fatal(err)
		}
	}
	return b.Build()
}

func sym(typ symbols.ResourceType, name string) symbols.Symbol {
	return symbols.NewNormalSymbol(typ, name, 0)
}

func attr(name string) symbols.Symbol {
	return symbols.NewAttrSymbol(name, 0, false)
}

func newMap(t *testing.T, warnings *Warnings, tables ...*symbols.Table) *ResolutionMap {
	t.Helper()
	m, err := NewResolutionMap(tables, warnings)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func warningStrings(list []Warning) []string {
	var ret []string
	for _, w := range list {
		ret = append(ret, w.String())
	}
	return ret
}

// readJar returns the entries of a jar in archive order.
func readJar(t *testing.T, data []byte) []jar.Entry {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	android.FailIfErrored(t, err)
	var ret []jar.Entry
	for _, f := range zr.File {
		rc, err := f.Open()
		android.FailIfErrored(t, err)
		contents, err := io.ReadAll(rc)
		rc.Close()
		android.FailIfErrored(t, err)
		ret = append(ret, jar.Entry{Name: f.Name, Data: contents})
	}
	return ret
}

func jarEntryNames(entries []jar.Entry) []string {
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// fieldRefs returns the Fieldref constants of a class in constant pool order.
func fieldRefs(t *testing.T, data []byte) []classfile.FieldRef {
	t.Helper()
	cf, err := classfile.Parse(data)
	android.FailIfErrored(t, err)
	var refs []classfile.FieldRef
	_, err = cf.RedirectFields(func(ref classfile.FieldRef) (classfile.FieldRef, error) {
		refs = append(refs, ref)
		return ref, nil
	})
	android.FailIfErrored(t, err)
	return refs
}
