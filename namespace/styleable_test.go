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
	"testing"

	"github.com/yuweiguocn/build-system-sub001/android"
	"github.com/yuweiguocn/build-system-sub001/symbols"
)

func TestNamespaceStyleableChildren(t *testing.T) {
	app := newTable(t, "com.example.app", attr("own"))
	lib := newTable(t, "com.example.lib", attr("libAttr"), attr("shared"))
	other := newTable(t, "com.example.other", attr("shared"))
	m := newMap(t, nil, app, lib, other)

	children, err := NamespaceStyleableChildren([]string{"own", "libAttr", "android:text", "com.example.other:shared", "shared"}, m)
	android.FailIfErrored(t, err)
	android.AssertArrayString(t, "children", []string{
		"own",
		"com.example.lib:libAttr",
		"android:text",
		"com.example.other:shared",
		"com.example.lib:shared",
	}, children)

	_, err = NamespaceStyleableChildren([]string{"missing"}, m)
	android.AssertErrorMessageEquals(t, "unknown", "In package com.example.app found unknown symbol of type attr and name missing.", err)
}

func TestNamespaceTable(t *testing.T) {
	app := newTable(t, "com.example.app",
		attr("own"),
		symbols.NewAttrSymbol("inherited", 0, true),
		symbols.NewAttrSymbol("guessed", 0, true),
		sym(symbols.String, "s"),
		symbols.NewStyleableSymbol("View", []int32{1, 2}, []string{"own", "libAttr"}))
	lib := newTable(t, "com.example.lib", attr("libAttr"), attr("inherited"))
	m := newMap(t, nil, app, lib)

	table, err := NamespaceTable(m)
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "package", "com.example.app", table.Package())
	android.AssertIntEquals(t, "symbols", 4, table.Len())
	android.AssertBoolEquals(t, "inherited attr", false, table.Contains(symbols.Attr, "inherited"))
	guessed, _ := table.Lookup(symbols.Attr, "guessed")
	android.AssertBoolEquals(t, "maybe attr kept", true, guessed.MaybeDefinition)

	view, ok := table.Lookup(symbols.Styleable, "View")
	android.AssertBoolEquals(t, "styleable", true, ok)
	android.AssertArrayString(t, "children", []string{"own", "com.example.lib:libAttr"}, view.Children)
	android.AssertDeepEquals(t, "values", []int32{1, 2}, view.Values)

	_, ok = table.LookupStyleableChildField("View_com_example_lib_libAttr")
	android.AssertBoolEquals(t, "child field", true, ok)
	_, ok = table.LookupStyleableChildField("View_libAttr")
	android.AssertBoolEquals(t, "old child field", false, ok)

	android.AssertBoolEquals(t, "source unchanged", true, app.Contains(symbols.Styleable, "View"))
	original, _ := app.Lookup(symbols.Styleable, "View")
	android.AssertArrayString(t, "source children", []string{"own", "libAttr"}, original.Children)
}
