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

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/yuweiguocn/build-system-sub001/android"
	"github.com/yuweiguocn/build-system-sub001/symbols"
)

func TestResolveLocalWins(t *testing.T) {
	warnings := NewWarnings(nil)
	p := newTable(t, "p", sym(symbols.String, "s1"), attr("a"))
	d1 := newTable(t, "d1", sym(symbols.String, "s1"), attr("a"))
	d2 := newTable(t, "d2", sym(symbols.String, "s1"))
	m := newMap(t, warnings, p, d1, d2)

	for _, tc := range []struct {
		typ  symbols.ResourceType
		name string
	}{
		{symbols.String, "s1"},
		{symbols.Attr, "a"},
	} {
		owner, err := m.Resolve(tc.typ, tc.name)
		android.FailIfErrored(t, err)
		android.AssertStringEquals(t, string(tc.typ)+"/"+tc.name, "p", owner)
	}
	android.AssertIntEquals(t, "warnings", 0, warnings.Len())
}

func TestResolveAmbiguousOverride(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	warnings := NewWarnings(logger)
	p := newTable(t, "p")
	d1 := newTable(t, "d1", sym(symbols.String, "s1"))
	d2 := newTable(t, "d2", sym(symbols.String, "s1"))
	m := newMap(t, warnings, p, d1, d2)

	for i := 0; i < 2; i++ {
		owner, err := m.Resolve(symbols.String, "s1")
		android.FailIfErrored(t, err)
		android.AssertStringEquals(t, "owner", "d1", owner)
	}

	android.AssertArrayString(t, "warnings", []string{
		"In package p multiple options found in its dependencies for resource string s1. Using d1, other available: d2.",
	}, warningStrings(warnings.List()))

	android.AssertIntEquals(t, "log entries", 1, len(hook.AllEntries()))
	entry := hook.LastEntry()
	android.AssertStringEquals(t, "level", logrus.WarnLevel.String(), entry.Level.String())
	android.AssertDeepEquals(t, "fields", logrus.Fields{"package": "p", "type": "string", "name": "s1"}, entry.Data)
}

func TestResolveUnknownSymbol(t *testing.T) {
	warnings := NewWarnings(nil)
	p := newTable(t, "p", sym(symbols.Layout, "main"))
	m := newMap(t, warnings, p, newTable(t, "d1"))

	_, err := m.Resolve(symbols.String, "missing")
	android.AssertErrorMessageEquals(t, "error", "In package p found unknown symbol of type string and name missing.", err)
	var unknown *UnknownSymbolError
	android.AssertErrorAs(t, "typed error", err, &unknown)
	android.AssertStringEquals(t, "name", "missing", unknown.Name)
	android.AssertIntEquals(t, "no warning", 0, warnings.Len())

	_, err = m.Resolve(symbols.String, "main")
	android.AssertErrorMessageEquals(t, "error", "In package p found unknown symbol of type string and name main.", err)
	list := warnings.List()
	android.AssertIntEquals(t, "warnings", 1, len(list))
	android.AssertBoolEquals(t, "kind", true, list[0].Kind == CrossTypeCollision)
	android.AssertArrayString(t, "declared as", []string{"layout/p"}, list[0].Others)
}

func TestResolveCanonicalNames(t *testing.T) {
	p := newTable(t, "p")
	d := newTable(t, "d", sym(symbols.Style, "Theme_Dark"))
	m := newMap(t, nil, p, d)
	owner, err := m.Resolve(symbols.Style, "Theme.Dark")
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "owner", "d", owner)
}

func TestResolveMaybeAttrs(t *testing.T) {
	p := newTable(t, "p", symbols.NewAttrSymbol("inherited", 0, true), symbols.NewAttrSymbol("own", 0, true))
	d := newTable(t, "d", attr("inherited"))
	m := newMap(t, nil, p, d)

	owner, err := m.Resolve(symbols.Attr, "inherited")
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "declared by dependency", "d", owner)

	owner, err = m.Resolve(symbols.Attr, "own")
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "only maybe declared", "p", owner)
}

func TestResolutionMapDuplicatePackages(t *testing.T) {
	p := newTable(t, "p")
	first := newTable(t, "d", sym(symbols.String, "a"))
	second := newTable(t, "d", sym(symbols.String, "b"))
	m := newMap(t, nil, p, first, second)

	android.AssertIntEquals(t, "tables", 2, len(m.Tables()))
	_, err := m.Resolve(symbols.String, "b")
	android.AssertErrorMessageEquals(t, "second table ignored",
		"In package p found unknown symbol of type string and name b.", err)

	_, err = NewResolutionMap(nil, nil)
	android.AssertErrorMessageEquals(t, "empty", "resolution needs the table of the component itself", err)
}

func TestValidate(t *testing.T) {
	p := newTable(t, "p", sym(symbols.String, "own"))
	d := newTable(t, "d", sym(symbols.String, "s"))
	m := newMap(t, nil, p, d)

	android.FailIfErrored(t, m.Validate("android", symbols.String, "ok"))
	android.FailIfErrored(t, m.Validate("d", symbols.String, "s"))
	android.FailIfErrored(t, m.Validate("p", symbols.String, "own"))
	android.AssertErrorMessageEquals(t, "wrong package",
		"In package p found unknown symbol of type string and name own.", m.Validate("d", symbols.String, "own"))
	android.AssertErrorMessageEquals(t, "unknown package",
		"In package p found unknown symbol of type string and name s.", m.Validate("x", symbols.String, "s"))

	android.AssertBoolEquals(t, "declares", true, m.Declares("d", symbols.String, "s"))
	android.AssertBoolEquals(t, "does not declare", false, m.Declares("d", symbols.String, "own"))
}
