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
	"bytes"
	"strings"
	"testing"

	"github.com/yuweiguocn/build-system-sub001/android"
)

func publicLines(entries []PublicEntry) []string {
	var ret []string
	for _, e := range entries {
		ret = append(ret, e.String())
	}
	return ret
}

func TestPublicList(t *testing.T) {
	table := testTable(t, "com.example.lib",
		NewNormalSymbol(String, "b", 2),
		NewNormalSymbol(String, "a", 1),
		NewAttrSymbol("declared", 3, false),
		NewAttrSymbol("inherited", 4, true),
	)

	t.Run("no allowlist", func(t *testing.T) {
		android.AssertArrayString(t, "entries", []string{
			"public attr declared",
			"public string a",
			"public string b",
		}, publicLines(PublicList(table, nil)))
	})

	t.Run("allowlist", func(t *testing.T) {
		public, err := ReadPublicTxt(strings.NewReader("string b\nattr inherited\n"), "com.example.lib")
		android.FailIfErrored(t, err)
		android.AssertArrayString(t, "entries", []string{
			"private attr declared",
			"public attr inherited",
			"private string a",
			"public string b",
		}, publicLines(PublicList(table, public)))
	})
}

func TestWritePublicListIdempotent(t *testing.T) {
	table := testTable(t, "p",
		NewNormalSymbol(Layout, "main", 1),
		NewNormalSymbol(Color, "accent", 2),
	)
	first := &bytes.Buffer{}
	second := &bytes.Buffer{}
	android.FailIfErrored(t, WritePublicList(first, table, nil))
	android.FailIfErrored(t, WritePublicList(second, table, nil))
	android.AssertStringEquals(t, "idempotent", first.String(), second.String())
	android.AssertStringEquals(t, "content", "public color accent\npublic layout main\n", first.String())

	entries, err := ReadPublicList(first)
	android.FailIfErrored(t, err)
	android.AssertDeepEquals(t, "reread", PublicList(table, nil), entries)
}

func TestReadPublicList(t *testing.T) {
	_, err := ReadPublicList(strings.NewReader("hidden string a\n"))
	android.AssertErrorMessageEquals(t, "visibility", `line 1: unknown visibility "hidden"`, err)

	_, err = ReadPublicList(strings.NewReader("public string\n"))
	android.AssertErrorMessageEquals(t, "malformed", `line 1: malformed public list entry "public string"`, err)
}

func TestReadPublicTxt(t *testing.T) {
	input := `# comment
string app_name
com.example.lib:attr/textSize = 0x7f010000
style/Theme.Dark
declare-styleable MyView
`
	table, err := ReadPublicTxt(strings.NewReader(input), "com.example.lib")
	android.FailIfErrored(t, err)

	android.AssertIntEquals(t, "len", 4, table.Len())
	android.AssertBoolEquals(t, "string", true, table.Contains(String, "app_name"))
	android.AssertBoolEquals(t, "style", true, table.Contains(Style, "Theme_Dark"))
	android.AssertBoolEquals(t, "styleable", true, table.Contains(Styleable, "MyView"))
	attr, _ := table.Lookup(Attr, "textSize")
	android.AssertIntEquals(t, "attr id", 0x7f010000, int(attr.Value))

	_, err = ReadPublicTxt(strings.NewReader("widget a\n"), "p")
	android.AssertErrorMessageEquals(t, "unknown type", `line 1: unknown resource type "widget"`, err)
}
