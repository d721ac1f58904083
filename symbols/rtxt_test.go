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

func TestReadTable(t *testing.T) {
	input := `com.example.lib
int attr textSize 0x7f010000
int attr? inherited 0x7f010001
int string app_name 0x7f020000
int[] styleable MyView { 0x7f010000, 0x01010098 }
int styleable MyView_textSize 0 textSize
int styleable MyView_android_textColor 1 android:textColor
int style Theme_Dark 0x7f030000
`
	table, err := ReadTable(strings.NewReader(input), "")
	android.FailIfErrored(t, err)

	android.AssertStringEquals(t, "package", "com.example.lib", table.Package())
	android.AssertIntEquals(t, "len", 5, table.Len())

	inherited, _ := table.Lookup(Attr, "inherited")
	android.AssertBoolEquals(t, "maybe attr", true, inherited.MaybeDefinition)

	styleable, ok := table.Lookup(Styleable, "MyView")
	android.AssertBoolEquals(t, "styleable present", true, ok)
	android.AssertArrayString(t, "children", []string{"textSize", "android:textColor"}, styleable.Children)
	android.AssertDeepEquals(t, "values", []int32{0x7f010000, 0x01010098}, styleable.Values)

	app, _ := table.Lookup(String, "app_name")
	android.AssertIntEquals(t, "value", 0x7f020000, int(app.Value))
}

func TestReadTablePlainAapt2Output(t *testing.T) {
	// aapt2 writes no package line and no child reference column.
	input := `int attr textSize 0x7f010000
int[] styleable MyView { 0x01010098, 0x7f010000 }
int styleable MyView_android_textColor 0
int styleable MyView_textSize 1
`
	table, err := ReadTable(strings.NewReader(input), "com.example.app")
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "package", "com.example.app", table.Package())

	styleable, _ := table.Lookup(Styleable, "MyView")
	android.AssertArrayString(t, "children", []string{"android:textColor", "textSize"}, styleable.Children)
}

func TestReadTableErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		pkg   string
		err   string
	}{
		{
			name:  "no package",
			input: "int string a 0x1\n",
			err:   "symbol table has no package name",
		},
		{
			name:  "unknown java type",
			input: "long string a 0x1\n",
			pkg:   "p",
			err:   `line 1: unknown java type "long": "long string a 0x1"`,
		},
		{
			name:  "bad value",
			input: "int string a zz\n",
			pkg:   "p",
			err:   `line 1: invalid value "zz": "int string a zz"`,
		},
		{
			name:  "orphan child",
			input: "int styleable Foo_bar 0\n",
			pkg:   "p",
			err:   `line 1: styleable child "Foo_bar" does not follow its styleable: "int styleable Foo_bar 0"`,
		},
		{
			name:  "missing child index",
			input: "int[] styleable Foo { 0x1, 0x2 }\nint styleable Foo_b 1\n",
			pkg:   "p",
			err:   "styleable Foo is missing child index 0",
		},
		{
			name:  "unknown resource type",
			input: "int widget a 0x1\n",
			pkg:   "p",
			err:   `line 1: unknown resource type "widget": "int widget a 0x1"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tc.input), tc.pkg)
			android.AssertErrorMessageEquals(t, "error", tc.err, err)
		})
	}
}

func TestWriteTable(t *testing.T) {
	table := testTable(t, "com.example.lib",
		NewNormalSymbol(String, "app_name", 0x7f020000),
		NewAttrSymbol("textSize", 0x7f010000, false),
		NewAttrSymbol("inherited", 0x7f010001, true),
		NewStyleableSymbol("MyView", []int32{0x7f010000, 0x01010098},
			[]string{"textSize", "android:textColor"}),
		NewStyleableSymbol("Empty", nil, nil),
	)

	buf := &bytes.Buffer{}
	android.FailIfErrored(t, WriteTable(buf, table))

	expected := `com.example.lib
int attr? inherited 0x7f010001
int attr textSize 0x7f010000
int string app_name 0x7f020000
int[] styleable Empty { }
int[] styleable MyView { 0x7f010000, 0x01010098 }
int styleable MyView_textSize 0 textSize
int styleable MyView_android_textColor 1 android:textColor
`
	android.AssertStringEquals(t, "output", expected, buf.String())

	reread, err := ReadTable(bytes.NewReader(buf.Bytes()), "")
	android.FailIfErrored(t, err)
	android.AssertBoolEquals(t, "reread equal", true, table.Equal(reread))
}

func TestWriteTableNegativeValues(t *testing.T) {
	table := testTable(t, "p", NewNormalSymbol(Id, "top", -1))
	buf := &bytes.Buffer{}
	android.FailIfErrored(t, WriteTable(buf, table))
	android.AssertStringDoesContain(t, "hex", buf.String(), "int id top 0xffffffff")

	reread, err := ReadTable(buf, "")
	android.FailIfErrored(t, err)
	s, _ := reread.Lookup(Id, "top")
	android.AssertIntEquals(t, "value", -1, int(s.Value))
}
