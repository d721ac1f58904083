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
	"testing"

	"github.com/yuweiguocn/build-system-sub001/android"
	"github.com/yuweiguocn/build-system-sub001/classfile"
	"github.com/yuweiguocn/build-system-sub001/jar"
	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// nestedRClass encodes the R class nested class of type typ in com.example.app.
func nestedRClass(t *testing.T, typ string, fields ...classfile.Field) []byte {
	t.Helper()
	name := "com/example/app/R$" + typ
	class := &classfile.Class{
		Name:   name,
		Access: classfile.AccPublic | classfile.AccFinal,
		Fields: fields,
		InnerClasses: []classfile.InnerClass{{
			Inner:  name,
			Outer:  "com/example/app/R",
			Name:   typ,
			Access: classfile.AccPublic | classfile.AccStatic | classfile.AccFinal,
		}},
	}
	data, err := class.Bytes()
	android.FailIfErrored(t, err)
	return data
}

func TestRClasses(t *testing.T) {
	app := newTable(t, "com.example.app",
		symbols.NewNormalSymbol(symbols.String, "app_name", 0x7f030000),
		symbols.NewNormalSymbol(symbols.Style, "Theme.App", 0x7f040000),
		symbols.NewAttrSymbol("own", 0x7f010000, false),
		symbols.NewStyleableSymbol("AppView", []int32{0x7f010000, 0x7f010001}, []string{"own", "com.example.lib:colorLib"}))

	entries, err := RClasses(app)
	android.FailIfErrored(t, err)
	android.AssertArrayString(t, "classes", []string{
		"com/example/app/R$attr.class",
		"com/example/app/R$string.class",
		"com/example/app/R$style.class",
		"com/example/app/R$styleable.class",
		"com/example/app/R.class",
	}, jarEntryNames(entries))

	outer := &classfile.Class{
		Name:   "com/example/app/R",
		Access: classfile.AccPublic | classfile.AccFinal,
	}
	for _, typ := range []string{"attr", "string", "style", "styleable"} {
		outer.InnerClasses = append(outer.InnerClasses, classfile.InnerClass{
			Inner:  "com/example/app/R$" + typ,
			Outer:  "com/example/app/R",
			Name:   typ,
			Access: classfile.AccPublic | classfile.AccStatic | classfile.AccFinal,
		})
	}
	outerData, err := outer.Bytes()
	android.FailIfErrored(t, err)

	expected := map[string][]byte{
		"com/example/app/R$attr.class": nestedRClass(t, "attr",
			classfile.Field{Name: "own", Value: 0x7f010000}),
		"com/example/app/R$string.class": nestedRClass(t, "string",
			classfile.Field{Name: "app_name", Value: 0x7f030000}),
		"com/example/app/R$style.class": nestedRClass(t, "style",
			classfile.Field{Name: "Theme_App", Value: 0x7f040000}),
		"com/example/app/R$styleable.class": nestedRClass(t, "styleable",
			classfile.Field{Name: "AppView", IsArray: true, Values: []int32{0x7f010000, 0x7f010001}},
			classfile.Field{Name: "AppView_own", Value: 0},
			classfile.Field{Name: "AppView_com_example_lib_colorLib", Value: 1}),
		"com/example/app/R.class": outerData,
	}
	for _, e := range entries {
		android.AssertBoolEquals(t, e.Name, true, bytes.Equal(expected[e.Name], e.Data))
	}
}

func TestRClassesDuplicateField(t *testing.T) {
	table := newTable(t, "com.example.app",
		symbols.NewStyleableSymbol("A", []int32{1}, []string{"b_c"}),
		symbols.NewStyleableSymbol("A_b", []int32{1}, []string{"c"}))
	_, err := RClasses(table)
	android.AssertErrorMessageEquals(t, "duplicate", "com/example/app/R$styleable: duplicate field A_b_c", err)
}

func TestWriteRJar(t *testing.T) {
	table := newTable(t, "com.example.app", sym(symbols.String, "s"))
	buf := &bytes.Buffer{}
	android.FailIfErrored(t, WriteRJar(buf, table))

	android.AssertArrayString(t, "entries", []string{
		jar.ManifestFile,
		"com/example/app/R$string.class",
		"com/example/app/R.class",
	}, jarEntryNames(readJar(t, buf.Bytes())))
}
