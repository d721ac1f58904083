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

	"github.com/spf13/afero"

	"github.com/yuweiguocn/build-system-sub001/android"
)

func TestReverseXML(t *testing.T) {
	in := `<LinearLayout xmlns:android="http://schemas.android.com/apk/res/android" xmlns:ns0="http://schemas.android.com/apk/res/com.lib1" xmlns:ns1="http://schemas.android.com/apk/res/com.lib2" android:text="@*com.lib1:string/s1">
    <View android:background="@android:color/black" ns0:a1="?com.lib2:attr/a2" ns1:a2="@string/local" />
</LinearLayout>`
	expected := `<LinearLayout xmlns:android="http://schemas.android.com/apk/res/android" xmlns:ns0="http://schemas.android.com/apk/res-auto" xmlns:ns1="http://schemas.android.com/apk/res-auto" android:text="@string/s1">
    <View android:background="@android:color/black" ns0:a1="?attr/a2" ns1:a2="@string/local" />
</LinearLayout>
`
	out, err := ReverseXML([]byte(in))
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "reversed", expected, string(out))
}

func TestReverseValues(t *testing.T) {
	in := `<resources>
    <style name="AppTheme" parent="@*com.example.lib:style/Theme.Lib">
        <item name="ownAttr">?com.example.lib:attr/colorLib</item>
        <item name="android:textColor">?android:attr/textColorPrimary</item>
    </style>
    <string name="s">@*com.example.lib:string/lib_string</string>
</resources>`
	expected := `<resources>
    <style name="AppTheme" parent="@style/Theme.Lib">
        <item name="ownAttr">?attr/colorLib</item>
        <item name="android:textColor">?android:attr/textColorPrimary</item>
    </style>
    <string name="s">@string/lib_string</string>
</resources>
`
	out, err := ReverseXML([]byte(in))
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "reversed", expected, string(out))
}

func TestReverseValue(t *testing.T) {
	testCases := []struct {
		in, out string
	}{
		{"@*com.lib:string/s", "@string/s"},
		{" ?com.lib:attr/a ", " ?attr/a "},
		{"@com.lib:string/s", "@com.lib:string/s"},
		{"@android:string/ok", "@android:string/ok"},
		{"@*android:string/ok", "@*android:string/ok"},
		{"@+id/title", "@+id/title"},
		{"text", "text"},
	}
	for _, tc := range testCases {
		android.AssertStringEquals(t, tc.in, tc.out, reverseValue(tc.in))
	}
}

func TestReverseMalformed(t *testing.T) {
	out, err := ReverseXML([]byte("<broken"))
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "passthrough", "<broken", string(out))
}

func TestReverseResourceDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	android.FailIfErrored(t, afero.WriteFile(fs, "/in/values/strings.xml",
		[]byte(`<resources><string name="s">@*com.lib:string/t</string></resources>`), 0666))
	android.FailIfErrored(t, afero.WriteFile(fs, "/in/raw/data.txt", []byte("@*com.lib:string/t"), 0666))

	outputs, err := ReverseResourceDir(fs, "/in", "/out")
	android.FailIfErrored(t, err)
	android.AssertArrayString(t, "outputs", []string{"/out/raw/data.txt", "/out/values/strings.xml"}, outputs)

	data, err := afero.ReadFile(fs, "/out/values/strings.xml")
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "values", "<resources>\n    <string name=\"s\">@string/t</string>\n</resources>\n", string(data))

	data, err = afero.ReadFile(fs, "/out/raw/data.txt")
	android.FailIfErrored(t, err)
	android.AssertStringEquals(t, "raw", "@*com.lib:string/t", string(data))
}
