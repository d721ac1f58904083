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

package jar

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/yuweiguocn/build-system-sub001/android"
)

// readEntries returns the file entries of a jar in archive order.
func readEntries(r io.ReaderAt, size int64) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	var ret []Entry
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		ret = append(ret, Entry{Name: f.Name, Data: data})
	}
	return ret, nil
}

func TestEntryNamesLess(t *testing.T) {
	names := []string{
		"com/example/R.class",
		"META-INF/services/foo",
		"META-INF/MANIFEST.MF",
		"META-INF/",
		"a.txt",
	}
	sort.SliceStable(names, func(i, j int) bool { return EntryNamesLess(names[i], names[j]) })
	android.AssertArrayString(t, "order", []string{
		"META-INF/",
		"META-INF/MANIFEST.MF",
		"META-INF/services/foo",
		"a.txt",
		"com/example/R.class",
	}, names)
}

func entryNames(entries []Entry) []string {
	var ret []string
	for _, e := range entries {
		ret = append(ret, e.Name)
	}
	return ret
}

func TestWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	err := Write(buf, []Entry{
		{Name: "com/example/R$string.class", Data: []byte("string")},
		{Name: "com/example/R.class", Data: []byte("outer")},
	})
	android.FailIfErrored(t, err)

	entries, err := readEntries(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	android.FailIfErrored(t, err)
	android.AssertArrayString(t, "entries", []string{
		"META-INF/MANIFEST.MF",
		"com/example/R$string.class",
		"com/example/R.class",
	}, entryNames(entries))
	android.AssertStringEquals(t, "manifest", DefaultManifest, string(entries[0].Data))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	android.FailIfErrored(t, err)
	for _, f := range zr.File {
		android.AssertBoolEquals(t, f.Name+" time", true, f.Modified.Equal(DefaultTime))
	}

	again := &bytes.Buffer{}
	android.FailIfErrored(t, Write(again, []Entry{
		{Name: "com/example/R.class", Data: []byte("outer")},
		{Name: "com/example/R$string.class", Data: []byte("string")},
	}))
	android.AssertBoolEquals(t, "deterministic", true, bytes.Equal(buf.Bytes(), again.Bytes()))
}

func TestWriteDuplicate(t *testing.T) {
	err := Write(&bytes.Buffer{}, []Entry{{Name: "a"}, {Name: "a"}})
	android.AssertErrorMessageEquals(t, "duplicate", `duplicate jar entry "a"`, err)
}

func TestRewrite(t *testing.T) {
	in := &bytes.Buffer{}
	zw := zip.NewWriter(in)
	for _, e := range []struct {
		name   string
		method uint16
		data   string
	}{
		{"META-INF/MANIFEST.MF", zip.Deflate, "Manifest-Version: 1.0\n"},
		{"com/", zip.Store, ""},
		{"com/example/Foo.class", zip.Deflate, "foo"},
		{"com/example/Bar.class", zip.Store, "bar"},
		{"assets/data.bin", zip.Store, "opaque"},
	} {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method, Modified: DefaultTime})
		android.FailIfErrored(t, err)
		fw.Write([]byte(e.data))
	}
	android.FailIfErrored(t, zw.Close())

	out := &bytes.Buffer{}
	var seen []string
	changed, err := Rewrite(bytes.NewReader(in.Bytes()), int64(in.Len()), out,
		func(name string, data []byte) ([]byte, error) {
			seen = append(seen, name)
			if name == "com/example/Foo.class" {
				return []byte("FOO"), nil
			}
			return data, nil
		})
	android.FailIfErrored(t, err)
	android.AssertIntEquals(t, "changed", 1, changed)
	android.AssertArrayString(t, "transformed", []string{"com/example/Foo.class", "com/example/Bar.class"}, seen)

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	android.FailIfErrored(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	android.AssertArrayString(t, "names", []string{
		"META-INF/MANIFEST.MF",
		"com/",
		"com/example/Foo.class",
		"com/example/Bar.class",
		"assets/data.bin",
	}, names)
	android.AssertIntEquals(t, "method kept", int(zip.Store), int(zr.File[3].Method))

	entries, err := readEntries(bytes.NewReader(out.Bytes()), int64(out.Len()))
	android.FailIfErrored(t, err)
	contents := map[string]string{}
	for _, e := range entries {
		contents[e.Name] = string(e.Data)
	}
	android.AssertStringEquals(t, "foo", "FOO", contents["com/example/Foo.class"])
	android.AssertStringEquals(t, "bar", "bar", contents["com/example/Bar.class"])
	android.AssertStringEquals(t, "asset", "opaque", contents["assets/data.bin"])
}
