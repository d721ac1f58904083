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
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Entry is a file to be written into a jar.
type Entry struct {
	Name string
	Data []byte
}

// Write writes a jar holding entries in jar order, with a default manifest first unless entries
// already contain one.  Every entry is deflated and stamped with DefaultTime.
func Write(w io.Writer, entries []Entry) error {
	sorted := append([]Entry(nil), entries...)
	hasManifest := false
	for _, e := range sorted {
		if e.Name == ManifestFile {
			hasManifest = true
		}
	}
	if !hasManifest {
		sorted = append(sorted, Entry{Name: ManifestFile, Data: []byte(DefaultManifest)})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return EntryNamesLess(sorted[i].Name, sorted[j].Name)
	})

	zw := zip.NewWriter(w)
	for i, e := range sorted {
		if i > 0 && sorted[i-1].Name == e.Name {
			return fmt.Errorf("duplicate jar entry %q", e.Name)
		}
		fh := &zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: DefaultTime,
		}
		fh.SetMode(0644)
		fw, err := zw.CreateHeader(fh)
		if err != nil {
			return err
		}
		if _, err := fw.Write(e.Data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ClassTransform returns the new contents of the class entry name, or data itself to keep it.
type ClassTransform func(name string, data []byte) ([]byte, error)

// Rewrite copies the jar read from r into w, passing the contents of every .class entry through
// transform.  Entries keep their order, names, compression methods, times and attributes; the
// contents of other entries are copied unchanged.  It returns the number of class entries whose
// contents changed.
func Rewrite(r io.ReaderAt, size int64, w io.Writer, transform ClassTransform) (int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return 0, err
	}

	changed := 0
	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		fh := &zip.FileHeader{
			Name:           f.Name,
			Comment:        f.Comment,
			Method:         f.Method,
			Modified:       f.Modified,
			CreatorVersion: f.CreatorVersion,
			ExternalAttrs:  f.ExternalAttrs,
		}
		if fh.Modified.IsZero() {
			fh.Modified = DefaultTime
		}

		fw, err := zw.CreateHeader(fh)
		if err != nil {
			return 0, err
		}
		if strings.HasSuffix(f.Name, "/") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		if !strings.HasSuffix(f.Name, ClassSuffix) {
			_, err = io.Copy(fw, rc)
			rc.Close()
			if err != nil {
				return 0, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		out, err := transform(f.Name, data)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", f.Name, err)
		}
		if !bytes.Equal(out, data) {
			changed++
		}
		if _, err := fw.Write(out); err != nil {
			return 0, err
		}
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return changed, nil
}
