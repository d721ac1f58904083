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
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

// ReverseXML turns a namespaced XML resource back into the flat scheme: every per-library
// namespace declaration is bound to the shared res-auto namespace, and references qualified with
// a library package lose the qualifier.  Framework references are kept.  Input that is not well
// formed XML is returned unchanged.
func ReverseXML(data []byte) ([]byte, error) {
	doc, err := parseDocument(data)
	if err != nil {
		var malformed *MalformedXMLError
		if errors.As(err, &malformed) {
			return data, nil
		}
		return nil, err
	}
	reverseElement(doc.Root())
	return formatDocument(doc), nil
}

func reverseElement(el *etree.Element) {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Space == xmlnsPrefix {
			if _, ok := libraryPackage(a.Value); ok {
				a.Value = AutoURI
			}
			continue
		}
		a.Value = reverseValue(a.Value)
	}
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			cd.Data = reverseValue(cd.Data)
		}
	}
	for _, child := range el.ChildElements() {
		reverseElement(child)
	}
}

// reverseValue drops the package of "@*pkg:type/name" and "?pkg:attr/name" references.
func reverseValue(value string) string {
	trimmed := strings.TrimSpace(value)
	ref, ok := ParseReference(trimmed)
	if !ok || ref.Package == "" || ref.Package == AndroidPackage {
		return value
	}
	if !ref.Attr && !ref.Private {
		return value
	}
	ref.Package = ""
	ref.Private = false
	return strings.Replace(value, trimmed, ref.String(), 1)
}

// ReverseResourceDir writes the flat form of every file of a resource directory under outDir and
// returns the files written.  Raw files are copied unchanged.
func ReverseResourceDir(fs afero.Fs, dir, outDir string) ([]string, error) {
	files, err := ListResources(fs, dir)
	if err != nil {
		return nil, err
	}
	var outputs []string
	for _, rel := range files {
		data, err := afero.ReadFile(fs, filepath.Join(dir, rel))
		if err != nil {
			return outputs, err
		}
		if ClassifyResource(rel) != RawFile {
			if data, err = ReverseXML(data); err != nil {
				return outputs, fmt.Errorf("%s: %w", rel, err)
			}
		}
		out := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := writeFileAtomic(fs, out, data); err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
