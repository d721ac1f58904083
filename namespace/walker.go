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
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileKind is the way a file of a resource directory is rewritten.
type FileKind int

const (
	// RawFile is copied byte for byte: anything under a raw folder and any file that is not XML.
	RawFile FileKind = iota
	// ValuesFile is an XML file in a values folder.
	ValuesFile
	// XMLFile is an XML file in any other resource folder.
	XMLFile
)

func (k FileKind) String() string {
	switch k {
	case ValuesFile:
		return "values"
	case XMLFile:
		return "xml"
	default:
		return "raw"
	}
}

// resourceIgnoreFilenames are skipped when listing a resource directory, like aapt2 does.
var resourceIgnoreFilenames = []string{
	".svn",
	".git",
	".ds_store",
	"*.scc",
	".*",
	"CVS",
	"thumbs.db",
	"picasa.ini",
	"*~",
}

func ignoredResource(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range resourceIgnoreFilenames {
		if match, _ := filepath.Match(strings.ToLower(pattern), lower); match {
			return true
		}
	}
	return false
}

// ClassifyResource returns the kind of a file given its path relative to the resource
// directory, e.g. "values-en/strings.xml" or "layout/main.xml".  The resource type is the folder
// name up to the first configuration qualifier.
func ClassifyResource(rel string) FileKind {
	rel = filepath.ToSlash(rel)
	dir, file, ok := strings.Cut(rel, "/")
	if !ok || strings.Contains(file, "/") || path.Ext(file) != ".xml" {
		return RawFile
	}
	typ, _, _ := strings.Cut(dir, "-")
	switch typ {
	case "raw":
		return RawFile
	case "values":
		return ValuesFile
	default:
		return XMLFile
	}
}

// RewriteResource rewrites one file of a resource directory according to its kind.  Raw files
// and files that are not well formed XML are returned unchanged.
func RewriteResource(rel string, data []byte, m *ResolutionMap) ([]byte, error) {
	kind := GenericDocument
	switch ClassifyResource(rel) {
	case RawFile:
		return data, nil
	case ValuesFile:
		kind = ValuesDocument
	}
	out, err := RewriteXML(data, kind, m)
	var malformed *MalformedXMLError
	if errors.As(err, &malformed) {
		return data, nil
	}
	return out, err
}

// RewriteManifest rewrites an AndroidManifest.xml.  A manifest that is not well formed XML is
// returned unchanged.
func RewriteManifest(data []byte, m *ResolutionMap) ([]byte, error) {
	out, err := RewriteXML(data, GenericDocument, m)
	var malformed *MalformedXMLError
	if errors.As(err, &malformed) {
		return data, nil
	}
	return out, err
}

// ListResources returns the files under a resource directory as sorted slash separated paths
// relative to it, skipping the files aapt2 ignores.
func ListResources(fs afero.Fs, dir string) ([]string, error) {
	var ret []string
	err := afero.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p != dir && ignoredResource(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		ret = append(ret, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ret)
	return ret, nil
}
