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
	"strings"

	"github.com/beevik/etree"
)

const (
	AndroidURI = "http://schemas.android.com/apk/res/android"
	ToolsURI   = "http://schemas.android.com/tools"
	// AutoURI is the namespace shared by the resources of every library in the flat scheme.
	AutoURI = "http://schemas.android.com/apk/res-auto"

	libraryURIPrefix = "http://schemas.android.com/apk/res/"
	xmlnsPrefix      = "xmlns"
)

// LibraryURI returns the namespace of the resources of one package.
func LibraryURI(pkg string) string {
	return libraryURIPrefix + pkg
}

// libraryPackage returns the package of a per-library namespace.  The framework namespace is not
// a library namespace.
func libraryPackage(uri string) (string, bool) {
	if !strings.HasPrefix(uri, libraryURIPrefix) {
		return "", false
	}
	pkg := strings.TrimPrefix(uri, libraryURIPrefix)
	if pkg == "" || pkg == AndroidPackage || strings.Contains(pkg, "/") {
		return "", false
	}
	return pkg, true
}

// isNamespaceDecl tells whether a is an xmlns or xmlns:prefix attribute.
func isNamespaceDecl(a etree.Attr) bool {
	return a.Space == xmlnsPrefix || (a.Space == "" && a.Key == xmlnsPrefix)
}

// scope is the chain of prefix bindings in effect at an element.
type scope struct {
	parent   *scope
	bindings map[string]string
}

// enter returns the scope of el, nested in s.
func (s *scope) enter(el *etree.Element) *scope {
	var bindings map[string]string
	for _, a := range el.Attr {
		if a.Space != xmlnsPrefix {
			continue
		}
		if bindings == nil {
			bindings = make(map[string]string)
		}
		bindings[a.Key] = a.Value
	}
	if bindings == nil {
		return s
	}
	return &scope{parent: s, bindings: bindings}
}

func (s *scope) lookup(prefix string) (string, bool) {
	for ; s != nil; s = s.parent {
		if uri, ok := s.bindings[prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// usedPrefixes returns every prefix of an element or attribute name in the tree under el, except
// the xmlns declarations themselves.
func usedPrefixes(el *etree.Element, used map[string]bool) {
	if el.Space != "" {
		used[el.Space] = true
	}
	for _, a := range el.Attr {
		if a.Space != "" && a.Space != xmlnsPrefix {
			used[a.Space] = true
		}
	}
	for _, child := range el.ChildElements() {
		usedPrefixes(child, used)
	}
}

// declaredPrefixes returns every prefix declared anywhere in the tree under el.
func declaredPrefixes(el *etree.Element, declared map[string]bool) {
	for _, a := range el.Attr {
		if a.Space == xmlnsPrefix {
			declared[a.Key] = true
		}
	}
	for _, child := range el.ChildElements() {
		declaredPrefixes(child, declared)
	}
}

// removeUnusedResourceNamespaces drops the declarations of res-auto and per-library namespaces
// whose prefix no element or attribute uses.
func removeUnusedResourceNamespaces(root *etree.Element) {
	used := make(map[string]bool)
	usedPrefixes(root, used)

	var prune func(el *etree.Element)
	prune = func(el *etree.Element) {
		attrs := el.Attr[:0]
		for _, a := range el.Attr {
			if a.Space == xmlnsPrefix && !used[a.Key] {
				if _, ok := libraryPackage(a.Value); ok || a.Value == AutoURI {
					continue
				}
			}
			attrs = append(attrs, a)
		}
		el.Attr = attrs
		for _, child := range el.ChildElements() {
			prune(child)
		}
	}
	prune(root)
}
