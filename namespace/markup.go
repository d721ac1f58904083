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
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// DocumentKind selects the rewriting rules of an XML document.
type DocumentKind int

const (
	// GenericDocument is any XML resource outside values folders: layouts, drawables, menus,
	// xml resources and manifests.  Attribute names and values are rewritten.
	GenericDocument DocumentKind = iota
	// ValuesDocument is a file in a values folder.  Style parents and items, styleable children and
	// text references are rewritten.
	ValuesDocument
)

func (k DocumentKind) String() string {
	if k == ValuesDocument {
		return "values"
	}
	return "generic"
}

// RewriteXML rewrites every resource and attribute reference of an XML document to name its
// owning package.  It returns a MalformedXMLError if data is not well formed XML and an
// UnknownSymbolError if a reference does not resolve.
func RewriteXML(data []byte, kind DocumentKind, m *ResolutionMap) ([]byte, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	r := &markupRewriter{m: m}
	root := doc.Root()
	if kind == ValuesDocument {
		err = r.rewriteValues(root)
	} else {
		err = r.rewriteGeneric(root)
	}
	if err != nil {
		return nil, err
	}
	return formatDocument(doc), nil
}

type markupRewriter struct {
	m *ResolutionMap
	// taken holds the prefixes declared anywhere in the document.
	taken map[string]bool
}

func (r *markupRewriter) local() string {
	return r.m.Package()
}

// rewriteReference qualifies a bare reference with its owner unless the component owns it, and
// validates an explicitly qualified one.
func (r *markupRewriter) rewriteReference(ref Reference) (Reference, error) {
	if ref.Package != "" {
		return ref, r.m.Validate(ref.Package, ref.Type, ref.Name)
	}
	owner, err := r.m.Resolve(ref.Type, ref.Name)
	if err != nil {
		return ref, err
	}
	if owner == r.local() {
		return ref, nil
	}
	return ref.qualified(owner), nil
}

// rewriteValue rewrites an attribute value or text that holds a single reference, keeping any
// surrounding whitespace.  Other values are returned unchanged.
func (r *markupRewriter) rewriteValue(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	ref, ok := ParseReference(trimmed)
	if !ok || ref.Create {
		return value, nil
	}
	rewritten, err := r.rewriteReference(ref)
	if err != nil {
		return "", err
	}
	if rewritten == ref {
		return value, nil
	}
	return strings.Replace(value, trimmed, rewritten.String(), 1), nil
}

// rewriteAttrName qualifies an attribute name used in a values file, such as the name of a style
// item, as "owner:name".
func (r *markupRewriter) rewriteAttrName(name string) (string, error) {
	if pkg, attr, ok := strings.Cut(name, ":"); ok {
		return name, r.m.Validate(strings.TrimPrefix(pkg, "*"), symbols.Attr, attr)
	}
	owner, err := r.m.Resolve(symbols.Attr, name)
	if err != nil {
		return "", err
	}
	if owner == r.local() {
		return name, nil
	}
	return owner + ":" + name, nil
}

// rewriteStyleParent rewrites the parent of a style, which is either a reference or a style
// name optionally qualified with a package.
func (r *markupRewriter) rewriteStyleParent(parent string) (string, error) {
	trimmed := strings.TrimSpace(parent)
	if trimmed == "" {
		return parent, nil
	}
	if trimmed[0] == '@' || trimmed[0] == '?' {
		return r.rewriteValue(parent)
	}
	if pkg, name, ok := strings.Cut(trimmed, ":"); ok {
		return parent, r.m.Validate(pkg, symbols.Style, name)
	}
	owner, err := r.m.Resolve(symbols.Style, trimmed)
	if err != nil {
		return "", err
	}
	if owner == r.local() {
		return parent, nil
	}
	return Reference{Type: symbols.Style, Name: trimmed}.qualified(owner).String(), nil
}

func (r *markupRewriter) rewriteAttr(el *etree.Element, key string, rewrite func(string) (string, error)) error {
	a := el.SelectAttr(key)
	if a == nil {
		return nil
	}
	value, err := rewrite(a.Value)
	if err != nil {
		return err
	}
	a.Value = value
	return nil
}

// rewriteText rewrites the text of an element that holds only text.
func (r *markupRewriter) rewriteText(el *etree.Element) error {
	for _, tok := range el.Child {
		if _, ok := tok.(*etree.CharData); !ok {
			if _, isComment := tok.(*etree.Comment); !isComment {
				return nil
			}
		}
	}
	for _, tok := range el.Child {
		cd, ok := tok.(*etree.CharData)
		if !ok {
			continue
		}
		value, err := r.rewriteValue(cd.Data)
		if err != nil {
			return err
		}
		cd.Data = value
	}
	return nil
}

func (r *markupRewriter) rewriteValues(root *etree.Element) error {
	for _, el := range root.ChildElements() {
		if err := r.rewriteResource(el); err != nil {
			return err
		}
	}
	return nil
}

func (r *markupRewriter) rewriteResource(el *etree.Element) error {
	switch el.Tag {
	case "style":
		return r.rewriteStyle(el)
	case "declare-styleable":
		return r.rewriteDeclareStyleable(el)
	case "attr", "public", "public-group", "java-symbol", "overlayable", "eat-comment", "skip":
		return nil
	}
	if err := r.rewriteText(el); err != nil {
		return err
	}
	// Items of arrays and plurals.
	for _, child := range el.ChildElements() {
		if child.Tag != "item" {
			continue
		}
		if err := r.rewriteText(child); err != nil {
			return err
		}
	}
	return nil
}

func (r *markupRewriter) rewriteStyle(el *etree.Element) error {
	if el.SelectAttr("parent") != nil {
		if err := r.rewriteAttr(el, "parent", r.rewriteStyleParent); err != nil {
			return err
		}
	} else if err := r.addImplicitParent(el); err != nil {
		return err
	}

	for _, item := range el.ChildElements() {
		if item.Tag != "item" {
			continue
		}
		if err := r.rewriteAttr(item, "name", r.rewriteAttrName); err != nil {
			return err
		}
		if err := r.rewriteText(item); err != nil {
			return err
		}
	}
	return nil
}

// addImplicitParent makes the parent implied by a dotted style name explicit when a dependency
// owns it, since the implied parent is only looked up in the style's own package.
func (r *markupRewriter) addImplicitParent(el *etree.Element) error {
	name := el.SelectAttrValue("name", "")
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return nil
	}
	implied := name[:dot]
	if owner, ok := r.m.owner(symbols.Style, implied); !ok || owner == r.local() {
		return nil
	}
	owner, err := r.m.Resolve(symbols.Style, implied)
	if err != nil {
		return err
	}
	el.CreateAttr("parent", Reference{Type: symbols.Style, Name: implied}.qualified(owner).String())
	return nil
}

func (r *markupRewriter) rewriteDeclareStyleable(el *etree.Element) error {
	err := r.rewriteAttr(el, "parent", func(parent string) (string, error) {
		if strings.Contains(parent, ":") {
			pkg, name, _ := strings.Cut(parent, ":")
			return parent, r.m.Validate(pkg, symbols.Styleable, name)
		}
		owner, err := r.m.Resolve(symbols.Styleable, parent)
		if err != nil {
			return "", err
		}
		if owner == r.local() {
			return parent, nil
		}
		return owner + ":" + parent, nil
	})
	if err != nil {
		return err
	}

	for _, attr := range el.ChildElements() {
		if attr.Tag != "attr" {
			continue
		}
		// An attr with a format or enum or flag values is declared here.
		if attr.SelectAttr("format") != nil || len(attr.ChildElements()) > 0 {
			continue
		}
		if err := r.rewriteAttr(attr, "name", r.rewriteAttrName); err != nil {
			return err
		}
	}
	return nil
}

type nsAssignment struct {
	pkg    string
	prefix string
}

// nsAccumulator records the synthetic prefixes assigned while walking one document, in first use
// order.  It is threaded through the walk by value.
type nsAccumulator struct {
	assigned []nsAssignment
	next     int
}

// prefixFor returns the synthetic prefix of pkg, assigning the next free "nsN" on first use.
func (a nsAccumulator) prefixFor(pkg string, taken map[string]bool) (nsAccumulator, string) {
	for _, as := range a.assigned {
		if as.pkg == pkg {
			return a, as.prefix
		}
	}
	for {
		prefix := fmt.Sprintf("ns%d", a.next)
		a.next++
		if !taken[prefix] {
			a.assigned = append(a.assigned, nsAssignment{pkg: pkg, prefix: prefix})
			return a, prefix
		}
	}
}

func (r *markupRewriter) rewriteGeneric(root *etree.Element) error {
	r.taken = make(map[string]bool)
	declaredPrefixes(root, r.taken)

	acc, err := r.rewriteElement(root, nil, nsAccumulator{})
	if err != nil {
		return err
	}

	removeUnusedResourceNamespaces(root)
	for _, as := range acc.assigned {
		root.CreateAttr(xmlnsPrefix+":"+as.prefix, LibraryURI(as.pkg))
	}
	return nil
}

func (r *markupRewriter) rewriteElement(el *etree.Element, parent *scope, acc nsAccumulator) (nsAccumulator, error) {
	sc := parent.enter(el)
	for i := range el.Attr {
		a := &el.Attr[i]
		if isNamespaceDecl(*a) {
			continue
		}
		uri := ""
		if a.Space != "" {
			uri, _ = sc.lookup(a.Space)
		}
		if uri == ToolsURI {
			continue
		}

		if uri == AutoURI {
			owner, err := r.m.Resolve(symbols.Attr, a.Key)
			if err != nil {
				return acc, err
			}
			if owner != r.local() {
				acc, a.Space = acc.prefixFor(owner, r.taken)
			}
		} else if pkg, ok := libraryPackage(uri); ok {
			if err := r.m.Validate(pkg, symbols.Attr, a.Key); err != nil {
				return acc, err
			}
			acc, a.Space = acc.prefixFor(pkg, r.taken)
		}

		value, err := r.rewriteValue(a.Value)
		if err != nil {
			return acc, err
		}
		a.Value = value
	}

	seen := make(map[string]bool, len(el.Attr))
	for _, a := range el.Attr {
		key := a.FullKey()
		if seen[key] {
			return acc, &DuplicateAttributeError{Element: el.FullTag(), Attr: key}
		}
		seen[key] = true
	}

	for _, child := range el.ChildElements() {
		var err error
		if acc, err = r.rewriteElement(child, sc, acc); err != nil {
			return acc, err
		}
	}
	return acc, nil
}
