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
	"io"
	"strings"

	"github.com/yuweiguocn/build-system-sub001/classfile"
	"github.com/yuweiguocn/build-system-sub001/jar"
	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// rClassName returns the internal name of the R class nested class of a resource type, e.g.
// "com/example/lib/R$string".  An empty type returns the outer R class.
func rClassName(pkg string, typ symbols.ResourceType) string {
	name := strings.ReplaceAll(pkg, ".", "/") + "/R"
	if typ != "" {
		name += "$" + string(typ)
	}
	return name
}

// splitRClassName is the inverse of rClassName for nested R classes.
func splitRClassName(name string) (pkg string, typ symbols.ResourceType, ok bool) {
	i := strings.LastIndex(name, "/R$")
	if i <= 0 {
		return "", "", false
	}
	typ, ok = symbols.ParseResourceType(name[i+len("/R$"):])
	if !ok {
		return "", "", false
	}
	return strings.ReplaceAll(name[:i], "/", "."), typ, true
}

// ClassRewriter redirects the R class field references of compiled classes of one component to
// the R classes of the packages owning the symbols.
type ClassRewriter struct {
	m *ResolutionMap
	// maps holds the resolution maps of other components by package, used to name styleable
	// child fields the way the owner's R class does.
	maps map[string]*ResolutionMap
}

// NewClassRewriter returns a rewriter for the component resolved by m.  others gives access to
// the resolution maps of the component's dependencies; it may be nil.
func NewClassRewriter(m *ResolutionMap, others map[string]*ResolutionMap) *ClassRewriter {
	return &ClassRewriter{m: m, maps: others}
}

// isRClass tells whether a jar entry is one of the R classes of a package in the search list.
func (r *ClassRewriter) isRClass(entry string) bool {
	name := strings.TrimSuffix(entry, jar.ClassSuffix)
	if pkg, _, ok := splitRClassName(name); ok {
		_, known := r.m.TableOf(pkg)
		return known
	}
	if strings.HasSuffix(name, "/R") {
		_, known := r.m.TableOf(strings.ReplaceAll(strings.TrimSuffix(name, "/R"), "/", "."))
		return known
	}
	return false
}

// RewriteClass rewrites the field references of one class file.  It returns the new contents
// and the number of redirected references.
func (r *ClassRewriter) RewriteClass(data []byte) ([]byte, int, error) {
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, 0, err
	}
	n, err := cf.RedirectFields(r.redirect)
	if err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return data, 0, nil
	}
	return cf.Bytes(), n, nil
}

// RewriteJar rewrites every class of a jar except R classes of known packages, which are copied
// like every other entry.  It returns the number of classes that changed.
func (r *ClassRewriter) RewriteJar(in io.ReaderAt, size int64, out io.Writer) (int, error) {
	return jar.Rewrite(in, size, out, func(name string, data []byte) ([]byte, error) {
		if r.isRClass(name) {
			return data, nil
		}
		rewritten, _, err := r.RewriteClass(data)
		return rewritten, err
	})
}

func (r *ClassRewriter) redirect(ref classfile.FieldRef) (classfile.FieldRef, error) {
	pkg, typ, ok := splitRClassName(ref.Owner)
	if !ok || pkg == AndroidPackage {
		return ref, nil
	}
	if _, known := r.m.TableOf(pkg); !known {
		return ref, nil
	}

	if typ == symbols.Styleable && ref.Descriptor == "I" {
		return r.redirectStyleableChild(ref, pkg)
	}

	// A reference to a dependency's R class that the dependency backs needs no change.
	if pkg != r.m.Package() && r.m.Declares(pkg, typ, ref.Name) {
		return ref, nil
	}
	owner, err := r.m.Resolve(typ, ref.Name)
	if err != nil {
		return ref, err
	}
	ref.Owner = rClassName(owner, typ)
	return ref, nil
}

// redirectStyleableChild redirects the index field of a styleable child, e.g.
// R$styleable.MyView_textSize, to the R class of the styleable's owner, renamed after the child
// as the owner qualifies it.
func (r *ClassRewriter) redirectStyleableChild(ref classfile.FieldRef, pkg string) (classfile.FieldRef, error) {
	tables := r.m.Tables()
	if t, ok := r.m.TableOf(pkg); ok && pkg != r.m.Package() {
		tables = append([]*symbols.Table{t}, tables...)
	}

	for _, t := range tables {
		styleable, ok := t.LookupStyleableChildField(ref.Name)
		if !ok {
			continue
		}
		owner, err := r.m.Resolve(symbols.Styleable, styleable.Name)
		if err != nil {
			return ref, err
		}
		if owner != t.Package() {
			// Another package declares the styleable first; its own table must hold the field.
			if ot, ok := r.m.TableOf(owner); ok {
				if s, ok := ot.LookupStyleableChildField(ref.Name); ok {
					styleable, t = s, ot
				}
			}
		}
		name, err := r.childFieldName(t.Package(), styleable, ref.Name)
		if err != nil {
			return ref, err
		}
		return classfile.FieldRef{
			Owner:      rClassName(t.Package(), symbols.Styleable),
			Name:       name,
			Descriptor: ref.Descriptor,
		}, nil
	}
	return ref, &UnknownSymbolError{Package: r.m.Package(), Type: symbols.Styleable, Name: ref.Name}
}

// childFieldName returns the name of a styleable child index field in the R class of pkg.
func (r *ClassRewriter) childFieldName(pkg string, styleable symbols.Symbol, field string) (string, error) {
	m := r.m
	if pkg != r.m.Package() {
		var ok bool
		if m, ok = r.maps[pkg]; !ok {
			return field, nil
		}
	}
	for _, child := range styleable.Children {
		if styleable.ChildFieldName(child) != field {
			continue
		}
		namespaced, err := NamespaceStyleableChildren([]string{child}, m)
		if err != nil {
			return "", fmt.Errorf("styleable %s of %s: %w", styleable.Name, pkg, err)
		}
		return styleable.ChildFieldName(namespaced[0]), nil
	}
	return field, nil
}
