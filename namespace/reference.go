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

	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// Reference is a parsed resource reference such as "@string/name", "@*pkg:style/Base",
// "@+id/title" or "?attr/colorAccent".
type Reference struct {
	// Attr is set for '?' references to theme attributes, unset for '@' references.
	Attr    bool
	Create  bool
	Private bool
	Package string
	Type    symbols.ResourceType
	Name    string
	// TypeOmitted is set for theme attribute references written without "attr/".
	TypeOmitted bool
}

// ParseReference parses s as a resource reference.  Leading and trailing whitespace must be
// stripped by the caller.  It returns false for anything else, including "@null" and "@empty".
func ParseReference(s string) (Reference, bool) {
	var ref Reference
	if len(s) < 2 {
		return ref, false
	}
	switch s[0] {
	case '@':
	case '?':
		ref.Attr = true
	default:
		return ref, false
	}
	s = s[1:]
	if !ref.Attr && strings.HasPrefix(s, "+") {
		ref.Create = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "*") {
		ref.Private = true
		s = s[1:]
	}

	typeName := ""
	if slash := strings.IndexByte(s, '/'); slash != -1 {
		typeName, ref.Name = s[:slash], s[slash+1:]
	} else if ref.Attr {
		ref.Name = s
		ref.TypeOmitted = true
	} else {
		return ref, false
	}
	if colon := strings.IndexByte(typeName, ':'); colon != -1 {
		ref.Package, typeName = typeName[:colon], typeName[colon+1:]
	} else if ref.TypeOmitted {
		if colon := strings.IndexByte(ref.Name, ':'); colon != -1 {
			ref.Package, ref.Name = ref.Name[:colon], ref.Name[colon+1:]
		}
	}

	if ref.TypeOmitted {
		ref.Type = symbols.Attr
	} else {
		typ, ok := symbols.ParseResourceType(typeName)
		if !ok {
			return ref, false
		}
		ref.Type = typ
	}
	if ref.Name == "" || !validName(ref.Name) {
		return ref, false
	}
	return ref, true
}

func validName(name string) bool {
	for _, r := range name {
		switch r {
		case '/', ':', ' ', '\t', '\n', '{', '}', '@', '?':
			return false
		}
	}
	return true
}

// String formats the reference.
func (r Reference) String() string {
	var b strings.Builder
	if r.Attr {
		b.WriteByte('?')
	} else {
		b.WriteByte('@')
		if r.Create {
			b.WriteByte('+')
		}
	}
	if r.Private {
		b.WriteByte('*')
	}
	if r.Package != "" {
		b.WriteString(r.Package)
		b.WriteByte(':')
	}
	if !r.TypeOmitted {
		b.WriteString(string(r.Type))
		b.WriteByte('/')
	}
	b.WriteString(r.Name)
	return b.String()
}

// qualified returns the reference rewritten to name owner explicitly: "@*owner:type/name" for
// resources and "?owner:attr/name" for theme attributes.
func (r Reference) qualified(owner string) Reference {
	r.Package = owner
	r.TypeOmitted = false
	r.Private = !r.Attr
	return r
}
